package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/adaptive-tutor/internal/performance"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

// skillRow is a skill joined with its competency and, optionally, a learner's counts
type skillRow struct {
	SkillID               uuid.UUID
	SkillNumber           int
	CompetencyNumber      int
	Description           string
	CompetencyDescription string
	TotalAnswered         int
	CorrectCount          int
}

// SkillCode formats a skill number the way the exam matrix does ("H7")
func SkillCode(number int) string {
	return fmt.Sprintf("H%d", number)
}

// CompetencyCode formats a competency number ("C2")
func CompetencyCode(number int) string {
	return fmt.Sprintf("C%d", number)
}

func (r skillRow) toSkillProgress() types.SkillProgress {
	return types.SkillProgress{
		SkillID:               r.SkillID,
		SkillCode:             SkillCode(r.SkillNumber),
		CompetencyCode:        CompetencyCode(r.CompetencyNumber),
		Description:           r.Description,
		CompetencyDescription: r.CompetencyDescription,
		TotalAnswered:         r.TotalAnswered,
		CorrectCount:          r.CorrectCount,
		AccuracyPct:           performance.Percent(r.CorrectCount, r.TotalAnswered),
	}
}

func (r skillRow) toTaxonomyEntry() types.TaxonomyEntry {
	return types.TaxonomyEntry{
		Code:                  SkillCode(r.SkillNumber),
		Description:           r.Description,
		CompetencyCode:        CompetencyCode(r.CompetencyNumber),
		CompetencyDescription: r.CompetencyDescription,
	}
}

// essayColumns holds the JSON-encoded columns of an essays row
type essayColumns struct {
	criteria    []byte
	suggestions []byte
}

func encodeEssay(eval types.EssayEvaluation) (essayColumns, error) {
	criteria, err := json.Marshal(nonNilCriteria(eval.Criteria))
	if err != nil {
		return essayColumns{}, fmt.Errorf("failed to marshal criteria: %w", err)
	}
	suggestions := eval.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return essayColumns{}, fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	return essayColumns{criteria: criteria, suggestions: suggestionsJSON}, nil
}

func nonNilCriteria(criteria []types.EssayCriterion) []types.EssayCriterion {
	if criteria == nil {
		return []types.EssayCriterion{}
	}
	return criteria
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
