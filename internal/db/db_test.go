package db

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/adaptive-tutor/internal/tutor"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

var (
	_ tutor.HistoryReader = (*DB)(nil)
	_ tutor.Writer        = (*DB)(nil)
)

func TestCodes(t *testing.T) {
	assert.Equal(t, "H7", SkillCode(7))
	assert.Equal(t, "C2", CompetencyCode(2))
}

func TestSkillRow_ToSkillProgress(t *testing.T) {
	id := uuid.New()
	row := skillRow{
		SkillID:               id,
		SkillNumber:           7,
		CompetencyNumber:      2,
		Description:           "Identificar características de figuras planas ou espaciais.",
		CompetencyDescription: "Utilizar o conhecimento geométrico.",
		TotalAnswered:         3,
		CorrectCount:          2,
	}

	got := row.toSkillProgress()

	assert.Equal(t, id, got.SkillID)
	assert.Equal(t, "H7", got.SkillCode)
	assert.Equal(t, "C2", got.CompetencyCode)
	assert.InDelta(t, 66.7, got.AccuracyPct, 1e-9)

	row.TotalAnswered, row.CorrectCount = 0, 0
	assert.Zero(t, row.toSkillProgress().AccuracyPct)
}

func TestSkillRow_ToTaxonomyEntry(t *testing.T) {
	entry := skillRow{SkillNumber: 21, CompetencyNumber: 5, Description: "d", CompetencyDescription: "cd"}.toTaxonomyEntry()

	assert.Equal(t, types.TaxonomyEntry{Code: "H21", Description: "d", CompetencyCode: "C5", CompetencyDescription: "cd"}, entry)
}

func TestEncodeEssay(t *testing.T) {
	cols, err := encodeEssay(types.EssayEvaluation{
		Criteria: []types.EssayCriterion{{Number: 1, Title: "Competência 1", Score: 160, Errors: []string{}, CitedPassages: []string{}}},
	})
	require.NoError(t, err)

	var criteria []map[string]any
	require.NoError(t, json.Unmarshal(cols.criteria, &criteria))
	require.Len(t, criteria, 1)
	assert.EqualValues(t, 160, criteria[0]["score"])
	assert.Equal(t, "[]", string(cols.suggestions))

	empty, err := encodeEssay(types.EssayEvaluation{CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.criteria))
}

func TestSchemaSQL(t *testing.T) {
	for _, table := range []string{
		"learners", "competencies", "skills", "questions", "answers", "study_sessions",
		"skill_progress", "feedback", "recommendations", "learning_profiles", "essays",
	} {
		assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
}

func TestNonNilStrings(t *testing.T) {
	assert.Equal(t, []string{}, nonNilStrings(nil))
	assert.Equal(t, []string{"H1"}, nonNilStrings([]string{"H1"}))
}
