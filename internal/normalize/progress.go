package normalize

import (
	"math"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	minPriority     = 1
	maxPriority     = 5
	defaultPriority = 3
	// DefaultIdealDifficulty is used when the analysis omits a difficulty
	DefaultIdealDifficulty = 0.5
)

var recommendationTypes = map[string]types.RecommendationType{
	"study":    types.RecommendationStudy,
	"estudo":   types.RecommendationStudy,
	"practice": types.RecommendationPractice,
	"pratica":  types.RecommendationPractice,
	"review":   types.RecommendationReview,
	"revisao":  types.RecommendationReview,
}

// Progress builds a ProgressAnalysis from a parsed document.
// Skill codes are upper-cased and, when knownSkills is non-empty, restricted to it.
// Recommendations without content are dropped.
func Progress(doc *Document, knownSkills []string) types.ProgressAnalysis {
	known := make(map[string]bool, len(knownSkills))
	for _, code := range knownSkills {
		known[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	recommendations := make([]types.Recommendation, 0)
	for _, item := range doc.Objects("recommendations", "recomendacoes") {
		content := item.String("content", "conteudo")
		if content == "" {
			continue
		}
		recommendations = append(recommendations, types.Recommendation{
			Type:        RecommendationType(item),
			Content:     content,
			Priority:    Priority(item),
			FocusSkills: filterSkills(item, item.List("focus_skills", "habilidades_foco"), known),
		})
	}

	return types.ProgressAnalysis{
		ProgressSummary:     doc.String("progress_summary", "analise_progresso"),
		Recommendations:     recommendations,
		IdealDifficulty:     Clamp(doc.NumberOr(DefaultIdealDifficulty, "ideal_difficulty", "nivel_dificuldade_ideal"), 0, 1),
		FocusAreas:          doc.List("focus_areas", "areas_foco"),
		PrioritySkills:      filterSkills(doc, doc.List("priority_skills", "habilidades_prioritarias"), known),
		MotivationalMessage: doc.String("motivational_message", "mensagem_motivacional"),
		WeeklyGoal:          doc.String("weekly_goal", "meta_semanal"),
	}
}

// RecommendationType maps the "type" field, accepting Portuguese names and
// accents, to a RecommendationType. Unknown values become practice.
func RecommendationType(doc *Document) types.RecommendationType {
	raw := FoldText(doc.String("type", "tipo"))
	if t, ok := recommendationTypes[raw]; ok {
		return t
	}
	doc.Record("type", reasonOutOfSet)
	return types.RecommendationPractice
}

// Priority reads "priority" rounded and clamped to 1-5, defaulting to 3 when absent
func Priority(doc *Document) int {
	if !doc.Has("priority", "prioridade") {
		doc.Record("priority", reasonMissing)
		return defaultPriority
	}
	p := math.Round(doc.NumberOr(defaultPriority, "priority", "prioridade"))
	return ClampInt(int(p), minPriority, maxPriority)
}

func filterSkills(doc *Document, codes []string, known map[string]bool) []string {
	out := make([]string, 0, len(codes))
	dropped := false
	for _, code := range codes {
		code = strings.ToUpper(code)
		if len(known) > 0 && !known[code] {
			dropped = true
			continue
		}
		out = append(out, code)
	}
	if dropped {
		doc.Record("skills", reasonFiltered)
	}
	return out
}
