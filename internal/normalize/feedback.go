package normalize

import "github.com/jonathan/adaptive-tutor/internal/types"

// MaxReviewSteps bounds FeedbackResult.ReviewSteps
const MaxReviewSteps = 3

// Feedback builds a FeedbackResult from a parsed document.
// Missing text fields stay empty so the caller can fill them from its fallback.
// SuggestedDifficulty defaults to questionDifficulty and is clamped to [0,1].
func Feedback(doc *Document, concepts []types.ConceptReference, questionDifficulty float64) types.FeedbackResult {
	rawConcepts, _ := doc.Raw("concepts_to_review", "conceitos_revisar")

	return types.FeedbackResult{
		FeedbackText:             doc.String("feedback"),
		CorrectAnswerExplanation: doc.String("correct_answer_explanation", "explicacao_correta"),
		ErrorRootCause:           doc.String("error_root_cause", "motivo_erro"),
		MisconceptionPoint:       doc.String("misconception_point", "ponto_confusao"),
		ReviewSteps:              Cap(doc.List("review_steps", "passos_revisao"), MaxReviewSteps),
		ConceptsToReview:         ResolveConcepts(rawConcepts, concepts),
		StudyStrategy:            doc.String("study_strategy", "estrategia_estudo"),
		SuggestedDifficulty:      Clamp(doc.NumberOr(questionDifficulty, "suggested_difficulty", "nivel_dificuldade_sugerido"), 0, 1),
		ImprovementAreas:         doc.String("improvement_areas", "areas_melhoria"),
	}
}
