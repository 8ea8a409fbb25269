package tutor

import (
	"fmt"

	"github.com/jonathan/adaptive-tutor/internal/normalize"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	fallbackFeedbackText     = "Ótimo esforço! Continue estudando e você verá melhorias."
	fallbackStudyStrategy    = "Continue praticando questões similares"
	fallbackImprovementAreas = "Continue praticando"
	fallbackErrorRootCause   = "O enunciado destacava pistas que não foram associadas à alternativa correta; " +
		"revise como cada alternativa dialoga com o trecho citado."
	fallbackMisconception = "Termos semelhantes presentes nas alternativas podem sugerir uma relação incorreta " +
		"com o texto-base, gerando escolha precipitada."

	fallbackProgressSummary   = "Continue praticando regularmente para melhorar seu desempenho."
	fallbackRecommendation    = "Continue praticando questões da matéria"
	fallbackProgressMessage   = "Você está no caminho certo! Continue estudando!"
	fallbackWeeklyGoal        = "Pratique pelo menos 20 questões esta semana"
	fallbackRecommendationPri = 3

	fallbackMotivationText = "Você está fazendo um excelente trabalho! Continue assim e você alcançará seus objetivos! 🎯"
)

var fallbackReviewSteps = []string{
	"Grife no enunciado as pistas que conectam cada alternativa antes de decidir.",
	"Compare a alternativa escolhida com a correta identificando palavras-chave divergentes.",
	"Refaça uma questão parecida explicando em voz alta por que descartou cada opção.",
}

// fallbackFeedback is returned whenever the feedback pipeline fails.
// It never fails itself.
func fallbackFeedback(q types.Question, concepts []types.ConceptReference) *types.FeedbackResult {
	return &types.FeedbackResult{
		FeedbackText:             fallbackFeedbackText,
		CorrectAnswerExplanation: fmt.Sprintf("A resposta correta é %s. Continue praticando!", q.CorrectAnswer),
		ErrorRootCause:           fallbackErrorRootCause,
		MisconceptionPoint:       fallbackMisconception,
		ReviewSteps:              append([]string(nil), fallbackReviewSteps...),
		ConceptsToReview:         normalize.FallbackConcepts(concepts),
		StudyStrategy:            fallbackStudyStrategy,
		SuggestedDifficulty:      normalize.Clamp(q.Difficulty, 0, 1),
		ImprovementAreas:         fallbackImprovementAreas,
		Fallback:                 true,
	}
}

// fillFeedbackGaps replaces fields the model left empty with their fallback values
// and returns the number of fields it filled
func fillFeedbackGaps(result *types.FeedbackResult, fb *types.FeedbackResult) int {
	filled := 0
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
			filled++
		}
	}
	fill(&result.FeedbackText, fb.FeedbackText)
	fill(&result.CorrectAnswerExplanation, fb.CorrectAnswerExplanation)
	fill(&result.ErrorRootCause, fb.ErrorRootCause)
	fill(&result.MisconceptionPoint, fb.MisconceptionPoint)
	fill(&result.StudyStrategy, fb.StudyStrategy)
	fill(&result.ImprovementAreas, fb.ImprovementAreas)
	if len(result.ReviewSteps) == 0 {
		result.ReviewSteps = fb.ReviewSteps
		filled++
	}
	if result.ConceptsToReview == nil {
		result.ConceptsToReview = []string{}
	}
	return filled
}

func fallbackProgress() *types.ProgressAnalysis {
	return &types.ProgressAnalysis{
		ProgressSummary:     fallbackProgressSummary,
		Recommendations:     fallbackRecommendations(),
		IdealDifficulty:     normalize.DefaultIdealDifficulty,
		FocusAreas:          []string{},
		PrioritySkills:      []string{},
		MotivationalMessage: fallbackProgressMessage,
		WeeklyGoal:          fallbackWeeklyGoal,
		Fallback:            true,
	}
}

func fallbackRecommendations() []types.Recommendation {
	return []types.Recommendation{{
		Type:        types.RecommendationPractice,
		Content:     fallbackRecommendation,
		Priority:    fallbackRecommendationPri,
		FocusSkills: []string{},
	}}
}

func fillProgressGaps(analysis *types.ProgressAnalysis) int {
	filled := 0
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
			filled++
		}
	}
	fill(&analysis.ProgressSummary, fallbackProgressSummary)
	fill(&analysis.MotivationalMessage, fallbackProgressMessage)
	fill(&analysis.WeeklyGoal, fallbackWeeklyGoal)
	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = fallbackRecommendations()
		filled++
	}
	return filled
}

func fallbackMotivation() *types.MotivationalMessage {
	return &types.MotivationalMessage{
		Message:  fallbackMotivationText,
		Kind:     types.MessageEncouragement,
		Icon:     normalize.DefaultIcon,
		Fallback: true,
	}
}
