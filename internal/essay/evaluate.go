package essay

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/adaptive-tutor/internal/normalize"
	"github.com/jonathan/adaptive-tutor/internal/prompts"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// MinWords is the shortest essay accepted for grading
	MinWords = 80
	// MaxWords is the longest essay accepted for grading
	MaxWords = 1200
)

// Submission is an essay sent for grading
type Submission struct {
	Theme string `json:"theme" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// InputError reports a submission rejected before any generation call
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid essay %s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Validate checks that theme and text are present and the text length is within bounds
func (s Submission) Validate() error {
	s.Theme = strings.TrimSpace(s.Theme)
	s.Text = strings.TrimSpace(s.Text)
	if err := validate.Struct(s); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return &InputError{Field: strings.ToLower(fieldErrs[0].Field()), Message: "is required"}
		}
		return &InputError{Field: "submission", Message: err.Error()}
	}

	words := WordCount(s.Text)
	if words < MinWords || words > MaxWords {
		return &InputError{
			Field:   "text",
			Message: fmt.Sprintf("has %d words, must be between %d and %d", words, MinWords, MaxWords),
		}
	}
	return nil
}

// Evaluate builds an EssayEvaluation from a parsed grading response.
// The total is always recomputed from the quantized criteria.
func Evaluate(doc *normalize.Document, theme, text string, now time.Time) types.EssayEvaluation {
	criteria := NormalizeCriteria(doc)

	return types.EssayEvaluation{
		RestatedTheme:   doc.StringOr(theme, "theme", "tema"),
		WordCount:       WordCount(text),
		Criteria:        criteria,
		TotalScore:      TotalScore(criteria),
		GeneralComments: doc.String("general_comments", "comentarios_gerais"),
		Suggestions:     doc.List("suggestions", "sugestoes"),
		CreatedAt:       now.UTC(),
	}
}

// BuildPrompt renders the grading prompt for one essay
func BuildPrompt(theme, text string) (prompts.Prompt, error) {
	criteria := make([]string, 0, len(Rubric))
	for _, c := range Rubric {
		criteria = append(criteria, fmt.Sprintf("- %s: %s.", c.Title, c.Focus))
	}

	body, err := prompts.Render(prompts.TutorFile, "essay-grade-body", map[string]string{
		"Theme":    theme,
		"Text":     text,
		"Criteria": strings.Join(criteria, "\n"),
	})
	if err != nil {
		return prompts.Prompt{}, err
	}

	instructions := prompts.NewInstructions(
		"Avalie detalhadamente cada competência (1 a 5) com nota entre 0 e 200.",
		"Cite trechos exatos da redação em cada justificativa.",
		"Liste todos os erros relevantes (ortografia, coesão, fuga ao tema, proposta incompleta etc.).",
		"Exija proposta de intervenção completa e alinhada aos direitos humanos.",
		"Seja preciso, objetivo e coerente com o desempenho apresentado.",
		fmt.Sprintf("Calcule a nota final como soma das cinco competências (máximo %d).", MaxTotalScore),
		fmt.Sprintf("As notas de cada competência devem ser múltiplos de %d (0, 20, 40, ..., %d).", ScoreStep, MaxCriterionScore),
	)

	return prompts.Build(
		prompts.MustGet(prompts.TutorFile, "essay-grade-system"),
		body,
		instructions,
		prompts.MustGet(prompts.TutorFile, "essay-grade-schema"),
	)
}
