// Package essay grades argumentative essays against the fixed five-criterion rubric.
package essay

import (
	"math"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/normalize"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// MaxCriterionScore is the top score of a single criterion
	MaxCriterionScore = 200
	// ScoreStep is the width of the official scoring bands
	ScoreStep = 20
	// MaxTotalScore is the top total score
	MaxTotalScore = 5 * MaxCriterionScore
	// MissingJustification replaces a criterion the model did not assess
	MissingJustification = "Avaliação não fornecida."
)

// Criterion is a rubric entry
type Criterion struct {
	Number int
	Title  string
	Focus  string // what the grader is asked to look at
}

// Rubric is the ordered list of criteria every evaluation must contain
var Rubric = [5]Criterion{
	{Number: 1, Title: "Competência 1 – Domínio da norma padrão", Focus: "domínio da modalidade escrita formal da língua portuguesa"},
	{Number: 2, Title: "Competência 2 – Compreensão da proposta", Focus: "compreensão da proposta e aplicação de conceitos de várias áreas dentro do tipo dissertativo-argumentativo"},
	{Number: 3, Title: "Competência 3 – Seleção e organização de argumentos", Focus: "seleção, relação, organização e interpretação de informações em defesa de um ponto de vista"},
	{Number: 4, Title: "Competência 4 – Coesão e coerência", Focus: "conhecimento dos mecanismos linguísticos necessários para a construção da argumentação"},
	{Number: 5, Title: "Competência 5 – Proposta de intervenção", Focus: "proposta de intervenção para o problema abordado, respeitando os direitos humanos"},
}

// WordCount counts whitespace-delimited tokens
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Quantize coerces a score into the nearest official band:
// round(clamp(x, 0, 200) / 20) * 20, rounding half away from zero.
func Quantize(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	clamped := normalize.Clamp(x, 0, MaxCriterionScore)
	return int(math.Round(clamped/ScoreStep)) * ScoreStep
}

// NormalizeCriteria always returns the five rubric criteria in order.
// Each criterion is taken from the entry whose "number" matches, else from the
// entry at the same position unless another criterion claimed it by number,
// else filled with a zero-score placeholder. Numbering 0..4 is read as 1..5.
func NormalizeCriteria(doc *normalize.Document) []types.EssayCriterion {
	entries := doc.Objects("criteria", "competencias")

	// labels like "C1" and numbers outside the rubric stay available by position
	numbers := make(map[*normalize.Document]int, len(entries))
	zeroBased := false
	for _, entry := range entries {
		v, ok := entry.Raw("number", "numero")
		if !ok {
			continue
		}
		n, ok := normalize.Integer(v)
		if !ok || n < 0 || n > len(Rubric) {
			continue
		}
		numbers[entry] = n
		if n == 0 {
			zeroBased = true
		}
	}
	for _, n := range numbers {
		if n == len(Rubric) {
			zeroBased = false
		}
	}

	byNumber := make(map[int]*normalize.Document, len(numbers))
	claimed := make(map[*normalize.Document]bool, len(numbers))
	for _, entry := range entries {
		n, ok := numbers[entry]
		if !ok {
			continue
		}
		if zeroBased {
			n++
		}
		if _, dup := byNumber[n]; n >= 1 && !dup {
			byNumber[n] = entry
			claimed[entry] = true
		}
	}

	criteria := make([]types.EssayCriterion, 0, len(Rubric))
	for i, ref := range Rubric {
		entry, ok := byNumber[ref.Number]
		if !ok && i < len(entries) && !claimed[entries[i]] {
			entry, ok = entries[i], true
		}
		if !ok {
			doc.Record(ref.Title, "criterion missing")
			criteria = append(criteria, placeholder(ref))
			continue
		}

		criteria = append(criteria, types.EssayCriterion{
			Number:        ref.Number,
			Title:         entry.StringOr(ref.Title, "title", "titulo"),
			Score:         Quantize(entry.NumberOr(0, "score", "nota")),
			Justification: entry.StringOr(MissingJustification, "justification", "justificativa"),
			Errors:        entry.List("errors", "erros"),
			Remarks:       entry.String("remarks", "observacoes"),
			CitedPassages: entry.List("cited_passages", "trechos_citados"),
		})
	}
	return criteria
}

// TotalScore sums the criterion scores
func TotalScore(criteria []types.EssayCriterion) int {
	total := 0
	for _, c := range criteria {
		total += c.Score
	}
	return total
}

func placeholder(ref Criterion) types.EssayCriterion {
	return types.EssayCriterion{
		Number:        ref.Number,
		Title:         ref.Title,
		Score:         0,
		Justification: MissingJustification,
		Errors:        []string{},
		CitedPassages: []string{},
	}
}
