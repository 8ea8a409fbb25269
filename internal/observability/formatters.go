// Package observability renders engine results as boxed summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// boxWidth is the width of every box, borders included
	boxWidth = 72
	// maxItemsToShow caps list sections
	maxItemsToShow = 5
)

// Printer writes human-readable summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a titled box, wrapping content to the box width
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFeedback summarizes a feedback result
func (p *Printer) PrintFeedback(result *types.FeedbackResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(result.FeedbackText + "\n")
	writeField(&sb, "Resposta correta", result.CorrectAnswerExplanation)
	writeField(&sb, "Causa do erro", result.ErrorRootCause)
	writeField(&sb, "Ponto de confusão", result.MisconceptionPoint)
	writeList(&sb, "Passos de revisão", result.ReviewSteps, true)
	writeList(&sb, "Conceitos", result.ConceptsToReview, false)
	writeField(&sb, "Estratégia", result.StudyStrategy)
	sb.WriteString(fmt.Sprintf("\nPróxima dificuldade: %.2f", result.SuggestedDifficulty))

	p.printBox(titled("FEEDBACK", result.Fallback), sb.String())
}

// PrintProgress summarizes a progress analysis
func (p *Printer) PrintProgress(subject string, analysis *types.ProgressAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(analysis.ProgressSummary + "\n")
	sb.WriteString(fmt.Sprintf("\nDificuldade ideal: %.2f\n", analysis.IdealDifficulty))
	writeList(&sb, "Áreas de foco", analysis.FocusAreas, false)
	writeList(&sb, "Habilidades prioritárias", analysis.PrioritySkills, false)

	if len(analysis.Recommendations) > 0 {
		sb.WriteString("\nRecomendações:\n")
		count := min(len(analysis.Recommendations), maxItemsToShow)
		for _, rec := range analysis.Recommendations[:count] {
			sb.WriteString(fmt.Sprintf("  [%d] %s: %s\n", rec.Priority, rec.Type, rec.Content))
		}
		if len(analysis.Recommendations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(analysis.Recommendations)-maxItemsToShow))
		}
	}
	writeField(&sb, "Meta semanal", analysis.WeeklyGoal)
	writeField(&sb, "Mensagem", analysis.MotivationalMessage)

	p.printBox(titled("PROGRESSO "+subject, analysis.Fallback), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMotivation prints a motivational message on one line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMotivation(msg *types.MotivationalMessage) {
	if msg == nil {
		return
	}
	icon := msg.Icon
	if icon == "" {
		icon = "•"
	}
	fmt.Fprintf(p.out, "%s %s\n", icon, msg.Message)
}

// PrintThemes lists generated essay themes
func (p *Printer) PrintThemes(themes []types.EssayTheme) {
	if len(themes) == 0 {
		return
	}

	var sb strings.Builder
	for i, theme := range themes {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, theme.Title))
		if theme.Problem != "" {
			sb.WriteString("   " + theme.Problem + "\n")
		}
		if n := len(theme.SupportTexts); n > 0 {
			sb.WriteString(fmt.Sprintf("   %d textos motivadores\n", n))
		}
	}
	p.printBox("TEMAS DE REDAÇÃO", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEssayEvaluation prints the per-criterion scores and the total
func (p *Printer) PrintEssayEvaluation(eval *types.EssayEvaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	if eval.RestatedTheme != "" {
		sb.WriteString("Tema: " + eval.RestatedTheme + "\n")
	}
	sb.WriteString(fmt.Sprintf("Palavras: %d\n\n", eval.WordCount))
	for _, c := range eval.Criteria {
		sb.WriteString(fmt.Sprintf("C%d %-52s %4d\n", c.Number, c.Title, c.Score))
	}
	sb.WriteString(fmt.Sprintf("%-55s %4d\n", "Total", eval.TotalScore))
	writeField(&sb, "Comentários", eval.GeneralComments)
	writeList(&sb, "Sugestões", eval.Suggestions, true)

	p.printBox("CORREÇÃO DA REDAÇÃO", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintConcepts lists the catalog entries of a subject
func (p *Printer) PrintConcepts(subject, name string, concepts []types.ConceptReference) {
	var sb strings.Builder
	for _, c := range concepts {
		sb.WriteString(c.String() + "\n")
	}
	if len(concepts) == 0 {
		sb.WriteString("(nenhum conceito)")
	}
	title := subject
	if name != "" {
		title = subject + " - " + name
	}
	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

func titled(title string, fallback bool) string {
	if fallback {
		return title + " (fallback)"
	}
	return title
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s: %s\n", label, value))
}

func writeList(sb *strings.Builder, label string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + label + ":\n")
	for i, item := range items {
		if numbered {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, item))
		} else {
			sb.WriteString("  • " + item + "\n")
		}
	}
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrap splits line at word boundaries so no piece exceeds width runes.
// Words longer than width are cut.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	if len(indent) > width/2 {
		indent = ""
	}
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > width-len(indent) {
			runes := []rune(word)
			cut := width - len(indent)
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, indent+string(runes[:cut]))
			word = string(runes[cut:])
		}
		switch {
		case current == "":
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = indent + word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
