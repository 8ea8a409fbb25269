package prompts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

// ErrMissingSchema is returned by Build when no response format is given
var ErrMissingSchema = errors.New("prompt has no response schema")

// blankRuns matches the empty lines left by optional template sections
var blankRuns = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+\n`)

// Learner text is quoted between these markers and kept verbatim
const (
	quoteOpen  = "<<<"
	quoteClose = ">>>"
)

// Prompt is the system/user pair sent to the generation backend
type Prompt struct {
	System string
	User   string
}

// Instructions is an ordered instruction list. Numbers are assigned when
// rendering, so conditional entries never break the sequence.
type Instructions struct {
	items []string
}

// NewInstructions starts a list with the given base instructions
func NewInstructions(base ...string) *Instructions {
	in := &Instructions{items: make([]string, 0, len(base)+4)}
	for _, text := range base {
		in.Add(text)
	}
	return in
}

// Add appends an instruction; blank text is ignored
func (in *Instructions) Add(text string) *Instructions {
	if text = strings.TrimSpace(text); text != "" {
		in.items = append(in.items, text)
	}
	return in
}

// AddIf appends text only when cond holds
func (in *Instructions) AddIf(cond bool, text string) *Instructions {
	if cond {
		in.Add(text)
	}
	return in
}

// Len returns the number of instructions
func (in *Instructions) Len() int {
	if in == nil {
		return 0
	}
	return len(in.items)
}

// Render numbers the instructions 1..n, one per line
func (in *Instructions) Render() string {
	if in.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, text := range in.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, text)
	}
	return b.String()
}

// Build assembles the user prompt from the context body, the numbered
// instructions and the response schema. The schema is mandatory.
func Build(system, body string, instructions *Instructions, schema string) (Prompt, error) {
	if strings.TrimSpace(schema) == "" {
		return Prompt{}, ErrMissingSchema
	}
	if strings.TrimSpace(body) == "" {
		return Prompt{}, errors.New("prompt body is empty")
	}

	var b strings.Builder
	b.WriteString(collapseBlankLines(strings.TrimSpace(body)))
	if instructions.Len() > 0 {
		b.WriteString("\n\nINSTRUÇÕES:\n")
		b.WriteString(instructions.Render())
	}
	b.WriteString("\n\nFORMATO DE RESPOSTA:\n")
	b.WriteString(strings.TrimSpace(schema))

	return Prompt{System: strings.TrimSpace(system), User: b.String()}, nil
}

// collapseBlankLines squeezes runs of empty lines to one, except inside
// <<< >>> quoted blocks
func collapseBlankLines(body string) string {
	var b strings.Builder
	for {
		open := strings.Index(body, quoteOpen)
		if open < 0 {
			break
		}
		end := strings.Index(body[open:], quoteClose)
		if end < 0 {
			break
		}
		end += open + len(quoteClose)
		b.WriteString(blankRuns.ReplaceAllString(body[:open], "\n\n"))
		b.WriteString(body[open:end])
		body = body[end:]
	}
	b.WriteString(blankRuns.ReplaceAllString(body, "\n\n"))
	return b.String()
}

// RenderConcepts lists the knowledge objects of a subject for the feedback
// prompt. It returns "" for an empty catalog.
func RenderConcepts(subjectName string, concepts []types.ConceptReference) string {
	if len(concepts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(concepts))
	for _, c := range concepts {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Code, c.Description))
	}
	return Format(MustGet(TutorFile, "concepts-context"), map[string]string{
		"SubjectName": strings.ToUpper(subjectName),
		"Concepts":    strings.Join(lines, "\n"),
	})
}

// Truncate shortens text to limit runes, appending "..." when cut
func Truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return strings.TrimSpace(string(r[:limit])) + "..."
}

// OrDefault returns value, or def when value is blank
func OrDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
