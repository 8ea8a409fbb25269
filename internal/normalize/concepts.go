package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// descriptionPrefixRunes is how much of a folded description must appear in a candidate
	descriptionPrefixRunes = 80
	// conceptFallbackCount is how many catalog entries are used when nothing resolves
	conceptFallbackCount = 3
)

// FoldText decomposes s, strips combining marks and lower-cases the result
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// ResolveConcepts rewrites free-text concept references into canonical
// "<code> - <description>" entries from concepts.
//
// A candidate resolves by its leading code (text before the first dash,
// case-insensitive) or, failing that, when its folded text contains the first
// 80 folded characters of a catalog description. Unresolved candidates are
// dropped. When nothing resolves the first three catalog entries are returned.
// With an empty catalog the candidate list is passed through unchanged.
func ResolveConcepts(candidates any, concepts []types.ConceptReference) []string {
	if len(concepts) == 0 {
		return passThrough(candidates)
	}

	byCode := make(map[string]types.ConceptReference, len(concepts))
	prefixes := make([]string, len(concepts))
	for i, c := range concepts {
		byCode[strings.ToUpper(c.Code)] = c
		prefixes[i] = firstRunes(FoldText(c.Description), descriptionPrefixRunes)
	}

	seen := make(map[string]bool)
	resolved := make([]string, 0)
	for _, candidate := range candidateStrings(candidates) {
		ref, ok := matchConcept(candidate, byCode, concepts, prefixes)
		if !ok || seen[ref.Code] {
			continue
		}
		seen[ref.Code] = true
		resolved = append(resolved, ref.String())
	}

	if len(resolved) > 0 {
		return resolved
	}
	return FallbackConcepts(concepts)
}

// FallbackConcepts renders the first three catalog entries
func FallbackConcepts(concepts []types.ConceptReference) []string {
	n := min(conceptFallbackCount, len(concepts))
	out := make([]string, 0, n)
	for _, c := range concepts[:n] {
		out = append(out, c.String())
	}
	return out
}

func matchConcept(candidate string, byCode map[string]types.ConceptReference, concepts []types.ConceptReference, prefixes []string) (types.ConceptReference, bool) {
	code, _, _ := strings.Cut(candidate, "-")
	code = strings.ToUpper(strings.TrimSpace(code))
	if ref, ok := byCode[code]; ok && code != "" {
		return ref, true
	}

	folded := FoldText(candidate)
	for i, prefix := range prefixes {
		if prefix != "" && strings.Contains(folded, prefix) {
			return concepts[i], true
		}
	}
	return types.ConceptReference{}, false
}

// candidateStrings accepts a list of strings or a single "CODE - description" string
func candidateStrings(v any) []string {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ';' || r == '•' })
	}
	return List(v)
}

func passThrough(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
