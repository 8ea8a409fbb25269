// Package taxonomy provides the read-only catalog of knowledge objects per exam subject.
// The catalog is embedded at compile time and shared across requests.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

//go:embed catalog.json
var catalogData []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Subject is a single exam area with its ordered knowledge objects
type Subject struct {
	Code     string                   `json:"code"`
	Name     string                   `json:"name"`
	Concepts []types.ConceptReference `json:"concepts"`
}

type catalogFile struct {
	Subjects []Subject `json:"subjects"`
}

// Catalog maps subject codes to their knowledge objects. It is never mutated after Load.
type Catalog struct {
	subjects map[string]Subject
	order    []string
}

// Load parses a catalog document
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy catalog: %w", err)
	}

	c := &Catalog{subjects: make(map[string]Subject, len(file.Subjects))}
	for _, s := range file.Subjects {
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code == "" {
			return nil, fmt.Errorf("taxonomy catalog: subject without code")
		}
		if _, dup := c.subjects[code]; dup {
			return nil, fmt.Errorf("taxonomy catalog: duplicate subject %s", code)
		}
		s.Code = code
		c.subjects[code] = s
		c.order = append(c.order, code)
	}
	return c, nil
}

// New builds a catalog from in-memory subjects. Mostly useful in tests.
func New(subjects ...Subject) *Catalog {
	c := &Catalog{subjects: make(map[string]Subject, len(subjects))}
	for _, s := range subjects {
		s.Code = strings.ToUpper(s.Code)
		c.subjects[s.Code] = s
		c.order = append(c.order, s.Code)
	}
	return c
}

// Default returns the embedded catalog, parsed once per process
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(catalogData)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for initialization paths where a broken embed is a programming error
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// ListConcepts returns the knowledge objects of a subject in catalog order.
// The returned slice is a copy; an unknown subject yields an empty list.
func (c *Catalog) ListConcepts(subject string) []types.ConceptReference {
	s, ok := c.subjects[strings.ToUpper(strings.TrimSpace(subject))]
	if !ok {
		return []types.ConceptReference{}
	}
	out := make([]types.ConceptReference, len(s.Concepts))
	copy(out, s.Concepts)
	return out
}

// Codes returns the concept codes of a subject in catalog order
func (c *Catalog) Codes(subject string) []string {
	concepts := c.ListConcepts(subject)
	codes := make([]string, len(concepts))
	for i, concept := range concepts {
		codes[i] = concept.Code
	}
	return codes
}

// SubjectName returns the display name of a subject code
func (c *Catalog) SubjectName(subject string) string {
	code := strings.ToUpper(strings.TrimSpace(subject))
	if code == "" {
		return "Matéria"
	}
	if s, ok := c.subjects[code]; ok && s.Name != "" {
		return s.Name
	}
	return code
}

// Subjects returns the subject codes in catalog order
func (c *Catalog) Subjects() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
