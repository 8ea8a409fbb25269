// Package schemas checks generated responses against the JSON Schemas in the
// top-level schemas directory. Violations are diagnostics: the normalizer
// still repairs the document, but drift between prompt and model shows up in logs.
package schemas

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/adaptive-tutor/schemas"
)

// Kind identifies the response shape of an engine operation
type Kind string

// Response kinds, one per schema file
const (
	KindFeedback   Kind = "feedback"
	KindProgress   Kind = "progress"
	KindMotivation Kind = "motivation"
	KindThemes     Kind = "themes"
	KindEssay      Kind = "essay"
)

// Kinds lists every response kind
var Kinds = []Kind{KindFeedback, KindProgress, KindMotivation, KindThemes, KindEssay}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Kind   Kind
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s response does not match schema:\n", ve.Kind)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Fields returns "field: message" pairs, convenient for structured logs
func (ve *ValidationError) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		out = append(out, e.Field+": "+e.Message)
	}
	return out
}

var (
	compiled   = make(map[Kind]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// Load returns the compiled schema for kind, compiling it on first use
func Load(kind Kind) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[kind]; ok {
		return schema, nil
	}

	path := string(kind) + ".schema.json"
	data, err := fs.ReadFile(schemafiles.FS, path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "schema not found", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "invalid schema", Cause: err}
	}
	compiled[kind] = schema
	return schema, nil
}

// Check validates a JSON document against the schema of kind.
// It returns nil, a *ValidationError, or a *SchemaLoadError.
func Check(kind Kind, jsonContent string) error {
	schema, err := Load(kind)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &SchemaLoadError{Path: string(kind), Message: "document could not be loaded", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Kind:   kind,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
