// Package normalize coerces free-form JSON produced by the generation backend
// into the engine's strict value types.
//
// Every accessor is total: a missing or wrong-typed field yields a safe default
// and a Defaulted event instead of an error. Only an unparsable payload fails.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/llm"
)

const snippetLimit = 200

// Document is an untyped JSON object read field by field
type Document struct {
	fields map[string]any
	path   string
	events *[]Defaulted
}

// Parse cleans raw model output and decodes it as a JSON object
func Parse(raw string) (*Document, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &MalformedResponseError{Reason: "empty response"}
	}

	fields, err := decodeObject(cleaned)
	if err != nil {
		// a bracketed array in the prose may have hidden the object after it
		if obj, ok := llm.ExtractJSONObject(raw); ok {
			if fields, objErr := decodeObject(obj); objErr == nil {
				return NewDocument(fields), nil
			}
		}
		return nil, err
	}
	return NewDocument(fields), nil
}

func decodeObject(s string) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON", Snippet: snippet(s), Cause: err}
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("expected JSON object, got %s", kindOf(value)), Snippet: snippet(s)}
	}
	return fields, nil
}

// NewDocument wraps an already decoded object
func NewDocument(fields map[string]any) *Document {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Document{fields: fields, events: &[]Defaulted{}}
}

// Defaults returns every substitution recorded on this document and its children
func (d *Document) Defaults() []Defaulted {
	out := make([]Defaulted, len(*d.events))
	copy(out, *d.events)
	return out
}

// Raw returns the first present value among key and its aliases
func (d *Document) Raw(key string, aliases ...string) (any, bool) {
	if v, ok := d.fields[key]; ok && v != nil {
		return v, true
	}
	for _, alias := range aliases {
		if v, ok := d.fields[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns a trimmed string field, "" when missing or not textual.
// Numbers are formatted and lists of strings are joined with ", ".
func (d *Document) String(key string, aliases ...string) string {
	return d.StringOr("", key, aliases...)
}

// StringOr is String with an explicit default for missing or blank values
func (d *Document) StringOr(def, key string, aliases ...string) string {
	v, ok := d.Raw(key, aliases...)
	if !ok {
		d.record(key, reasonMissing)
		return def
	}
	s, ok := stringValue(v)
	if !ok {
		d.record(key, reasonWrongType)
		return def
	}
	if s == "" {
		d.record(key, reasonMissing)
		return def
	}
	return s
}

// List returns a list field through List normalization; never nil
func (d *Document) List(key string, aliases ...string) []string {
	v, ok := d.Raw(key, aliases...)
	if !ok {
		d.record(key, reasonMissing)
		return []string{}
	}
	switch v.(type) {
	case []any, string:
	default:
		d.record(key, reasonWrongType)
	}
	return List(v)
}

// NumberOr returns a numeric field, def when missing. A present but
// non-numeric value coerces to 0.
func (d *Document) NumberOr(def float64, key string, aliases ...string) float64 {
	v, ok := d.Raw(key, aliases...)
	if !ok {
		d.record(key, reasonMissing)
		return def
	}
	n, ok := numberValue(v)
	if !ok {
		d.record(key, reasonWrongType)
	}
	return n
}

// Objects returns the object entries of a list field as child documents.
// Non-object entries are skipped.
func (d *Document) Objects(key string, aliases ...string) []*Document {
	v, ok := d.Raw(key, aliases...)
	if !ok {
		d.record(key, reasonMissing)
		return []*Document{}
	}
	items, ok := v.([]any)
	if !ok {
		d.record(key, reasonWrongType)
		return []*Document{}
	}

	out := make([]*Document, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			d.record(fmt.Sprintf("%s[%d]", key, i), reasonWrongType)
			continue
		}
		out = append(out, &Document{
			fields: obj,
			path:   d.field(fmt.Sprintf("%s[%d]", key, i)),
			events: d.events,
		})
	}
	return out
}

// Has reports whether key or one of its aliases is present and non-null
func (d *Document) Has(key string, aliases ...string) bool {
	_, ok := d.Raw(key, aliases...)
	return ok
}

// Record adds a Defaulted event for a field handled outside the accessors
func (d *Document) Record(field, reason string) {
	d.record(field, reason)
}

func (d *Document) record(field, reason string) {
	*d.events = append(*d.events, Defaulted{Field: d.field(field), Reason: reason})
}

func (d *Document) field(name string) string {
	if d.path == "" {
		return name
	}
	return d.path + "." + name
}

func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64, bool:
		return fmt.Sprint(val), true
	case []any:
		parts := List(val)
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLimit {
		return s
	}
	return string(r[:snippetLimit]) + "..."
}
