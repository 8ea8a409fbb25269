package types

import "fmt"

// ConceptReference is a knowledge object from the taxonomy catalog
type ConceptReference struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// String renders the reference in the canonical "<code> - <description>" form
func (c ConceptReference) String() string {
	return fmt.Sprintf("%s - %s", c.Code, c.Description)
}

// TaxonomyEntry describes one skill together with its parent competency
type TaxonomyEntry struct {
	Code                  string `json:"code"`
	Description           string `json:"description"`
	CompetencyCode        string `json:"competency_code"`
	CompetencyDescription string `json:"competency_description"`
}
