package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/adaptive-tutor/internal/observability"
	"github.com/jonathan/adaptive-tutor/internal/taxonomy"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

var conceptsSubject string

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "List the skills of the embedded taxonomy",
	Long:  "Prints the catalog skills used to resolve concept codes, for one subject or all of them. Needs no database or API key.",
	RunE:  runConcepts,
}

func init() {
	conceptsCmd.Flags().StringVarP(&conceptsSubject, "subject", "s", "", "Subject code (default: all)")
	rootCmd.AddCommand(conceptsCmd)
}

// SubjectConcepts is one subject of the catalog
type SubjectConcepts struct {
	Subject  string                   `json:"subject"`
	Name     string                   `json:"name"`
	Concepts []types.ConceptReference `json:"concepts"`
}

func listConcepts(catalog *taxonomy.Catalog, subject string) []SubjectConcepts {
	subjects := catalog.Subjects()
	if subject = strings.ToUpper(strings.TrimSpace(subject)); subject != "" {
		subjects = []string{subject}
	}

	out := make([]SubjectConcepts, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SubjectConcepts{Subject: s, Name: catalog.SubjectName(s), Concepts: catalog.ListConcepts(s)})
	}
	return out
}

func runConcepts(cmd *cobra.Command, _ []string) error {
	catalog, err := taxonomy.Default()
	if err != nil {
		return err
	}

	result := listConcepts(catalog, conceptsSubject)
	return render(cmd.OutOrStdout(), result, func(p *observability.Printer) {
		for _, s := range result {
			p.PrintConcepts(s.Subject, s.Name, s.Concepts)
		}
	})
}
