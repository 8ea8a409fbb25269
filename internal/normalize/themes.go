package normalize

import (
	"fmt"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

// MaxThemes bounds the number of essay themes kept from one response
const MaxThemes = 10

// Themes builds the essay theme list. The "themes" array is the one hard
// requirement; without it a MalformedResponseError is returned.
func Themes(doc *Document) ([]types.EssayTheme, error) {
	raw, ok := doc.Raw("themes", "temas")
	if !ok {
		return nil, &MalformedResponseError{Reason: "response has no themes list"}
	}
	if _, isList := raw.([]any); !isList {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("themes is %s, expected array", kindOf(raw))}
	}

	items := doc.Objects("themes", "temas")
	if len(items) > MaxThemes {
		items = items[:MaxThemes]
	}

	themes := make([]types.EssayTheme, 0, len(items))
	for i, item := range items {
		n := i + 1
		texts := make([]types.SupportText, 0)
		if item.Has("support_texts", "textos_apoio") {
			for j, text := range item.Objects("support_texts", "textos_apoio") {
				texts = append(texts, types.SupportText{
					Title:   text.StringOr(fmt.Sprintf("Texto de apoio %d", j+1), "title", "titulo"),
					Kind:    text.StringOr("referencia", "kind", "tipo"),
					Content: text.String("content", "conteudo"),
					Source:  text.String("source", "fonte", "origem"),
				})
			}
		}

		themes = append(themes, types.EssayTheme{
			ID:                     item.StringOr(fmt.Sprintf("tema-%d", n), "id"),
			Title:                  item.StringOr(fmt.Sprintf("Tema %d", n), "title", "titulo", "nome"),
			Description:            item.String("description", "descricao", "resumo"),
			Problem:                item.String("problem", "problematica", "problema"),
			InterventionGuidelines: item.String("intervention_guidelines", "diretrizes_intervencao", "diretrizes"),
			SupportTexts:           texts,
		})
	}
	return themes, nil
}
