package normalize

import "github.com/jonathan/adaptive-tutor/internal/types"

// DefaultIcon is used when the message omits an icon
const DefaultIcon = "🌟"

var messageKinds = map[string]types.MessageKind{
	"congratulations": types.MessageCongratulations,
	"parabens":        types.MessageCongratulations,
	"encouragement":   types.MessageEncouragement,
	"encorajamento":   types.MessageEncouragement,
	"tip":             types.MessageTip,
	"dica":            types.MessageTip,
	"goal":            types.MessageGoal,
	"meta":            types.MessageGoal,
}

// Motivation builds a MotivationalMessage. An empty Message is left for the caller to replace.
func Motivation(doc *Document) types.MotivationalMessage {
	kind, ok := messageKinds[FoldText(doc.String("kind", "tipo"))]
	if !ok {
		doc.Record("kind", reasonOutOfSet)
		kind = types.MessageEncouragement
	}

	return types.MotivationalMessage{
		Message: doc.String("message", "mensagem"),
		Kind:    kind,
		Icon:    doc.StringOr(DefaultIcon, "icon", "icone"),
	}
}
