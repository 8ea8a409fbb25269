package types

// MessageKind classifies a motivational message
type MessageKind string

// Message kinds
const (
	MessageCongratulations MessageKind = "congratulations"
	MessageEncouragement   MessageKind = "encouragement"
	MessageTip             MessageKind = "tip"
	MessageGoal            MessageKind = "goal"
)

// MotivationalMessage is a short personalized encouragement
type MotivationalMessage struct {
	Message  string      `json:"message"`
	Kind     MessageKind `json:"kind"`
	Icon     string      `json:"icon"`
	Fallback bool        `json:"fallback"`
}
