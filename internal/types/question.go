package types

import "github.com/google/uuid"

// Question is a multiple-choice exam item tagged against the taxonomy
type Question struct {
	ID            uuid.UUID  `json:"id"`
	Subject       string     `json:"subject" validate:"required"`
	SkillCode     string     `json:"skill_code"`
	SkillID       *uuid.UUID `json:"skill_id,omitempty"`
	Difficulty    float64    `json:"difficulty" validate:"gte=0,lte=1"`
	Statement     string     `json:"statement"`
	Alternatives  [5]string  `json:"alternatives"`
	CorrectAnswer string     `json:"correct_answer" validate:"required,oneof=A B C D E"`
}
