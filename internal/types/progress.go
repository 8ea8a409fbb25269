package types

// RecommendationType classifies a study recommendation
type RecommendationType string

// Recommendation types accepted after normalization
const (
	RecommendationStudy    RecommendationType = "study"
	RecommendationPractice RecommendationType = "practice"
	RecommendationReview   RecommendationType = "review"
)

// Recommendation is a single item of a study plan
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Content     string             `json:"content"`
	Priority    int                `json:"priority"` // 1-5
	FocusSkills []string           `json:"focus_skills"`
}

// ProgressAnalysis is the normalized progress review for one subject
type ProgressAnalysis struct {
	ProgressSummary     string           `json:"progress_summary"`
	Recommendations     []Recommendation `json:"recommendations"`
	IdealDifficulty     float64          `json:"ideal_difficulty"`
	FocusAreas          []string         `json:"focus_areas"`
	PrioritySkills      []string         `json:"priority_skills"`
	MotivationalMessage string           `json:"motivational_message"`
	WeeklyGoal          string           `json:"weekly_goal"`
	Fallback            bool             `json:"fallback"`
}
