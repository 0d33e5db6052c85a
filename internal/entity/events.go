package entity

const (
	EventActivityRecorded = "taskflow.lead.activity_recorded"
	EventLevelUp          = "taskflow.user.level_up"
)

type ActivityRecordedEvent struct {
	LeadID      string       `json:"lead_id"`
	ActivityID  string       `json:"activity_id"`
	Type        ActivityType `json:"type"`
	ScoreDelta  int          `json:"score_delta"`
	Score       int          `json:"score"`
	LeadCreated bool         `json:"lead_created"`
	Email       string       `json:"email,omitempty"`
	Name        string       `json:"name,omitempty"`
}

type LevelUpEvent struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	PreviousLevel int    `json:"previous_level"`
	Level         int    `json:"level"`
	XP            int    `json:"xp"`
}
