package usecase

import (
	"encoding/json"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/progression"
)

type RecordActivityInput struct {
	LeadID  string          `json:"leadId"`
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Action  string          `json:"action"`
	Details json.RawMessage `json:"details"`

	Source      string `json:"source"`
	Campaign    string `json:"campaign"`
	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`
	UTMTerm     string `json:"utmTerm"`
	UTMContent  string `json:"utmContent"`

	// Preenchidos pelo handler a partir dos headers, nunca do body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	Referrer  string `json:"-"`
}

func (in RecordActivityInput) attribution() entity.Attribution {
	return entity.Attribution{
		Source:      in.Source,
		Campaign:    in.Campaign,
		UTMSource:   in.UTMSource,
		UTMMedium:   in.UTMMedium,
		UTMCampaign: in.UTMCampaign,
		UTMTerm:     in.UTMTerm,
		UTMContent:  in.UTMContent,
	}
}

type RecordActivityOutput struct {
	Activity    *entity.LeadActivity `json:"activity"`
	LeadID      string               `json:"leadId"`
	ScoreDelta  int                  `json:"-"`
	LeadCreated bool                 `json:"-"`
}

type AwardXPInput struct {
	UserID string `json:"-"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type AwardXPOutput struct {
	progression.Progress
	PreviousLevel int  `json:"previousLevel"`
	LeveledUp     bool `json:"leveledUp"`
}

type LeadDetailsOutput struct {
	Lead       *entity.Lead           `json:"lead"`
	Activities []*entity.LeadActivity `json:"activities"`
}

type ListLeadsInput struct {
	Status string
	Limit  int
}
