package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityPageView     ActivityType = "page_view"
	ActivityFormStart    ActivityType = "form_start"
	ActivityFormComplete ActivityType = "form_complete"
	ActivityEmailOpen    ActivityType = "email_open"
	ActivityClick        ActivityType = "click"
	ActivitySignup       ActivityType = "signup"
	ActivityPurchase     ActivityType = "purchase"
)

// LeadActivity é imutável: criada uma vez, nunca atualizada ou removida.
type LeadActivity struct {
	ID        string          `json:"id"`
	LeadID    string          `json:"leadId"`
	Type      ActivityType    `json:"type"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	IPAddress string          `json:"ipAddress,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
	Referrer  string          `json:"referrer,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`

	Lead *LeadSummary `json:"lead,omitempty"`
}

func NewLeadActivity(leadID string, activityType ActivityType, action string, details json.RawMessage) *LeadActivity {
	return &LeadActivity{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Type:      activityType,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

type LeadActivityRepositoryInterface interface {
	Create(ctx context.Context, activity *LeadActivity) error
	ListByLead(ctx context.Context, leadID string, limit int) ([]*LeadActivity, error)
}
