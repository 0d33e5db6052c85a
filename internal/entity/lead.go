package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusQualified LeadStatus = "QUALIFIED"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusLost      LeadStatus = "LOST"
	LeadStatusArchived  LeadStatus = "ARCHIVED"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusConverted, LeadStatusLost, LeadStatusArchived:
		return true
	}
	return false
}

// ParseLeadStatus aceita o status em qualquer caixa ("converted", "CONVERTED").
func ParseLeadStatus(s string) (LeadStatus, error) {
	status := LeadStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidLeadStatus
	}
	return status, nil
}

// Attribution é gravada só na criação do lead (first-touch).
type Attribution struct {
	Source      string `json:"source,omitempty"`
	Campaign    string `json:"campaign,omitempty"`
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`
}

type Lead struct {
	ID          string      `json:"id"`
	Email       string      `json:"email,omitempty"`
	Name        string      `json:"name,omitempty"`
	Score       int         `json:"score"`
	Status      LeadStatus  `json:"status"`
	Attribution Attribution `json:"attribution"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// LeadSummary is what the ingestion endpoint echoes back next to an activity.
type LeadSummary struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email,omitempty"`
	Status LeadStatus `json:"status"`
}

func NewLead(email, name string, attribution Attribution) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:          uuid.New().String(),
		Email:       NormalizeEmail(email),
		Name:        strings.TrimSpace(name),
		Status:      LeadStatusNew,
		Attribution: attribution,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (l *Lead) Summary() LeadSummary {
	return LeadSummary{ID: l.ID, Name: l.Name, Email: l.Email, Status: l.Status}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type LeadFilter struct {
	Status LeadStatus
	Limit  int
}

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	// FindOrCreateByEmail inserts lead unless one with the same email exists.
	// The returned bool reports whether a row was created.
	FindOrCreateByEmail(ctx context.Context, lead *Lead) (*Lead, bool, error)
	Create(ctx context.Context, lead *Lead) error
	IncrementScore(ctx context.Context, id string, delta int) (int, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus) error
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	ArchiveStale(ctx context.Context, inactiveSince time.Time) (int64, error)
}
