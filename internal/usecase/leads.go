package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/taskflow/internal/entity"
)

const recentActivityLimit = 100

type GetLeadUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Activities entity.LeadActivityRepositoryInterface
}

func NewGetLeadUseCase(leads entity.LeadRepositoryInterface, activities entity.LeadActivityRepositoryInterface) *GetLeadUseCase {
	return &GetLeadUseCase{Leads: leads, Activities: activities}
}

func (uc *GetLeadUseCase) Execute(ctx context.Context, id string) (*LeadDetailsOutput, error) {
	if !validID(id) {
		return nil, leadLookupError(entity.ErrLeadNotFound)
	}

	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, leadLookupError(err)
	}

	activities, err := uc.Activities.ListByLead(ctx, lead.ID, recentActivityLimit)
	if err != nil {
		return nil, databaseError("failed to load activities", err)
	}
	if activities == nil {
		activities = []*entity.LeadActivity{}
	}

	return &LeadDetailsOutput{Lead: lead, Activities: activities}, nil
}

type ListLeadsUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(leads entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) ([]*entity.Lead, error) {
	filter := entity.LeadFilter{Limit: input.Limit}

	if strings.TrimSpace(input.Status) != "" {
		status, err := entity.ParseLeadStatus(input.Status)
		if err != nil {
			return nil, &DomainError{Code: CodeInvalidStatus, Message: "invalid status: " + input.Status}
		}
		filter.Status = status
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultLeadLimit
	case filter.Limit > MaxLeadLimit:
		filter.Limit = MaxLeadLimit
	}

	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	return leads, nil
}

type UpdateLeadStatusUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewUpdateLeadStatusUseCase(leads entity.LeadRepositoryInterface) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{Leads: leads}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, id, rawStatus string) (*entity.Lead, error) {
	status, err := entity.ParseLeadStatus(rawStatus)
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidStatus, Message: "invalid status: " + rawStatus}
	}
	if !validID(id) {
		return nil, leadLookupError(entity.ErrLeadNotFound)
	}

	if err := uc.Leads.UpdateStatus(ctx, id, status); err != nil {
		return nil, leadLookupError(err)
	}

	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, leadLookupError(err)
	}

	log.Info().Str("lead_id", id).Str("status", string(status)).Msg("lead status updated")
	return lead, nil
}

// ArchiveStaleLeadsUseCase moves NEW leads without recent activity to ARCHIVED.
type ArchiveStaleLeadsUseCase struct {
	Leads entity.LeadRepositoryInterface
	After time.Duration
	Now   func() time.Time
}

func NewArchiveStaleLeadsUseCase(leads entity.LeadRepositoryInterface, after time.Duration) *ArchiveStaleLeadsUseCase {
	return &ArchiveStaleLeadsUseCase{Leads: leads, After: after, Now: time.Now}
}

func (uc *ArchiveStaleLeadsUseCase) Execute(ctx context.Context) (int64, error) {
	cutoff := uc.Now().Add(-uc.After)

	n, err := uc.Leads.ArchiveStale(ctx, cutoff)
	if err != nil {
		return 0, databaseError("failed to archive stale leads", err)
	}
	return n, nil
}

// validID evita mandar para o banco um id que nem é uuid (leads e users são uuid)
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func leadLookupError(err error) error {
	if errors.Is(err, entity.ErrLeadNotFound) {
		return &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
	}
	return databaseError("failed to load lead", err)
}
