package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/leadscore"
)

type RecordActivityUseCase struct {
	UoW    UnitOfWork
	Events EventPublisher
}

func NewRecordActivityUseCase(uow UnitOfWork, events EventPublisher) *RecordActivityUseCase {
	return &RecordActivityUseCase{UoW: uow, Events: events}
}

// Execute resolves (or creates) the lead, appends the activity and applies
// its score, all in one transaction.
func (uc *RecordActivityUseCase) Execute(ctx context.Context, input RecordActivityInput) (*RecordActivityOutput, error) {
	if errs := ValidateRecordActivityInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	var (
		out  RecordActivityOutput
		lead *entity.Lead
	)

	err := uc.UoW.Do(ctx, func(ctx context.Context, repos Repositories) error {
		var created bool
		var err error
		lead, created, err = resolveLead(ctx, repos.Leads, input)
		if err != nil {
			return err
		}

		activity := entity.NewLeadActivity(
			lead.ID,
			entity.ActivityType(strings.TrimSpace(input.Type)),
			strings.TrimSpace(input.Action),
			normalizeDetails(input.Details),
		)
		activity.IPAddress = input.IPAddress
		activity.UserAgent = input.UserAgent
		activity.Referrer = input.Referrer

		if err := repos.Activities.Create(ctx, activity); err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}

		delta := leadscore.ForActivityType(activity.Type)
		if delta > 0 {
			score, err := repos.Leads.IncrementScore(ctx, lead.ID, delta)
			if err != nil {
				return fmt.Errorf("increment score: %w", err)
			}
			lead.Score = score
		}

		summary := lead.Summary()
		activity.Lead = &summary

		out = RecordActivityOutput{
			Activity:    activity,
			LeadID:      lead.ID,
			ScoreDelta:  delta,
			LeadCreated: created,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
		}
		return nil, databaseError("failed to record activity", err)
	}

	log.Info().
		Str("lead_id", out.LeadID).
		Str("type", string(out.Activity.Type)).
		Int("score_delta", out.ScoreDelta).
		Bool("lead_created", out.LeadCreated).
		Msg("activity recorded")

	uc.publish(ctx, lead, &out)
	return &out, nil
}

func resolveLead(ctx context.Context, leads entity.LeadRepositoryInterface, input RecordActivityInput) (*entity.Lead, bool, error) {
	if id := strings.TrimSpace(input.LeadID); id != "" {
		// id fora do formato uuid nunca vai existir no banco
		if _, err := uuid.Parse(id); err != nil {
			return nil, false, entity.ErrLeadNotFound
		}
		lead, err := leads.FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return lead, false, nil
	}

	candidate := entity.NewLead(input.Email, input.Name, input.attribution())

	if candidate.Email != "" {
		lead, created, err := leads.FindOrCreateByEmail(ctx, candidate)
		if err != nil {
			return nil, false, fmt.Errorf("resolve lead by email: %w", err)
		}
		return lead, created, nil
	}

	// Sem email nem id: lead anônimo, o cliente reaproveita o leadId devolvido.
	if err := leads.Create(ctx, candidate); err != nil {
		return nil, false, fmt.Errorf("create anonymous lead: %w", err)
	}
	return candidate, true, nil
}

func normalizeDetails(details []byte) []byte {
	trimmed := bytes.TrimSpace(details)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

func (uc *RecordActivityUseCase) publish(ctx context.Context, lead *entity.Lead, out *RecordActivityOutput) {
	if uc.Events == nil {
		return
	}

	event := entity.ActivityRecordedEvent{
		LeadID:      lead.ID,
		ActivityID:  out.Activity.ID,
		Type:        out.Activity.Type,
		ScoreDelta:  out.ScoreDelta,
		Score:       lead.Score,
		LeadCreated: out.LeadCreated,
		Email:       lead.Email,
		Name:        lead.Name,
	}

	// Já está commitado; falha na fila só gera log.
	if err := uc.Events.PublishActivityRecorded(ctx, event); err != nil {
		log.Warn().Err(err).Str("lead_id", lead.ID).Msg("activity recorded but event publish failed")
	}
}
