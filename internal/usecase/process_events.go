package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/taskflow/internal/entity"
)

// ProcessEventsUseCase reage aos eventos consumidos da fila.
type ProcessEventsUseCase struct {
	Leads        entity.LeadRepositoryInterface
	EmailService EmailService
}

func NewProcessEventsUseCase(leads entity.LeadRepositoryInterface, emailService EmailService) *ProcessEventsUseCase {
	return &ProcessEventsUseCase{Leads: leads, EmailService: emailService}
}

func (uc *ProcessEventsUseCase) HandleActivityRecorded(ctx context.Context, event entity.ActivityRecordedEvent) error {
	switch event.Type {
	case entity.ActivityPurchase:
		return uc.convertLead(ctx, event.LeadID)

	case entity.ActivitySignup:
		if event.Email == "" || uc.EmailService == nil {
			return nil
		}
		if err := uc.EmailService.SendLeadWelcome(event.Email, event.Name); err != nil {
			return fmt.Errorf("send lead welcome: %w", err)
		}
		log.Info().Str("lead_id", event.LeadID).Msg("lead welcome email sent")
	}
	return nil
}

func (uc *ProcessEventsUseCase) HandleLevelUp(ctx context.Context, event entity.LevelUpEvent) error {
	if event.Email == "" || uc.EmailService == nil {
		return nil
	}
	if err := uc.EmailService.SendLevelUp(event.Email, event.Name, event.Level); err != nil {
		return fmt.Errorf("send level up email: %w", err)
	}
	log.Info().Str("user_id", event.UserID).Int("level", event.Level).Msg("level up email sent")
	return nil
}

func (uc *ProcessEventsUseCase) convertLead(ctx context.Context, leadID string) error {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			// lead sumiu; nada a converter
			log.Warn().Str("lead_id", leadID).Msg("purchase event for unknown lead")
			return nil
		}
		return err
	}

	if lead.Status == entity.LeadStatusConverted {
		return nil
	}

	if err := uc.Leads.UpdateStatus(ctx, lead.ID, entity.LeadStatusConverted); err != nil {
		return fmt.Errorf("convert lead: %w", err)
	}
	log.Info().Str("lead_id", lead.ID).Str("from", string(lead.Status)).Msg("lead converted")
	return nil
}
