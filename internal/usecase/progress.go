package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/progression"
)

type GetProgressUseCase struct {
	Users entity.UserRepositoryInterface
	Table *progression.Table
}

func NewGetProgressUseCase(users entity.UserRepositoryInterface, table *progression.Table) *GetProgressUseCase {
	return &GetProgressUseCase{Users: users, Table: table}
}

func (uc *GetProgressUseCase) Execute(ctx context.Context, userID string) (*progression.Progress, error) {
	if !validID(userID) {
		return nil, userLookupError(entity.ErrUserNotFound)
	}

	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	p, err := uc.Table.ProgressFor(user.XP)
	if err != nil {
		return nil, &TechnicalError{Code: CodeCorruptData, Message: "stored xp is invalid", Err: err}
	}

	if p.Level != user.Level {
		// nível gravado divergiu da tabela (tabela mudou ou escrita antiga); corrige na leitura
		log.Warn().
			Str("user_id", user.ID).
			Int("stored_level", user.Level).
			Int("level", p.Level).
			Int("xp", user.XP).
			Msg("stored level out of sync with level table")
		// xp nunca é reescrito aqui; um award concorrente já gravou o level certo
		repaired, err := uc.Users.RepairLevel(ctx, user.ID, user.XP, p.Level)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to repair stored level")
		} else if !repaired {
			log.Debug().Str("user_id", user.ID).Msg("level repair skipped, xp changed concurrently")
		}
	}

	return &p, nil
}

type AwardXPUseCase struct {
	UoW    UnitOfWork
	Table  *progression.Table
	Events EventPublisher
}

func NewAwardXPUseCase(uow UnitOfWork, table *progression.Table, events EventPublisher) *AwardXPUseCase {
	return &AwardXPUseCase{UoW: uow, Table: table, Events: events}
}

func (uc *AwardXPUseCase) Execute(ctx context.Context, input AwardXPInput) (*AwardXPOutput, error) {
	if errs := ValidateAwardXPInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	if !validID(input.UserID) {
		return nil, userLookupError(entity.ErrUserNotFound)
	}

	var (
		out  AwardXPOutput
		user *entity.User
	)

	err := uc.UoW.Do(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		user, err = repos.Users.FindByIDForUpdate(ctx, input.UserID)
		if err != nil {
			return err
		}

		xp := user.XP + input.Amount
		p, err := uc.Table.ProgressFor(xp)
		if err != nil {
			return err
		}

		if err := repos.Users.UpdateProgress(ctx, user.ID, xp, p.Level); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		out = AwardXPOutput{
			Progress:      p,
			PreviousLevel: user.Level,
			LeveledUp:     p.Level > user.Level,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, userLookupError(err)
		}
		if errors.Is(err, progression.ErrNegativeXP) {
			return nil, &TechnicalError{Code: CodeCorruptData, Message: "stored xp is invalid", Err: err}
		}
		return nil, databaseError("failed to award xp", err)
	}

	log.Info().
		Str("user_id", user.ID).
		Int("amount", input.Amount).
		Str("reason", input.Reason).
		Int("xp", out.XP).
		Int("level", out.Level).
		Msg("xp awarded")

	if out.LeveledUp && uc.Events != nil {
		event := entity.LevelUpEvent{
			UserID:        user.ID,
			Email:         user.Email,
			Name:          user.Name,
			PreviousLevel: out.PreviousLevel,
			Level:         out.Level,
			XP:            out.XP,
		}
		if err := uc.Events.PublishLevelUp(ctx, event); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("level up committed but event publish failed")
		}
	}

	return &out, nil
}

type ResetProgressUseCase struct {
	UoW   UnitOfWork
	Table *progression.Table
}

func NewResetProgressUseCase(uow UnitOfWork, table *progression.Table) *ResetProgressUseCase {
	return &ResetProgressUseCase{UoW: uow, Table: table}
}

func (uc *ResetProgressUseCase) Execute(ctx context.Context, userID string) (*progression.Progress, error) {
	if !validID(userID) {
		return nil, userLookupError(entity.ErrUserNotFound)
	}

	err := uc.UoW.Do(ctx, func(ctx context.Context, repos Repositories) error {
		if _, err := repos.Users.FindByIDForUpdate(ctx, userID); err != nil {
			return err
		}
		return repos.Users.UpdateProgress(ctx, userID, 0, uc.Table.MinLevel())
	})
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, userLookupError(err)
		}
		return nil, databaseError("failed to reset progress", err)
	}

	log.Info().Str("user_id", userID).Msg("progress reset")

	p, err := uc.Table.ProgressFor(0)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func userLookupError(err error) error {
	if errors.Is(err, entity.ErrUserNotFound) {
		return &DomainError{Code: CodeUserNotFound, Message: "user not found"}
	}
	return databaseError("failed to load user", err)
}
