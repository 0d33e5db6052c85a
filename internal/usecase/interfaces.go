package usecase

import (
	"context"

	"github.com/xavierca1/taskflow/internal/entity"
)

// Repositories groups the stores a use case touches. Inside UnitOfWork.Do
// they are bound to the running transaction.
type Repositories struct {
	Leads      entity.LeadRepositoryInterface
	Activities entity.LeadActivityRepositoryInterface
	Users      entity.UserRepositoryInterface
}

type UnitOfWork interface {
	// Do runs fn in a single transaction; any error from fn rolls it back.
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type EventPublisher interface {
	PublishActivityRecorded(ctx context.Context, event entity.ActivityRecordedEvent) error
	PublishLevelUp(ctx context.Context, event entity.LevelUpEvent) error
}

type EmailService interface {
	SendLeadWelcome(to, name string) error
	SendLevelUp(to, name string, level int) error
}
