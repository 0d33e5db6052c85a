package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/taskflow/internal/usecase"
)

// UnitOfWork implements usecase.UnitOfWork on top of a Postgres transaction.
type UnitOfWork struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewUnitOfWork(db *sqlx.DB, queryTimeout time.Duration) *UnitOfWork {
	return &UnitOfWork{db: db, timeout: queryTimeout}
}

// Repositories returns stores bound to the pool, outside any transaction.
func (u *UnitOfWork) Repositories() usecase.Repositories {
	return u.bind(u.db)
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos usecase.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// depois do Commit o Rollback vira no-op
	defer tx.Rollback()

	if err := fn(ctx, u.bind(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (u *UnitOfWork) bind(db sqlx.ExtContext) usecase.Repositories {
	return usecase.Repositories{
		Leads:      NewLeadRepository(db, u.timeout),
		Activities: NewLeadActivityRepository(db, u.timeout),
		Users:      NewUserRepository(db, u.timeout),
	}
}
