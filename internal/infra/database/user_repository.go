package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/taskflow/internal/entity"
)

const selectUser = `SELECT id, email, name, level, xp, created_at, updated_at FROM users WHERE id = $1`

type userRow struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	Name      sql.NullString `db:"name"`
	Level     int            `db:"level"`
	XP        int            `db:"xp"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type UserRepository struct {
	DB      sqlx.ExtContext
	Timeout time.Duration
}

func NewUserRepository(db sqlx.ExtContext, timeout time.Duration) *UserRepository {
	return &UserRepository{DB: db, Timeout: timeout}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.find(ctx, selectUser, id)
}

// FindByIDForUpdate só faz sentido dentro de uma transação (UnitOfWork.Do).
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.find(ctx, selectUser+` FOR UPDATE`, id)
}

func (r *UserRepository) find(ctx context.Context, query, id string) (*entity.User, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var row userRow
	if err := sqlx.GetContext(ctx, r.DB, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &entity.User{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name.String,
		Level:     row.Level,
		XP:        row.XP,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *UserRepository) UpdateProgress(ctx context.Context, id string, xp, level int) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET xp = $1, level = $2, updated_at = NOW() WHERE id = $3`,
		xp, level, id,
	)
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	if n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) RepairLevel(ctx context.Context, id string, readXP, level int) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET level = $1, updated_at = NOW() WHERE id = $2 AND xp = $3`,
		level, id, readXP,
	)
	if err != nil {
		return false, fmt.Errorf("repair user level: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repair user level: %w", err)
	}
	return n > 0, nil
}
