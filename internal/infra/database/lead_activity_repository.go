package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/taskflow/internal/entity"
)

type activityRow struct {
	ID        string         `db:"id"`
	LeadID    string         `db:"lead_id"`
	Type      string         `db:"type"`
	Action    string         `db:"action"`
	Details   []byte         `db:"details"`
	IPAddress sql.NullString `db:"ip_address"`
	UserAgent sql.NullString `db:"user_agent"`
	Referrer  sql.NullString `db:"referrer"`
	CreatedAt time.Time      `db:"created_at"`
}

type LeadActivityRepository struct {
	DB      sqlx.ExtContext
	Timeout time.Duration
}

func NewLeadActivityRepository(db sqlx.ExtContext, timeout time.Duration) *LeadActivityRepository {
	return &LeadActivityRepository{DB: db, Timeout: timeout}
}

func (r *LeadActivityRepository) Create(ctx context.Context, a *entity.LeadActivity) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO lead_activities (
			id, lead_id, type, action, details, ip_address, user_agent, referrer, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.LeadID,
		string(a.Type),
		a.Action,
		// lib/pq manda []byte como bytea; jsonb precisa ir como texto
		nullString(string(a.Details)),
		nullString(a.IPAddress),
		nullString(a.UserAgent),
		nullString(a.Referrer),
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead activity: %w", err)
	}
	return nil
}

func (r *LeadActivityRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]*entity.LeadActivity, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var rows []activityRow
	err := sqlx.SelectContext(ctx, r.DB, &rows, `
		SELECT id, lead_id, type, action, details, ip_address, user_agent, referrer, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list lead activities: %w", err)
	}

	activities := make([]*entity.LeadActivity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, &entity.LeadActivity{
			ID:        row.ID,
			LeadID:    row.LeadID,
			Type:      entity.ActivityType(row.Type),
			Action:    row.Action,
			Details:   row.Details,
			IPAddress: row.IPAddress.String,
			UserAgent: row.UserAgent.String,
			Referrer:  row.Referrer.String,
			CreatedAt: row.CreatedAt,
		})
	}
	return activities, nil
}
