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

const leadColumns = `id, email, name, score, status, source, campaign,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content, created_at, updated_at`

type leadRow struct {
	ID          string         `db:"id"`
	Email       sql.NullString `db:"email"`
	Name        sql.NullString `db:"name"`
	Score       int            `db:"score"`
	Status      string         `db:"status"`
	Source      sql.NullString `db:"source"`
	Campaign    sql.NullString `db:"campaign"`
	UTMSource   sql.NullString `db:"utm_source"`
	UTMMedium   sql.NullString `db:"utm_medium"`
	UTMCampaign sql.NullString `db:"utm_campaign"`
	UTMTerm     sql.NullString `db:"utm_term"`
	UTMContent  sql.NullString `db:"utm_content"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r leadRow) toEntity() *entity.Lead {
	return &entity.Lead{
		ID:     r.ID,
		Email:  r.Email.String,
		Name:   r.Name.String,
		Score:  r.Score,
		Status: entity.LeadStatus(r.Status),
		Attribution: entity.Attribution{
			Source:      r.Source.String,
			Campaign:    r.Campaign.String,
			UTMSource:   r.UTMSource.String,
			UTMMedium:   r.UTMMedium.String,
			UTMCampaign: r.UTMCampaign.String,
			UTMTerm:     r.UTMTerm.String,
			UTMContent:  r.UTMContent.String,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type LeadRepository struct {
	DB      sqlx.ExtContext
	Timeout time.Duration
}

func NewLeadRepository(db sqlx.ExtContext, timeout time.Duration) *LeadRepository {
	return &LeadRepository{DB: db, Timeout: timeout}
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var row leadRow
	err := sqlx.GetContext(ctx, r.DB, &row, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead by id: %w", err)
	}
	return row.toEntity(), nil
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var row leadRow
	err := sqlx.GetContext(ctx, r.DB, &row, `SELECT `+leadColumns+` FROM leads WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead by email: %w", err)
	}
	return row.toEntity(), nil
}

const insertLead = `
	INSERT INTO leads (
		id, email, name, score, status,
		source, campaign, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (r *LeadRepository) insertArgs(lead *entity.Lead) []interface{} {
	a := lead.Attribution
	return []interface{}{
		lead.ID,
		nullString(lead.Email),
		nullString(lead.Name),
		lead.Score,
		string(lead.Status),
		nullString(a.Source),
		nullString(a.Campaign),
		nullString(a.UTMSource),
		nullString(a.UTMMedium),
		nullString(a.UTMCampaign),
		nullString(a.UTMTerm),
		nullString(a.UTMContent),
		lead.CreatedAt,
		lead.UpdatedAt,
	}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctx, insertLead, r.insertArgs(lead)...); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// FindOrCreateByEmail usa ON CONFLICT para que dois requests simultâneos com o
// mesmo email acabem no mesmo lead. A atribuição do lead existente não é tocada.
func (r *LeadRepository) FindOrCreateByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	insertCtx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var id string
	err := r.DB.QueryRowxContext(insertCtx, insertLead+` ON CONFLICT (email) DO NOTHING RETURNING id`, r.insertArgs(lead)...).Scan(&id)
	switch {
	case err == nil:
		return lead, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.FindByEmail(ctx, lead.Email)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("upsert lead: %w", err)
	}
}

// IncrementScore é um único UPDATE score = score + n, sem lock na aplicação.
func (r *LeadRepository) IncrementScore(ctx context.Context, id string, delta int) (int, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var score int
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE leads SET score = score + $1, updated_at = NOW() WHERE id = $2 RETURNING score`,
		delta, id,
	).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, entity.ErrLeadNotFound
		}
		return 0, fmt.Errorf("increment lead score: %w", err)
	}
	return score, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	var rows []leadRow
	err := sqlx.SelectContext(ctx, r.DB, &rows,
		`SELECT `+leadColumns+` FROM leads
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		string(filter.Status), filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	leads := make([]*entity.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toEntity())
	}
	return leads, nil
}

// ArchiveStale arquiva leads NEW cuja última atividade (ou criação) é anterior a inactiveSince.
func (r *LeadRepository) ArchiveStale(ctx context.Context, inactiveSince time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads l
		SET status = 'ARCHIVED', updated_at = NOW()
		WHERE l.status = 'NEW'
		  AND COALESCE(
		      (SELECT MAX(a.created_at) FROM lead_activities a WHERE a.lead_id = l.id),
		      l.created_at
		  ) < $1`,
		inactiveSince,
	)
	if err != nil {
		return 0, fmt.Errorf("archive stale leads: %w", err)
	}
	return res.RowsAffected()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
