package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrations are applied in order, each in its own statement. They are
// idempotent so `migrate` can run on every deploy.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		name       TEXT,
		level      INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
		xp         INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id           UUID PRIMARY KEY,
		email        TEXT UNIQUE,
		name         TEXT,
		score        INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
		status       TEXT NOT NULL DEFAULT 'NEW'
		             CHECK (status IN ('NEW','CONTACTED','QUALIFIED','CONVERTED','LOST','ARCHIVED')),
		source       TEXT,
		campaign     TEXT,
		utm_source   TEXT,
		utm_medium   TEXT,
		utm_campaign TEXT,
		utm_term     TEXT,
		utm_content  TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status_created ON leads (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS lead_activities (
		id         UUID PRIMARY KEY,
		lead_id    UUID NOT NULL REFERENCES leads (id) ON DELETE CASCADE,
		type       TEXT NOT NULL,
		action     TEXT NOT NULL,
		details    JSONB,
		ip_address TEXT,
		user_agent TEXT,
		referrer   TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_activities_lead_created ON lead_activities (lead_id, created_at DESC)`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range Migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
