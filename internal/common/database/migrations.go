// internal/common/database/migrations.go

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(100) UNIQUE NOT NULL,
		interest_tags TEXT[] NOT NULL DEFAULT '{}',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		trust_score INTEGER NOT NULL DEFAULT 100 CHECK (trust_score BETWEEN 0 AND 100),
		visible BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		banned BOOLEAN NOT NULL DEFAULT FALSE,
		banned_at TIMESTAMPTZ,
		ban_reason TEXT,
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		reporter_id BIGINT NOT NULL REFERENCES users(id),
		reported_id BIGINT NOT NULL REFERENCES users(id),
		reason TEXT NOT NULL,
		context_note TEXT,
		severity SMALLINT NOT NULL CHECK (severity BETWEEN 1 AND 99),
		status VARCHAR(32) NOT NULL DEFAULT 'NEEDS_REVIEW'
			CHECK (status IN ('NEEDS_REVIEW', 'UNDER_REVIEW', 'RESOLVED_ACTION', 'RESOLVED_NO_ACTION')),
		resolution_note TEXT,
		last_moderator_id BIGINT REFERENCES users(id),
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (reporter_id <> reported_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_blocks (
		id BIGSERIAL PRIMARY KEY,
		blocker_id BIGINT NOT NULL REFERENCES users(id),
		blocked_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (blocker_id, blocked_id)
	)`,

	`CREATE TABLE IF NOT EXISTS moderation_actions (
		id BIGSERIAL PRIMARY KEY,
		action VARCHAR(32) NOT NULL,
		moderator_id BIGINT NOT NULL REFERENCES users(id),
		target_user_id BIGINT REFERENCES users(id),
		report_id BIGINT REFERENCES reports(id),
		detail JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_location ON users(latitude, longitude) WHERE visible AND NOT banned`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_reported_id ON reports(reported_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_user_blocks_blocked_id ON user_blocks(blocked_id)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_actions_target ON moderation_actions(target_user_id, created_at)`,
}

// RunMigrations creates the tables this service owns. Every statement is
// idempotent so it runs on each start.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for i, migration := range migrations {
		log.Debug().Int("step", i+1).Int("total", len(migrations)).Msg("Running migration")
		if _, err := db.ExecContext(ctx, migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Debug().Int("step", i+1).Msg("Migration skipped (already exists)")
		}
	}

	log.Info().Int("count", len(migrations)).Msg("Database migrations completed")
	return nil
}
