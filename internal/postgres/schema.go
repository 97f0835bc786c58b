package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS character_ledger (
		id          TEXT PRIMARY KEY,
		player_id   TEXT NOT NULL DEFAULT '',
		campaign_id TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		max_hp      INTEGER NOT NULL,
		current_hp  INTEGER NOT NULL,
		gold        INTEGER NOT NULL DEFAULT 0,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS narrative_log (
		id          BIGSERIAL PRIMARY KEY,
		campaign_id TEXT NOT NULL,
		kind        TEXT NOT NULL,
		title       TEXT NOT NULL,
		body        TEXT NOT NULL DEFAULT '',
		summary     JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS narrative_log_campaign_idx ON narrative_log (campaign_id, id)`,
}

// EnsureSchema creates the tables if they do not exist
func EnsureSchema(ctx context.Context, db DBTX) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}
