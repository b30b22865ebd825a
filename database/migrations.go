package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "impact_schema",
		sql: `
CREATE TABLE IF NOT EXISTS impact_events (
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  source TEXT NOT NULL CHECK (source IN ('recipe', 'fridge_share', 'manual')),
  source_id TEXT,
  ingredients JSONB NOT NULL DEFAULT '[]'::jsonb,
  total_waste_kg DOUBLE PRECISION NOT NULL CHECK (total_waste_kg >= 0),
  total_cost_usd DOUBLE PRECISION NOT NULL CHECK (total_cost_usd >= 0),
  total_co2_kg DOUBLE PRECISION NOT NULL CHECK (total_co2_kg >= 0),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'reversed', 'deleted')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_impact_events_user_created ON impact_events(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_impact_events_user_status ON impact_events(user_id, status);

CREATE TABLE IF NOT EXISTS user_impact_stats (
  user_id TEXT PRIMARY KEY,
  current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
  longest_streak INTEGER NOT NULL DEFAULT 0 CHECK (longest_streak >= current_streak),
  last_active_date DATE,
  weekly_goal_kg DOUBLE PRECISION NOT NULL CHECK (weekly_goal_kg > 0),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_badges (
  user_id TEXT NOT NULL,
  badge_type TEXT NOT NULL,
  tier TEXT NOT NULL CHECK (tier IN ('bronze', 'silver', 'gold')),
  earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  event_id UUID REFERENCES impact_events(id),
  PRIMARY KEY (user_id, badge_type, tier)
);
`,
	},
	{
		version: 2,
		name:    "fridge_listings",
		sql: `
CREATE TABLE IF NOT EXISTS fridge_listings (
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  user_display_name TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  items TEXT[] NOT NULL DEFAULT '{}',
  quantity TEXT,
  expiry_hint TEXT,
  pickup_instructions TEXT,
  image_url TEXT,
  status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'claimed', 'deleted')),
  claimed_by TEXT,
  claimed_by_name TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_fridge_listings_status_created ON fridge_listings(status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_fridge_listings_user ON fridge_listings(user_id);
`,
	},
	{
		version: 3,
		name:    "recipes",
		sql: `
CREATE TABLE IF NOT EXISTS recipes (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  ingredients TEXT[] NOT NULL DEFAULT '{}',
  steps TEXT[] NOT NULL DEFAULT '{}',
  time_minutes INTEGER CHECK (time_minutes IS NULL OR time_minutes >= 0),
  image_url TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS favorite_recipes (
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  ingredients TEXT[] NOT NULL DEFAULT '{}',
  steps TEXT[] NOT NULL DEFAULT '{}',
  time_minutes INTEGER,
  image_url TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (user_id, name)
);
`,
	},
}

// Migrate applies every migration not yet recorded in schema_migrations.
// Each migration runs in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.Pool.QueryRow(ctx, `SELECT 1 FROM schema_migrations WHERE version = $1`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		err = db.WithTx(ctx, func(q Querier) error {
			if _, err := q.Exec(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
			}
			if _, err := q.Exec(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, m.version, m.name); err != nil {
				return fmt.Errorf("record migration version %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		zap.L().Info("Applied migration", zap.Int("version", m.version), zap.String("name", m.name))
	}

	return nil
}
