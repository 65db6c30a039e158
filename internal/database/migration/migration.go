package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_reels",
		SQL: `CREATE TABLE IF NOT EXISTS reels (
  id          UUID        PRIMARY KEY,
  title       TEXT        NOT NULL CHECK (title <> ''),
  description TEXT        NOT NULL DEFAULT '',
  categories  JSONB       NOT NULL DEFAULT '[]'::jsonb,
  thumbnail   TEXT        NOT NULL,
  video       TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_stories",
		SQL: `CREATE TABLE IF NOT EXISTS stories (
  id          UUID        PRIMARY KEY,
  title       TEXT        NOT NULL CHECK (title <> ''),
  description TEXT        NOT NULL DEFAULT '',
  categories  JSONB       NOT NULL DEFAULT '[]'::jsonb,
  thumbnail   TEXT,
  video       TEXT,
  icon        TEXT,
  story       JSONB,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_reels_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reels_created_at ON reels (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_reels_categories",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reels_categories ON reels USING GIN (categories);`,
	},
	{
		Name: "create_index_stories_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stories_created_at ON stories (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_stories_categories",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stories_categories ON stories USING GIN (categories);`,
	},
}

// EnsureMigrated creates the catalog tables when the reels sentinel table is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"))

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.reels') IS NOT NULL").Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success", zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
