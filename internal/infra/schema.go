package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureShiftsTable makes the backend self-bootstrapping:
// - if table `shifts` doesn't exist -> creates it
// - if table exists but misses some columns -> adds them (non-destructive)
// The cmd/migrate binary covers managed environments; this covers everything
// else.
func EnsureShiftsTable(ctx context.Context, pg *pgxpool.Pool) error {
	// Create table with the latest known schema (idempotent).
	// Note: ALTER TABLE below is still needed for older existing DBs.
	_, err := pg.Exec(ctx, `
CREATE TABLE IF NOT EXISTS shifts (
  id VARCHAR PRIMARY KEY,
  body JSONB NOT NULL,
  driver_id VARCHAR NULL,
  driver_name VARCHAR NULL,
  driver_email VARCHAR NULL,
  driver_phone VARCHAR NULL,
  vehicle_id VARCHAR NULL,
  vehicle_plate VARCHAR NULL,
  project_name VARCHAR NULL,
  is_closed BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	if err != nil {
		return err
	}

	// Non-destructive upgrades for older schemas.
	// (No DROP COLUMN here on purpose.)
	_, err = pg.Exec(ctx, `
ALTER TABLE shifts
  ADD COLUMN IF NOT EXISTS driver_phone VARCHAR NULL,
  ADD COLUMN IF NOT EXISTS project_name VARCHAR NULL;
`)
	if err != nil {
		return err
	}

	// Indexes (idempotent). The partial index backs "open shift for driver X".
	if _, err = pg.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_shifts_driver_open ON shifts (driver_id) WHERE is_closed = false;`); err != nil {
		return err
	}
	_, err = pg.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_shifts_updated_at ON shifts (updated_at DESC);`)
	return err
}
