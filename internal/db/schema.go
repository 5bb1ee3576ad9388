package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		secret_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id),
		token TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id),
		activity TEXT NOT NULL,
		unit TEXT NOT NULL,
		distance_m DOUBLE PRECISION NOT NULL,
		duration_s DOUBLE PRECISION NOT NULL,
		pace DOUBLE PRECISION,
		average_speed_mps DOUBLE PRECISION,
		total_steps INTEGER,
		elevation_gain_m DOUBLE PRECISION NOT NULL DEFAULT 0,
		elevation_loss_m DOUBLE PRECISION NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS run_splits (
		id BIGSERIAL PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		duration_s DOUBLE PRECISION NOT NULL,
		pace DOUBLE PRECISION NOT NULL,
		UNIQUE (run_id, idx)
	)`,
}

// EnsureSchema creates the tables the services depend on. Statements are
// idempotent so startup can always run it.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
