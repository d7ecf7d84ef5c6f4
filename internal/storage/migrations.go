package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS vehicles (
		id              UUID PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		canonical_plate TEXT NOT NULL,
		owner_name      TEXT NOT NULL,
		vehicle_type    TEXT,
		status          TEXT NOT NULL DEFAULT 'Pending'
			CHECK (status IN ('Pending', 'Approved', 'Rejected')),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicles_canonical_plate ON vehicles(canonical_plate);`,
	`CREATE TABLE IF NOT EXISTS cameras (
		id               UUID PRIMARY KEY,
		name             TEXT NOT NULL,
		url              TEXT NOT NULL,
		source_type      TEXT NOT NULL DEFAULT 'rtsp',
		sample_period_ms INT NOT NULL DEFAULT 1000,
		status           TEXT NOT NULL DEFAULT 'stopped',
		error_message    TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS access_logs (
		id           UUID PRIMARY KEY,
		camera_id    UUID,
		user_label   TEXT NOT NULL,
		plate        TEXT NOT NULL,
		outcome      TEXT NOT NULL,
		snapshot_key TEXT NOT NULL DEFAULT '',
		time         TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_access_logs_time ON access_logs(time);`,
	`CREATE INDEX IF NOT EXISTS idx_access_logs_plate ON access_logs(plate);`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id           UUID PRIMARY KEY,
		camera_id    UUID,
		plate        TEXT NOT NULL,
		message      TEXT NOT NULL,
		severity     TEXT NOT NULL
			CHECK (severity IN ('Critical', 'Warning', 'Info')),
		snapshot_key TEXT NOT NULL DEFAULT '',
		time         TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_time ON alerts(time);`,
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
