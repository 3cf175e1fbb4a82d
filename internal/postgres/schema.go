package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is idempotent. The exclusion constraint backs up the unit lock: two
// active stays on one unit can never overlap on [check_in, check_out).
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS units (
		id           TEXT PRIMARY KEY,
		nightly_rate NUMERIC(12,2) NOT NULL CHECK (nightly_rate >= 0),
		capacity     INT NOT NULL CHECK (capacity > 0),
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id                  TEXT PRIMARY KEY,
		unit_id             TEXT NOT NULL REFERENCES units(id),
		guest_id            TEXT NOT NULL,
		check_in            DATE NOT NULL,
		check_out           DATE NOT NULL,
		guest_count         INT NOT NULL CHECK (guest_count > 0),
		total_price         NUMERIC(12,2) NOT NULL,
		status              TEXT NOT NULL CHECK (status IN ('PENDING','CONFIRMED','CANCELLED','COMPLETED')),
		created_at          TIMESTAMPTZ NOT NULL,
		confirmed_at        TIMESTAMPTZ,
		payment_ref         TEXT NOT NULL DEFAULT '',
		completed_at        TIMESTAMPTZ,
		cancelled_at        TIMESTAMPTZ,
		cancellation_reason TEXT,
		version             BIGINT NOT NULL DEFAULT 1,
		CHECK (check_out > check_in),
		CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
			unit_id WITH =,
			daterange(check_in, check_out, '[)') WITH &&
		) WHERE (status IN ('PENDING','CONFIRMED'))
	)`,
	`CREATE INDEX IF NOT EXISTS reservations_guest_idx ON reservations (guest_id)`,
	`CREATE INDEX IF NOT EXISTS reservations_expired_idx ON reservations (check_out) WHERE status = 'CONFIRMED'`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id             TEXT PRIMARY KEY,
		reservation_id TEXT NOT NULL UNIQUE REFERENCES reservations(id),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
