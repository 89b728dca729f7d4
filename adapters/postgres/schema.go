package postgres

import (
	"context"

	"postlift/internal/errors"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the campaigns table when it is missing. The schema is
// small enough that a bootstrap statement beats a migration framework.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS campaigns (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date   TIMESTAMPTZ NOT NULL,
			budget     DOUBLE PRECISION NOT NULL DEFAULT 0,
			status     TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}
