package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRegistry persists committed references in PostgreSQL. Uniqueness is
// enforced by the primary key on payment_references; TryCommit rides on
// INSERT ... ON CONFLICT DO NOTHING so the test-and-insert happens inside the
// database, not in application code.
type PostgresRegistry struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference registry.
func NewPostgres(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) Contains(ctx context.Context, reference string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM payment_references WHERE reference_no = $1`, reference).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check reference: %w", err)
	}
	return true, nil
}

func (r *PostgresRegistry) TryCommit(ctx context.Context, reference string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_references (reference_no)
		VALUES ($1)
		ON CONFLICT (reference_no) DO NOTHING
	`, reference)
	if err != nil {
		return false, fmt.Errorf("commit reference: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("commit reference rows: %w", err)
	}
	return rows == 1, nil
}
