package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists the audit trail in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (application_id, action, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ApplicationID, entry.Action, entry.Details, entry.Status, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, `
		SELECT application_id, action, details, status, created_at
		FROM audit_log ORDER BY created_at, id`)
}

func (s *PostgresStore) ListByApplication(ctx context.Context, applicationID string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT application_id, action, details, status, created_at
		FROM audit_log WHERE application_id = $1 ORDER BY created_at, id`, applicationID)
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ApplicationID, &e.Action, &e.Details, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
