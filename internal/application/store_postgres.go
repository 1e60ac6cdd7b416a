package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"certpay/pkg/platform/sentinel"
)

// PostgresStore persists application records in PostgreSQL. The record body
// lives in a JSONB column; id and submission time are promoted to real
// columns for constraints and ordering.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *Application) error {
	record, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, submitted_at, record)
		VALUES ($1, $2, $3)
	`, app.ID, app.SubmittedAt, record)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Application, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM applications WHERE id = $1`, id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return unmarshalApplication(record)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM applications ORDER BY submitted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*Application, 0)
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		app, err := unmarshalApplication(record)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// Execute locks the row with SELECT ... FOR UPDATE so validate and mutate run
// against a stable snapshot and concurrent transitions serialize.
func (s *PostgresStore) Execute(ctx context.Context, id string, validate func(*Application) error, mutate func(*Application)) (_ *Application, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var record []byte
	err = tx.QueryRowContext(ctx,
		`SELECT record FROM applications WHERE id = $1 FOR UPDATE`, id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	app, err := unmarshalApplication(record)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err = validate(app); err != nil {
			return nil, err
		}
	}
	mutate(app)

	updated, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("marshal application: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE applications SET record = $2 WHERE id = $1`, id, updated); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return app, nil
}

func unmarshalApplication(record []byte) (*Application, error) {
	var app Application
	if err := json.Unmarshal(record, &app); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	return &app, nil
}
