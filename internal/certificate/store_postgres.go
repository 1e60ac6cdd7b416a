package certificate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"certpay/pkg/platform/sentinel"
)

// PostgresStore persists certificates in PostgreSQL. The unique index on
// application_id is what enforces one-certificate-per-application under
// concurrent issuance.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const certificateColumns = `id, application_id, holder_name, certificate_type,
	serial_number, machine_used, status, issued_at, expires_at, revoked_at`

func (s *PostgresStore) Create(ctx context.Context, cert *Certificate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates
			(id, application_id, holder_name, certificate_type, serial_number,
			 machine_used, status, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, cert.ID, cert.ApplicationID, cert.HolderName, cert.Type, cert.SerialNumber,
		cert.MachineUsed, cert.Status, cert.IssuedAt, cert.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Certificate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1`, id)
	return scanCertificate(row)
}

func (s *PostgresStore) FindByApplication(ctx context.Context, applicationID string) (*Certificate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE application_id = $1`, applicationID)
	return scanCertificate(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Certificate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates ORDER BY issued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]*Certificate, 0)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, nil
}

// Execute locks the row with SELECT ... FOR UPDATE so revocation serializes
// with any concurrent status change.
func (s *PostgresStore) Execute(ctx context.Context, id string, validate func(*Certificate) error, mutate func(*Certificate)) (_ *Certificate, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = $1 FOR UPDATE`, id)
	cert, err := scanCertificate(row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err = validate(cert); err != nil {
			return nil, err
		}
	}
	mutate(cert)

	var revokedAt sql.NullTime
	if cert.RevokedAt != nil {
		revokedAt = sql.NullTime{Time: *cert.RevokedAt, Valid: true}
	}
	if _, err = tx.ExecContext(ctx, `
		UPDATE certificates SET status = $2, revoked_at = $3 WHERE id = $1
	`, cert.ID, cert.Status, revokedAt); err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cert, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*Certificate, error) {
	var cert Certificate
	var revokedAt sql.NullTime
	err := row.Scan(&cert.ID, &cert.ApplicationID, &cert.HolderName, &cert.Type,
		&cert.SerialNumber, &cert.MachineUsed, &cert.Status, &cert.IssuedAt,
		&cert.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan certificate: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time.UTC()
		cert.RevokedAt = &t
	}
	return &cert, nil
}
