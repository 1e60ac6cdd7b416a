package certificate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"certpay/internal/application"
	"certpay/internal/audit"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/platform/sentinel"
	"certpay/pkg/requestcontext"
)

// Applications is the slice of the application service the certificate
// module depends on.
type Applications interface {
	Get(ctx context.Context, id string) (*application.Application, error)
	MarkCertificateIssued(ctx context.Context, id, certificateID string) (*application.Application, error)
	MarkRevoked(ctx context.Context, id string) (*application.Application, error)
}

// Service orchestrates certificate issuance and revocation.
type Service struct {
	store   Store
	apps    Applications
	auditor *audit.Publisher
	logger  *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// NewService constructs the certificate service.
func NewService(store Store, apps Applications, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("certificate store is required")
	}
	if apps == nil {
		return nil, fmt.Errorf("application service is required")
	}
	s := &Service{store: store, apps: apps}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a certificate for a payment-validated application. The
// store's per-application uniqueness backstops the application-level guards
// when two issuance requests race.
func (s *Service) Issue(ctx context.Context, applicationID string) (*Certificate, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.PaymentValidated {
		return nil, dErrors.New(dErrors.CodeConflict, "payment not validated")
	}
	if app.CertificateIssued {
		return nil, dErrors.New(dErrors.CodeConflict, "certificate already issued")
	}

	now := requestcontext.Now(ctx)
	cert := &Certificate{
		ID:            newCertificateID(now),
		ApplicationID: app.ID,
		HolderName:    app.Name,
		Type:          app.CertificateType,
		SerialNumber:  newSerialNumber(),
		MachineUsed:   app.AssignedMachine.ID,
		Status:        StatusActive,
		IssuedAt:      now,
		ExpiresAt:     now.Add(validityPeriod),
	}

	if err := s.store.Create(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "certificate already issued")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create certificate")
	}

	if _, err := s.apps.MarkCertificateIssued(ctx, app.ID, cert.ID); err != nil {
		return nil, err
	}

	s.emit(ctx, app.ID, audit.ActionCertificateIssued,
		fmt.Sprintf("certificate %s issued successfully", cert.ID), audit.StatusSuccess)
	return cert, nil
}

// Get retrieves a certificate by ID.
func (s *Service) Get(ctx context.Context, id string) (*Certificate, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "certificate id is required")
	}
	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return cert, nil
}

// FindByApplication retrieves the certificate issued for an application.
func (s *Service) FindByApplication(ctx context.Context, applicationID string) (*Certificate, error) {
	cert, err := s.store.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return cert, nil
}

// List returns all certificates in issuance order.
func (s *Service) List(ctx context.Context) ([]*Certificate, error) {
	certs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return certs, nil
}

// Revoke flips an active certificate to REVOKED and marks the application.
// Revoking an already-revoked certificate is a conflict, not a no-op, so
// operators notice double-fire in their tooling.
func (s *Service) Revoke(ctx context.Context, id string) (*Certificate, error) {
	now := requestcontext.Now(ctx)
	cert, err := s.store.Execute(ctx, id,
		func(c *Certificate) error {
			if c.Status == StatusRevoked {
				return dErrors.New(dErrors.CodeConflict, "certificate already revoked")
			}
			return nil
		},
		func(c *Certificate) {
			c.Status = StatusRevoked
			c.RevokedAt = &now
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if _, err := s.apps.MarkRevoked(ctx, cert.ApplicationID); err != nil {
		return nil, err
	}
	s.emit(ctx, cert.ApplicationID, audit.ActionCertificateRevoked,
		fmt.Sprintf("certificate %s revoked", cert.ID), audit.StatusSuccess)
	return cert, nil
}

func (s *Service) emit(ctx context.Context, applicationID, action, details, status string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Entry{
		ApplicationID: applicationID,
		Action:        action,
		Details:       details,
		Status:        status,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"application_id", applicationID, "action", action, "error", err)
	}
}

func wrapStoreErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "certificate not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "certificate store failure")
	}
}

func newCertificateID(now time.Time) string {
	return fmt.Sprintf("CERT%s%05d", now.Format("20060102"), 10000+rand.IntN(90000))
}

func newSerialNumber() string {
	return fmt.Sprintf("SN%07d", 1000000+rand.IntN(9000000))
}
