package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"certpay/internal/audit"
	appmetrics "certpay/internal/application/metrics"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/platform/sentinel"
	"certpay/pkg/requestcontext"
)

// SubmitInput carries the applicant details for a new application.
type SubmitInput struct {
	Name            string
	NRIC            string
	Passport        string
	DOB             string
	Nationality     string
	Email           string
	Organisation    string
	Address         string
	CertificateType string
	PaymentMode     string
	Attachments     []string
}

// Service orchestrates the application lifecycle.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *appmetrics.Metrics
	logger  *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// NewService constructs the application service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("application store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit creates a new application, assigns a processing machine from the
// pool matching the certificate type, and records the submission in the
// audit trail.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Application, error) {
	now := requestcontext.Now(ctx)

	machine, err := assignMachine(in.CertificateType, now)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	app := &Application{
		ID:              newApplicationID(now),
		Name:            strings.TrimSpace(in.Name),
		NRIC:            in.NRIC,
		Passport:        in.Passport,
		DOB:             in.DOB,
		Nationality:     in.Nationality,
		Email:           in.Email,
		Organisation:    in.Organisation,
		Address:         in.Address,
		CertificateType: in.CertificateType,
		PaymentMode:     in.PaymentMode,
		Attachments:     append([]string{}, in.Attachments...),
		AssignedMachine: machine,
		Status:          StatusPending,
		SubmittedAt:     now,
	}

	if err := s.store.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	s.metrics.IncrementSubmitted()
	s.emit(ctx, app.ID, audit.ActionApplicationSubmitted,
		fmt.Sprintf("application submitted for %s", app.Name), audit.StatusSuccess)
	s.emit(ctx, app.ID, audit.ActionMachineAssigned,
		fmt.Sprintf("machine %s assigned", machine.ID), audit.StatusSuccess)

	return app, nil
}

// Get retrieves an application by ID.
func (s *Service) Get(ctx context.Context, id string) (*Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application id is required")
	}
	app, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return app, nil
}

// List returns all applications in submission order.
func (s *Service) List(ctx context.Context) ([]*Application, error) {
	apps, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// RecordValidatedPayment attaches an accepted payment to the application and
// moves it to PAYMENT_VALIDATED. Only called for submissions whose verdict
// was valid; the reference registry has already spent the reference.
func (s *Service) RecordValidatedPayment(ctx context.Context, id string, rec PaymentRecord) (*Application, error) {
	app, err := s.store.Execute(ctx, id, nil, func(a *Application) {
		a.PaymentValidated = true
		a.PaymentReference = rec.ReferenceNo
		a.Payment = &rec
		a.Status = StatusPaymentValidated
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	s.metrics.IncrementTransition(string(StatusPaymentValidated))
	return app, nil
}

// MarkCertificateIssued records the issued certificate on the application.
func (s *Service) MarkCertificateIssued(ctx context.Context, id, certificateID string) (*Application, error) {
	app, err := s.store.Execute(ctx, id,
		func(a *Application) error {
			if !a.PaymentValidated {
				return dErrors.New(dErrors.CodeConflict, "payment not validated")
			}
			if a.CertificateIssued {
				return dErrors.New(dErrors.CodeConflict, "certificate already issued")
			}
			return nil
		},
		func(a *Application) {
			a.CertificateID = certificateID
			a.CertificateIssued = true
			a.Status = StatusCertificateIssued
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	s.metrics.IncrementTransition(string(StatusCertificateIssued))
	return app, nil
}

// MarkRevoked moves the application to CERTIFICATE_REVOKED.
func (s *Service) MarkRevoked(ctx context.Context, id string) (*Application, error) {
	app, err := s.store.Execute(ctx, id, nil, func(a *Application) {
		a.Status = StatusCertificateRevoked
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	s.metrics.IncrementTransition(string(StatusCertificateRevoked))
	return app, nil
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
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.As(err, &de):
		// Validation callbacks already produced a coded error.
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
	}
}

// newApplicationID keeps the APPyyyymmddNNNN format the rest of the system
// expects in audit trails and lookups.
func newApplicationID(now time.Time) string {
	return fmt.Sprintf("APP%s%04d", now.Format("20060102"), 1000+rand.IntN(9000))
}
