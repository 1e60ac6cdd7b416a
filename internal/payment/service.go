package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"certpay/internal/audit"
	paymetrics "certpay/internal/payment/metrics"
	"certpay/internal/payment/store/reference"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/requestcontext"
)

// Service orchestrates payment validation: structural rules, security checks,
// and the reference commit. It is the only component allowed to write to the
// reference registry.
type Service struct {
	registry reference.Registry
	checker  *SecurityChecker
	auditor  *audit.Publisher
	metrics  *paymetrics.Metrics
	logger   *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *paymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

// NewService constructs the validation service.
func NewService(registry reference.Registry, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("reference registry is required")
	}
	s := &Service{
		registry: registry,
		checker:  NewSecurityChecker(registry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validate produces the verdict for one submission.
//
// The duplicate check reported in the verdict is a provisional read; the
// binding decision is TryCommit, which runs only when everything else passed.
// Losing the commit race downgrades the verdict so no two submissions ever
// both see valid=true for the same reference. A rejected submission leaves
// the registry untouched, so its reference stays available for a later,
// corrected submission.
//
// The only error path is an unreachable registry backend; business failures
// are boolean fields in the verdict, never errors.
func (s *Service) Validate(ctx context.Context, sub Submission) (*Verdict, error) {
	start := time.Now()

	rules := EvaluateRules(sub)

	lookupStart := time.Now()
	security, err := s.checker.Check(ctx, sub)
	s.metrics.ObserveRegistryLookup(time.Since(lookupStart))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "reference registry unavailable")
	}

	valid := rules.AllPassed() && security.AllPassed()

	if valid {
		committed, err := s.registry.TryCommit(ctx, sub.ReferenceNo)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "reference registry unavailable")
		}
		if !committed {
			// A concurrent submission claimed the reference between the
			// provisional read and the commit.
			valid = false
			security.DuplicateReference = false
			s.metrics.IncrementCommitConflict()
			s.log(ctx, slog.LevelWarn, "reference commit lost to concurrent submission", sub)
		}
	}

	verdict := &Verdict{
		Valid:           valid,
		RuleResults:     rules,
		SecurityResults: security,
		ValidatedAt:     requestcontext.Now(ctx),
	}

	s.observe(ctx, sub, verdict, time.Since(start))
	return verdict, nil
}

func (s *Service) observe(ctx context.Context, sub Submission, verdict *Verdict, elapsed time.Duration) {
	outcome := "failed"
	action := audit.ActionPaymentValidationFailed
	status := audit.StatusFailed
	details := fmt.Sprintf("validation checks failed for reference %s", sub.ReferenceNo)
	if verdict.Valid {
		outcome = "validated"
		action = audit.ActionPaymentValidated
		status = audit.StatusSuccess
		details = fmt.Sprintf("payment validated with reference %s", sub.ReferenceNo)
	}

	s.metrics.IncrementVerdict(outcome)
	s.metrics.ObserveValidateLatency(elapsed)

	if s.auditor != nil {
		err := s.auditor.Emit(ctx, audit.Entry{
			ApplicationID: sub.ApplicationID,
			Action:        action,
			Details:       details,
			Status:        status,
		})
		if err != nil {
			s.log(ctx, slog.LevelWarn, "audit emit failed", sub, "error", err)
		}
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, sub Submission, args ...any) {
	if s.logger == nil {
		return
	}
	base := []any{
		"request_id", requestcontext.RequestID(ctx),
		"application_id", sub.ApplicationID,
		"reference_no", sub.ReferenceNo,
	}
	s.logger.Log(ctx, level, msg, append(base, args...)...)
}
