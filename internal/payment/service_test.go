package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certpay/internal/audit"
	"certpay/internal/payment/store/reference"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/requestcontext"
)

// racingRegistry reports the reference as free on read but refuses the
// commit, reproducing a lost race without goroutine timing.
type racingRegistry struct{}

func (racingRegistry) Contains(context.Context, string) (bool, error)  { return false, nil }
func (racingRegistry) TryCommit(context.Context, string) (bool, error) { return false, nil }

// commitFaultRegistry succeeds on reads but fails the commit.
type commitFaultRegistry struct{ err error }

func (f *commitFaultRegistry) Contains(context.Context, string) (bool, error) { return false, nil }
func (f *commitFaultRegistry) TryCommit(context.Context, string) (bool, error) {
	return false, f.err
}

type ServiceSuite struct {
	suite.Suite
	registry *reference.InMemoryRegistry
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.registry = reference.NewInMemory()
	svc, err := NewService(s.registry)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestNewServiceRequiresRegistry() {
	_, err := NewService(nil)
	s.Error(err)
}

func (s *ServiceSuite) TestValidateAcceptsBasicPayment() {
	verdict, err := s.service.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)

	s.True(verdict.Valid)
	s.True(verdict.RuleResults.AllPassed())
	s.True(verdict.SecurityResults.AllPassed())
	s.Equal(1, s.registry.Len(), "valid payment should spend its reference")
}

func (s *ServiceSuite) TestValidateStampsRequestTime() {
	at := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, at)

	verdict, err := s.service.Validate(ctx, validSubmission())
	s.Require().NoError(err)
	s.Equal(at, verdict.ValidatedAt)
}

func (s *ServiceSuite) TestValidateRejectsResubmittedReference() {
	first, err := s.service.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)
	s.Require().True(first.Valid)

	second, err := s.service.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)

	s.False(second.Valid)
	s.False(second.SecurityResults.DuplicateReference)
	s.True(second.SecurityResults.AmountRange)
	s.True(second.SecurityResults.ValidFormat)
	s.True(second.RuleResults.AllPassed(), "structural rules are independent of history")
}

func (s *ServiceSuite) TestValidateRejectionLeavesRegistryUntouched() {
	sub := validSubmission()
	sub.Amount = 50.0 // fails both the floor rule and the range check

	verdict, err := s.service.Validate(s.ctx, sub)
	s.Require().NoError(err)
	s.False(verdict.Valid)
	s.Equal(0, s.registry.Len())

	// The same reference succeeds once the submission is corrected.
	verdict, err = s.service.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)
	s.True(verdict.Valid)
}

func (s *ServiceSuite) TestValidateSecurityFailureDoesNotSpendReference() {
	sub := validSubmission()
	sub.Amount = 20000.0 // passes the floor rule, fails the range check

	verdict, err := s.service.Validate(s.ctx, sub)
	s.Require().NoError(err)
	s.False(verdict.Valid)
	s.True(verdict.RuleResults.AmountValid)
	s.False(verdict.SecurityResults.AmountRange)
	s.Equal(0, s.registry.Len())
}

func (s *ServiceSuite) TestValidateRegistryFaultFailsWholeCall() {
	backendErr := errors.New("connection refused")
	svc, err := NewService(&faultyRegistry{err: backendErr})
	s.Require().NoError(err)

	verdict, err := svc.Validate(s.ctx, validSubmission())
	s.Require().Error(err)
	s.Nil(verdict, "a registry fault must not produce a verdict")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.ErrorIs(err, backendErr)
}

func (s *ServiceSuite) TestValidateCommitFaultFailsWholeCall() {
	backendErr := errors.New("broken pipe")
	svc, err := NewService(&commitFaultRegistry{err: backendErr})
	s.Require().NoError(err)

	verdict, err := svc.Validate(s.ctx, validSubmission())
	s.Require().Error(err)
	s.Nil(verdict)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestValidateLostCommitRaceDowngradesVerdict() {
	svc, err := NewService(racingRegistry{})
	s.Require().NoError(err)

	verdict, err := svc.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)

	s.False(verdict.Valid)
	s.False(verdict.SecurityResults.DuplicateReference)
	s.True(verdict.RuleResults.AllPassed())
}

func (s *ServiceSuite) TestValidateConcurrentDuplicates() {
	const submitters = 32

	var wg sync.WaitGroup
	verdicts := make([]*Verdict, submitters)
	errs := make([]error, submitters)

	for i := range submitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := validSubmission()
			sub.ApplicationID = fmt.Sprintf("APP2026031500%02d", i)
			verdicts[i], errs[i] = s.service.Validate(s.ctx, sub)
		}()
	}
	wg.Wait()

	accepted := 0
	for i := range submitters {
		s.Require().NoError(errs[i])
		s.Require().NotNil(verdicts[i])
		if verdicts[i].Valid {
			accepted++
		} else {
			s.False(verdicts[i].SecurityResults.DuplicateReference)
		}
	}
	s.Equal(1, accepted, "exactly one submission may win the reference")
	s.Equal(1, s.registry.Len())
}

func (s *ServiceSuite) TestValidateEmitsAuditEntries() {
	inbox := make(chan audit.Entry, 4)
	svc, err := NewService(s.registry, WithAuditPublisher(audit.NewPublisher(inbox)))
	s.Require().NoError(err)

	verdict, err := svc.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)
	s.Require().True(verdict.Valid)

	entry := <-inbox
	s.Equal(audit.ActionPaymentValidated, entry.Action)
	s.Equal(audit.StatusSuccess, entry.Status)
	s.Equal("APP202501010001", entry.ApplicationID)

	verdict, err = svc.Validate(s.ctx, validSubmission())
	s.Require().NoError(err)
	s.Require().False(verdict.Valid)

	entry = <-inbox
	s.Equal(audit.ActionPaymentValidationFailed, entry.Action)
	s.Equal(audit.StatusFailed, entry.Status)
}
