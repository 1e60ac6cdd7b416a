package application

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	svc, err := NewService(s.store)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

func (s *ServiceSuite) submit() *Application {
	app, err := s.service.Submit(s.ctx, SubmitInput{
		Name:            "Tan Wei Ming",
		NRIC:            "S1234567A",
		DOB:             "1990-01-15",
		Nationality:     "Singaporean",
		Email:           "wei.ming@example.com",
		CertificateType: CertTypeUSBToken,
		PaymentMode:     "Bank In",
	})
	s.Require().NoError(err)
	return app
}

func (s *ServiceSuite) TestSubmit() {
	at := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, at)

	app, err := s.service.Submit(ctx, SubmitInput{
		Name:            "  Tan Wei Ming  ",
		CertificateType: CertTypeSmartCard,
		PaymentMode:     "Online Transfer",
	})
	s.Require().NoError(err)

	s.Regexp(regexp.MustCompile(`^APP20260315\d{4}$`), app.ID)
	s.Equal("Tan Wei Ming", app.Name, "applicant name is trimmed")
	s.Equal(StatusPending, app.Status)
	s.Equal(at, app.SubmittedAt)
	s.False(app.PaymentValidated)

	s.NotEmpty(app.AssignedMachine.ID)
	s.Equal(at, app.AssignedMachine.AssignedAt)
	s.Contains([]string{"SC-001", "SC-002", "SC-003"}, app.AssignedMachine.ID,
		"machine comes from the pool matching the certificate type")
}

func (s *ServiceSuite) TestSubmitRejectsUnknownCertificateType() {
	_, err := s.service.Submit(s.ctx, SubmitInput{
		Name:            "Tan Wei Ming",
		CertificateType: "Hardware Security Module",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestGet() {
	app := s.submit()

	found, err := s.service.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)

	_, err = s.service.Get(s.ctx, "APP209901010001")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Get(s.ctx, "  ")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestList() {
	first := s.submit()
	second := s.submit()

	apps, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal(first.ID, apps[0].ID)
	s.Equal(second.ID, apps[1].ID)
}

func (s *ServiceSuite) TestRecordValidatedPayment() {
	app := s.submit()

	rec := PaymentRecord{
		PaymentType: "Bank In",
		BankName:    "DBS Bank",
		Amount:      250.0,
		ReferenceNo: "REF123456",
	}
	updated, err := s.service.RecordValidatedPayment(s.ctx, app.ID, rec)
	s.Require().NoError(err)

	s.Equal(StatusPaymentValidated, updated.Status)
	s.True(updated.PaymentValidated)
	s.Equal("REF123456", updated.PaymentReference)
	s.Require().NotNil(updated.Payment)
	s.Equal(250.0, updated.Payment.Amount)
}

func (s *ServiceSuite) TestMarkCertificateIssued() {
	app := s.submit()

	s.Run("requires validated payment", func() {
		_, err := s.service.MarkCertificateIssued(s.ctx, app.ID, "CERT2026031500001")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	_, err := s.service.RecordValidatedPayment(s.ctx, app.ID, PaymentRecord{ReferenceNo: "REF123456"})
	s.Require().NoError(err)

	s.Run("issues once", func() {
		updated, err := s.service.MarkCertificateIssued(s.ctx, app.ID, "CERT2026031500001")
		s.Require().NoError(err)
		s.Equal(StatusCertificateIssued, updated.Status)
		s.True(updated.CertificateIssued)
		s.Equal("CERT2026031500001", updated.CertificateID)
	})

	s.Run("second issue conflicts", func() {
		_, err := s.service.MarkCertificateIssued(s.ctx, app.ID, "CERT2026031500002")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestMarkRevoked() {
	app := s.submit()

	updated, err := s.service.MarkRevoked(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusCertificateRevoked, updated.Status)
}

func TestMachinePools(t *testing.T) {
	pools := MachinePools()

	for _, certType := range []string{CertTypeUSBToken, CertTypeSmartCard, CertTypeSoftcert} {
		if len(pools[certType]) != 3 {
			t.Errorf("pool %q: expected 3 machines, got %d", certType, len(pools[certType]))
		}
	}

	// Mutating the returned catalog must not leak into the real pools.
	pools[CertTypeUSBToken][0].Config["encryption"] = "none"
	fresh := MachinePools()
	if fresh[CertTypeUSBToken][0].Config["encryption"] == "none" {
		t.Error("MachinePools must return an isolated copy")
	}
}
