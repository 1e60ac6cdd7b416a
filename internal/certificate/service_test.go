package certificate

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certpay/internal/application"
	dErrors "certpay/pkg/domain-errors"
	"certpay/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	apps    *application.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	apps, err := application.NewService(application.NewInMemoryStore())
	s.Require().NoError(err)
	s.apps = apps

	svc, err := NewService(NewInMemoryStore(), apps)
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

// submitValidated creates an application with its payment already accepted.
func (s *ServiceSuite) submitValidated() *application.Application {
	app, err := s.apps.Submit(s.ctx, application.SubmitInput{
		Name:            "Tan Wei Ming",
		CertificateType: application.CertTypeSoftcert,
		PaymentMode:     "Bank In",
	})
	s.Require().NoError(err)

	app, err = s.apps.RecordValidatedPayment(s.ctx, app.ID, application.PaymentRecord{
		PaymentType: "Bank In",
		BankName:    "DBS Bank",
		Amount:      250.0,
		ReferenceNo: "REF123456",
	})
	s.Require().NoError(err)
	return app
}

func (s *ServiceSuite) TestIssue() {
	app := s.submitValidated()
	at := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, at)

	cert, err := s.service.Issue(ctx, app.ID)
	s.Require().NoError(err)

	s.Regexp(regexp.MustCompile(`^CERT20260315\d{5}$`), cert.ID)
	s.Regexp(regexp.MustCompile(`^SN\d{7}$`), cert.SerialNumber)
	s.Equal(app.ID, cert.ApplicationID)
	s.Equal("Tan Wei Ming", cert.HolderName)
	s.Equal(application.CertTypeSoftcert, cert.Type)
	s.Equal(app.AssignedMachine.ID, cert.MachineUsed)
	s.Equal(StatusActive, cert.Status)
	s.Equal(at, cert.IssuedAt)
	s.Equal(at.Add(validityPeriod), cert.ExpiresAt)
	s.Nil(cert.RevokedAt)

	updated, err := s.apps.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusCertificateIssued, updated.Status)
	s.Equal(cert.ID, updated.CertificateID)
}

func (s *ServiceSuite) TestIssueRequiresValidatedPayment() {
	app, err := s.apps.Submit(s.ctx, application.SubmitInput{
		Name:            "Tan Wei Ming",
		CertificateType: application.CertTypeSoftcert,
	})
	s.Require().NoError(err)

	_, err = s.service.Issue(s.ctx, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestIssueIsOncePerApplication() {
	app := s.submitValidated()

	_, err := s.service.Issue(s.ctx, app.ID)
	s.Require().NoError(err)

	_, err = s.service.Issue(s.ctx, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestIssueUnknownApplication() {
	_, err := s.service.Issue(s.ctx, "APP209901010001")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestGetAndFindByApplication() {
	app := s.submitValidated()
	cert, err := s.service.Issue(s.ctx, app.ID)
	s.Require().NoError(err)

	found, err := s.service.Get(s.ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(cert.ID, found.ID)

	found, err = s.service.FindByApplication(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(cert.ID, found.ID)

	_, err = s.service.Get(s.ctx, "CERT209901010001")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRevoke() {
	app := s.submitValidated()
	cert, err := s.service.Issue(s.ctx, app.ID)
	s.Require().NoError(err)

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	revoked, err := s.service.Revoke(requestcontext.WithTime(s.ctx, at), cert.ID)
	s.Require().NoError(err)

	s.Equal(StatusRevoked, revoked.Status)
	s.Require().NotNil(revoked.RevokedAt)
	s.Equal(at, *revoked.RevokedAt)

	updated, err := s.apps.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(application.StatusCertificateRevoked, updated.Status)

	_, err = s.service.Revoke(s.ctx, cert.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "double revocation must surface")
}
