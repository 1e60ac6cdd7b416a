package handler

import (
	"strings"

	"certpay/internal/application"
	dErrors "certpay/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /applications.
type SubmitRequest struct {
	Name            string   `json:"name"`
	NRIC            string   `json:"nric"`
	Passport        string   `json:"passport"`
	DOB             string   `json:"dob"`
	Nationality     string   `json:"nationality"`
	Email           string   `json:"email"`
	Organisation    string   `json:"organisation"`
	Address         string   `json:"address"`
	CertificateType string   `json:"certificate_type"`
	PaymentMode     string   `json:"payment_mode"`
	Attachments     []string `json:"attachments"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.DOB) == "" {
		return dErrors.New(dErrors.CodeValidation, "dob is required")
	}
	if strings.TrimSpace(r.Nationality) == "" {
		return dErrors.New(dErrors.CodeValidation, "nationality is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(r.CertificateType) == "" {
		return dErrors.New(dErrors.CodeValidation, "certificate_type is required")
	}
	if r.PaymentMode == "" {
		r.PaymentMode = "Bank In"
	}
	return nil
}

// Input converts the request into the service's input type.
func (r *SubmitRequest) Input() application.SubmitInput {
	return application.SubmitInput{
		Name:            r.Name,
		NRIC:            r.NRIC,
		Passport:        r.Passport,
		DOB:             r.DOB,
		Nationality:     r.Nationality,
		Email:           r.Email,
		Organisation:    r.Organisation,
		Address:         r.Address,
		CertificateType: r.CertificateType,
		PaymentMode:     r.PaymentMode,
		Attachments:     r.Attachments,
	}
}
