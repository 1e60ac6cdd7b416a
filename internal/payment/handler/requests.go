package handler

import (
	"strings"

	"certpay/internal/payment"
	dErrors "certpay/pkg/domain-errors"
)

// ValidateRequest is the HTTP request body for POST /payments/validate.
type ValidateRequest struct {
	ApplicationID string  `json:"application_id"`
	PaymentType   string  `json:"payment_type"`
	BankName      string  `json:"bank_name"`
	Amount        float64 `json:"amount"`
	ReferenceNo   string  `json:"reference_no"`
	ProofURL      *string `json:"proof_url"`
}

// Validate checks transport-level requirements only. Business fields are
// deliberately not validated here: a short reference or negative amount is a
// boolean in the verdict, not an HTTP 400.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ApplicationID = strings.TrimSpace(r.ApplicationID)
	if r.ApplicationID == "" {
		return dErrors.New(dErrors.CodeValidation, "application_id is required")
	}
	return nil
}

// Submission converts the request into the engine's input type.
func (r *ValidateRequest) Submission() payment.Submission {
	return payment.Submission{
		ApplicationID: r.ApplicationID,
		PaymentType:   r.PaymentType,
		BankName:      r.BankName,
		Amount:        r.Amount,
		ReferenceNo:   r.ReferenceNo,
		ProofURL:      r.ProofURL,
	}
}
