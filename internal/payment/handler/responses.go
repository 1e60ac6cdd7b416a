package handler

import (
	"time"

	"certpay/internal/payment"
)

// Response statuses for POST /payments/validate.
const (
	StatusValidated = "PAYMENT_VALIDATED"
	StatusFailed    = "PAYMENT_FAILED"
)

// ValidateResponse is the HTTP response for POST /payments/validate.
type ValidateResponse struct {
	ApplicationID    string          `json:"application_id"`
	ValidationResult VerdictResponse `json:"validation_result"`
	Status           string          `json:"status"`
}

// VerdictResponse is the verdict portion of the response.
type VerdictResponse struct {
	Valid             bool                    `json:"valid"`
	ValidationResults payment.RuleResults     `json:"validation_results"`
	SecurityChecks    payment.SecurityResults `json:"security_checks"`
	ValidatedAt       time.Time               `json:"validated_at"`
}

// FromVerdict converts a domain verdict to the HTTP response envelope.
func FromVerdict(applicationID string, verdict *payment.Verdict) *ValidateResponse {
	status := StatusFailed
	if verdict.Valid {
		status = StatusValidated
	}
	return &ValidateResponse{
		ApplicationID: applicationID,
		ValidationResult: VerdictResponse{
			Valid:             verdict.Valid,
			ValidationResults: verdict.RuleResults,
			SecurityChecks:    verdict.SecurityResults,
			ValidatedAt:       verdict.ValidatedAt,
		},
		Status: status,
	}
}
