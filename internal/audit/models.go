package audit

import "time"

// Entry is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Entry struct {
	ApplicationID string    `json:"application_id"`
	Action        string    `json:"action"`
	Details       string    `json:"details"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// Entry statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Actions recorded across the application lifecycle.
const (
	ActionApplicationSubmitted     = "APPLICATION_SUBMITTED"
	ActionMachineAssigned          = "MACHINE_ASSIGNED"
	ActionPaymentValidated         = "PAYMENT_VALIDATED"
	ActionPaymentValidationFailed  = "PAYMENT_VALIDATION_FAILED"
	ActionPaymentError             = "PAYMENT_ERROR"
	ActionCertificateIssued        = "CERTIFICATE_ISSUED"
	ActionCertificateIssueError    = "CERTIFICATE_ISSUE_ERROR"
	ActionCertificateRevoked       = "CERTIFICATE_REVOKED"
)
