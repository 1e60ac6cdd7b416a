package payment

import "time"

// Payment types accepted by the structural rules. Membership is compared
// exactly and case-sensitively.
const (
	TypeBankIn         = "Bank In"
	TypeOnlineTransfer = "Online Transfer"
	TypeCreditCard     = "Credit Card"
)

// Rule thresholds. The amount floor applies to both the structural rule and
// the security range check; the ceiling belongs to the security check only.
const (
	MinAmount       = 100.0
	MaxAmount       = 10000.0
	MinReferenceLen = 6
)

// Submission is one payment claim attached to a certificate application.
// It is immutable once received. ApplicationID is an opaque correlation key
// supplied by the application module; the engine never validates its format.
// ProofURL is carried through untouched.
type Submission struct {
	ApplicationID string
	PaymentType   string
	BankName      string
	Amount        float64
	ReferenceNo   string
	ProofURL      *string
}

// RuleResults holds the outcome of the structural rules. Each field is true
// when the corresponding rule passed.
type RuleResults struct {
	AmountValid      bool `json:"amount_valid"`
	ReferenceValid   bool `json:"reference_valid"`
	BankValid        bool `json:"bank_valid"`
	PaymentTypeValid bool `json:"payment_type_valid"`
}

// AllPassed reports whether every structural rule passed.
func (r RuleResults) AllPassed() bool {
	return r.AmountValid && r.ReferenceValid && r.BankValid && r.PaymentTypeValid
}

// SecurityResults holds the outcome of the anti-fraud checks. The convention
// matches RuleResults: true means the check passed, so DuplicateReference is
// true when no duplicate was found.
type SecurityResults struct {
	DuplicateReference bool `json:"duplicate_reference"`
	AmountRange        bool `json:"amount_range"`
	ValidFormat        bool `json:"valid_format"`
}

// AllPassed reports whether every security check passed.
func (r SecurityResults) AllPassed() bool {
	return r.DuplicateReference && r.AmountRange && r.ValidFormat
}

// Verdict is the structured outcome of validating one submission. It is
// produced once and never retried; Valid is true only when every rule and
// security check passed and the reference commit succeeded.
type Verdict struct {
	Valid           bool            `json:"valid"`
	RuleResults     RuleResults     `json:"validation_results"`
	SecurityResults SecurityResults `json:"security_checks"`
	ValidatedAt     time.Time       `json:"validated_at"`
}
