package application

import "time"

// Status is the application lifecycle state.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusPaymentValidated   Status = "PAYMENT_VALIDATED"
	StatusCertificateIssued  Status = "CERTIFICATE_ISSUED"
	StatusCertificateRevoked Status = "CERTIFICATE_REVOKED"
)

// Machine is the processing machine assigned to an application at submission.
type Machine struct {
	ID         string            `json:"machine_id"`
	Name       string            `json:"machine_name"`
	Config     map[string]string `json:"machine_config"`
	AssignedAt time.Time         `json:"assigned_at"`
}

// PaymentRecord captures the accepted payment attached to an application.
// Only submissions that passed validation are recorded here.
type PaymentRecord struct {
	PaymentType string  `json:"payment_type"`
	BankName    string  `json:"bank_name"`
	Amount      float64 `json:"amount"`
	ReferenceNo string  `json:"reference_no"`
	ProofURL    *string `json:"proof_url,omitempty"`
}

// Application is one certificate application record.
type Application struct {
	ID              string   `json:"application_id"`
	Name            string   `json:"name"`
	NRIC            string   `json:"nric,omitempty"`
	Passport        string   `json:"passport,omitempty"`
	DOB             string   `json:"dob"`
	Nationality     string   `json:"nationality"`
	Email           string   `json:"email"`
	Organisation    string   `json:"organisation,omitempty"`
	Address         string   `json:"address,omitempty"`
	CertificateType string   `json:"certificate_type"`
	PaymentMode     string   `json:"payment_mode"`
	Attachments     []string `json:"attachments"`

	AssignedMachine Machine   `json:"assigned_machine"`
	Status          Status    `json:"status"`
	SubmittedAt     time.Time `json:"submission_date"`

	PaymentValidated  bool           `json:"payment_validated"`
	PaymentReference  string         `json:"payment_reference,omitempty"`
	Payment           *PaymentRecord `json:"payment_details,omitempty"`
	CertificateID     string         `json:"certificate_id,omitempty"`
	CertificateIssued bool           `json:"certificate_issued"`
}

// clone returns a deep-enough copy so store callers never share mutable state
// with the store's own record.
func (a *Application) clone() *Application {
	cp := *a
	cp.Attachments = append([]string(nil), a.Attachments...)
	if a.AssignedMachine.Config != nil {
		cfg := make(map[string]string, len(a.AssignedMachine.Config))
		for k, v := range a.AssignedMachine.Config {
			cfg[k] = v
		}
		cp.AssignedMachine.Config = cfg
	}
	if a.Payment != nil {
		p := *a.Payment
		cp.Payment = &p
	}
	return &cp
}
