package certificate

import "time"

// Certificate statuses.
const (
	StatusActive  = "ACTIVE"
	StatusRevoked = "REVOKED"
)

// Validity period for issued certificates.
const validityPeriod = 365 * 24 * time.Hour

// Certificate is an issued certificate bound to one application.
type Certificate struct {
	ID            string     `json:"certificate_id"`
	ApplicationID string     `json:"application_id"`
	HolderName    string     `json:"holder_name"`
	Type          string     `json:"certificate_type"`
	SerialNumber  string     `json:"serial_number"`
	MachineUsed   string     `json:"machine_used"`
	Status        string     `json:"status"`
	IssuedAt      time.Time  `json:"issued_date"`
	ExpiresAt     time.Time  `json:"expiry_date"`
	RevokedAt     *time.Time `json:"revoked_date,omitempty"`
}
