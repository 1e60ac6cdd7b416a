package payment

import (
	"context"
	"fmt"

	"certpay/internal/payment/store/reference"
)

// SecurityChecker runs the anti-fraud checks. Unlike the structural rules it
// consults shared state: the duplicate check reads the reference registry.
// The read is advisory and never writes; spending the reference is the
// orchestrator's job.
type SecurityChecker struct {
	registry reference.Registry
}

// NewSecurityChecker constructs a checker backed by the given registry.
func NewSecurityChecker(registry reference.Registry) *SecurityChecker {
	return &SecurityChecker{registry: registry}
}

// Check evaluates every security check. A registry failure aborts the whole
// check: a partial result would force the caller to guess the duplicate
// outcome, and "rejected" must stay distinguishable from "undecidable".
func (c *SecurityChecker) Check(ctx context.Context, sub Submission) (SecurityResults, error) {
	taken, err := c.registry.Contains(ctx, sub.ReferenceNo)
	if err != nil {
		return SecurityResults{}, fmt.Errorf("duplicate lookup: %w", err)
	}
	return SecurityResults{
		DuplicateReference: !taken,
		AmountRange:        sub.Amount >= MinAmount && sub.Amount <= MaxAmount,
		ValidFormat:        isAlphanumeric(sub.ReferenceNo),
	}, nil
}

// isAlphanumeric reports whether s is non-empty and consists exclusively of
// ASCII letters and digits.
func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
