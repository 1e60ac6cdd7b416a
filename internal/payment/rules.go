package payment

import (
	"strings"
	"unicode/utf8"
)

// EvaluateRules applies the structural payment rules to a submission.
// This is pure domain logic - no I/O, no side effects.
//
// Each rule is independent; all four are always evaluated so the caller can
// report every failure at once instead of stopping at the first.
func EvaluateRules(sub Submission) RuleResults {
	return RuleResults{
		AmountValid:      sub.Amount >= MinAmount,
		ReferenceValid:   utf8.RuneCountInString(sub.ReferenceNo) >= MinReferenceLen,
		BankValid:        strings.TrimSpace(sub.BankName) != "",
		PaymentTypeValid: isKnownPaymentType(sub.PaymentType),
	}
}

// isKnownPaymentType checks exact, case-sensitive membership; "bank in" fails.
func isKnownPaymentType(paymentType string) bool {
	switch paymentType {
	case TypeBankIn, TypeOnlineTransfer, TypeCreditCard:
		return true
	}
	return false
}
