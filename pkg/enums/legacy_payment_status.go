package enums

import "fmt"

// LegacyPaymentStatus is the per-capture status on raw payment records.
// The payment intent remains the source of truth for gating; these records
// exist for per-payment reconciliation and audit history.
type LegacyPaymentStatus string

const (
	LegacyPaymentStatusPending  LegacyPaymentStatus = "pending"
	LegacyPaymentStatusVerified LegacyPaymentStatus = "verified"
	LegacyPaymentStatusRejected LegacyPaymentStatus = "rejected"
)

var validLegacyPaymentStatuses = []LegacyPaymentStatus{
	LegacyPaymentStatusPending,
	LegacyPaymentStatusVerified,
	LegacyPaymentStatusRejected,
}

// IsValid reports whether the value is a known LegacyPaymentStatus.
func (s LegacyPaymentStatus) IsValid() bool {
	for _, candidate := range validLegacyPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLegacyPaymentStatus converts raw input into a LegacyPaymentStatus.
func ParseLegacyPaymentStatus(value string) (LegacyPaymentStatus, error) {
	for _, candidate := range validLegacyPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid legacy payment status %q", value)
}
