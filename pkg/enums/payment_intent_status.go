package enums

import "fmt"

// PaymentIntentStatus tracks the lifecycle of a payment intent.
type PaymentIntentStatus string

const (
	PaymentIntentStatusPending  PaymentIntentStatus = "pending"
	PaymentIntentStatusClaimed  PaymentIntentStatus = "claimed"
	PaymentIntentStatusVerified PaymentIntentStatus = "verified"
	PaymentIntentStatusExpired  PaymentIntentStatus = "expired"
	PaymentIntentStatusVoided   PaymentIntentStatus = "voided"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusPending,
	PaymentIntentStatusClaimed,
	PaymentIntentStatusVerified,
	PaymentIntentStatusExpired,
	PaymentIntentStatusVoided,
}

// String implements fmt.Stringer.
func (s PaymentIntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PaymentIntentStatus.
func (s PaymentIntentStatus) IsValid() bool {
	for _, candidate := range validPaymentIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the intent can no longer transition.
func (s PaymentIntentStatus) IsTerminal() bool {
	switch s {
	case PaymentIntentStatusVerified, PaymentIntentStatusExpired, PaymentIntentStatusVoided:
		return true
	default:
		return false
	}
}

// ParsePaymentIntentStatus converts raw input into a PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	for _, candidate := range validPaymentIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
