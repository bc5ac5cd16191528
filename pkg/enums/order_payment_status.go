package enums

import "fmt"

// OrderPaymentStatus is the order-level aggregate derived from the active
// payment intent and any legacy payment captures.
type OrderPaymentStatus string

const (
	OrderPaymentStatusUnpaid        OrderPaymentStatus = "unpaid"
	OrderPaymentStatusPending       OrderPaymentStatus = "pending"
	OrderPaymentStatusClaimed       OrderPaymentStatus = "claimed"
	OrderPaymentStatusPartiallyPaid OrderPaymentStatus = "partially_paid"
	OrderPaymentStatusVerified      OrderPaymentStatus = "verified"
)

var validOrderPaymentStatuses = []OrderPaymentStatus{
	OrderPaymentStatusUnpaid,
	OrderPaymentStatusPending,
	OrderPaymentStatusClaimed,
	OrderPaymentStatusPartiallyPaid,
	OrderPaymentStatusVerified,
}

// String implements fmt.Stringer.
func (s OrderPaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderPaymentStatus.
func (s OrderPaymentStatus) IsValid() bool {
	for _, candidate := range validOrderPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderPaymentStatus converts raw input into an OrderPaymentStatus.
func ParseOrderPaymentStatus(value string) (OrderPaymentStatus, error) {
	for _, candidate := range validOrderPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order payment status %q", value)
}
