package enums

import "fmt"

// AuditEventType enumerates the domain events the audit log records.
type AuditEventType string

const (
	AuditEventOrderCreated          AuditEventType = "order_created"
	AuditEventPaymentIntentCreated  AuditEventType = "payment_intent_created"
	AuditEventPaymentMethodSelected AuditEventType = "payment_method_selected"
	AuditEventPaymentClaimed        AuditEventType = "payment_claimed"
	AuditEventPaymentVerified       AuditEventType = "payment_verified"
	AuditEventPaymentExpired        AuditEventType = "payment_expired"
	AuditEventChannelSelected       AuditEventType = "channel_selected"
	AuditEventMessageOpened         AuditEventType = "message_opened"
	AuditEventCheckoutCompleted     AuditEventType = "checkout_completed"
	AuditEventOrderFulfilled        AuditEventType = "order_fulfilled"
	AuditEventOrderVoided           AuditEventType = "order_voided"
	AuditEventHandoffCompleted      AuditEventType = "handoff_completed"
)

var validAuditEventTypes = []AuditEventType{
	AuditEventOrderCreated,
	AuditEventPaymentIntentCreated,
	AuditEventPaymentMethodSelected,
	AuditEventPaymentClaimed,
	AuditEventPaymentVerified,
	AuditEventPaymentExpired,
	AuditEventChannelSelected,
	AuditEventMessageOpened,
	AuditEventCheckoutCompleted,
	AuditEventOrderFulfilled,
	AuditEventOrderVoided,
	AuditEventHandoffCompleted,
}

// String implements fmt.Stringer.
func (t AuditEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known AuditEventType.
func (t AuditEventType) IsValid() bool {
	for _, candidate := range validAuditEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAuditEventType converts raw input into an AuditEventType.
func ParseAuditEventType(value string) (AuditEventType, error) {
	for _, candidate := range validAuditEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit event type %q", value)
}
