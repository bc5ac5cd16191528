package gate

import (
	"strings"
	"unicode"

	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

const (
	minSenderChars    = 3
	minReferenceChars = 6
)

// referenceBlocklist rejects transfer "references" that are really just chat
// filler typed into the field.
var referenceBlocklist = []string{
	"SENT", "TRANSFER", "PAID", "OK", "DONE", "ALERT", "YES", "MONEY",
}

// NormalizeReference trims, uppercases, and strips internal whitespace.
func NormalizeReference(raw string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type claimValidation struct {
	Reference  *string
	SenderName *string
	// Reason labels the rejection for metrics.
	Reason string
}

// validateClaim enforces the per-method claim rules. For transfers the
// returned reference is normalized.
func validateClaim(method enums.PaymentMethod, senderName, reference *string) (claimValidation, error) {
	out := claimValidation{}
	switch method {
	case enums.PaymentMethodCash:
		// Bare confirmation; nothing to check.
		return out, nil

	case enums.PaymentMethodPOS:
		if reference != nil {
			normalized := NormalizeReference(*reference)
			if normalized != "" {
				out.Reference = &normalized
			}
		}
		return out, nil

	case enums.PaymentMethodTransfer:
		sender := ""
		if senderName != nil {
			sender = strings.TrimSpace(*senderName)
		}
		if nonSpaceLen(sender) < minSenderChars {
			out.Reason = "sender_too_short"
			return out, pkgerrors.New(pkgerrors.CodeValidation,
				"sender name must be at least 3 characters")
		}

		if reference == nil {
			out.Reason = "reference_missing"
			return out, pkgerrors.New(pkgerrors.CodeValidation, "transfer reference required")
		}
		normalized := NormalizeReference(*reference)
		if len(normalized) < minReferenceChars {
			out.Reason = "reference_too_short"
			return out, pkgerrors.New(pkgerrors.CodeValidation,
				"transfer reference must be at least 6 characters")
		}
		for _, blocked := range referenceBlocklist {
			if strings.Contains(normalized, blocked) {
				out.Reason = "reference_blocklisted"
				return out, pkgerrors.New(pkgerrors.CodeValidation,
					"transfer reference looks like a confirmation message, not a bank reference")
			}
		}
		out.Reference = &normalized
		out.SenderName = &sender
		return out, nil

	default:
		out.Reason = "unknown_method"
		return out, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
}

func nonSpaceLen(value string) int {
	count := 0
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		count++
	}
	return count
}
