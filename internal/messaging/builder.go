package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/defactolounge/lounge-backend/pkg/config"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

// Builder produces the pre-formatted handoff text and the deep link staff
// open to send it. The venue never sends messages itself; it only hands the
// composed payload to the guest's channel of choice.
type Builder interface {
	BuildOrderMessage(order *models.Order, intent *models.PaymentIntent, tableName string) string
	Link(channel enums.MessageChannel, text string) (string, error)
}

type builder struct {
	whatsAppNumber string
	telegramHandle string
}

// NewBuilder constructs the handoff message builder.
func NewBuilder(cfg config.MessagingConfig) Builder {
	return &builder{
		whatsAppNumber: strings.TrimPrefix(strings.TrimSpace(cfg.WhatsAppNumber), "+"),
		telegramHandle: strings.TrimPrefix(strings.TrimSpace(cfg.TelegramHandle), "@"),
	}
}

func (b *builder) BuildOrderMessage(order *models.Order, intent *models.PaymentIntent, tableName string) string {
	var sb strings.Builder
	sb.WriteString("De Facto Lounge & Bar\n")
	fmt.Fprintf(&sb, "Order %s\n", shortID(order.ID.String()))
	if tableName != "" {
		fmt.Fprintf(&sb, "Table: %s\n", tableName)
	}
	sb.WriteString("\n")
	for _, item := range order.Items {
		fmt.Fprintf(&sb, "%dx %s - %s\n", item.Qty, item.Name, formatNaira(item.TotalCents))
	}
	fmt.Fprintf(&sb, "\nTotal: %s\n", formatNaira(order.TotalCents))
	if intent != nil {
		fmt.Fprintf(&sb, "Verification code: %s\n", intent.VerificationCode)
	}
	return sb.String()
}

func (b *builder) Link(channel enums.MessageChannel, text string) (string, error) {
	switch channel {
	case enums.MessageChannelWhatsApp:
		if b.whatsAppNumber == "" {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "whatsapp number not configured")
		}
		u := &url.URL{Scheme: "https", Host: "wa.me", Path: "/" + b.whatsAppNumber}
		q := u.Query()
		q.Set("text", text)
		u.RawQuery = q.Encode()
		return u.String(), nil
	case enums.MessageChannelTelegram:
		if b.telegramHandle == "" {
			return "", pkgerrors.New(pkgerrors.CodeDependency, "telegram handle not configured")
		}
		u := &url.URL{Scheme: "https", Host: "t.me", Path: "/" + b.telegramHandle}
		q := u.Query()
		q.Set("text", text)
		u.RawQuery = q.Encode()
		return u.String(), nil
	case enums.MessageChannelInApp:
		return "", nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown message channel")
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:8])
}

func formatNaira(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	if frac == 0 {
		return fmt.Sprintf("%s₦%s", sign, groupThousands(whole))
	}
	return fmt.Sprintf("%s₦%s.%02d", sign, groupThousands(whole), frac)
}

func groupThousands(value int) string {
	digits := fmt.Sprintf("%d", value)
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
		if len(digits) > lead {
			sb.WriteString(",")
		}
	}
	for i := lead; i < len(digits); i += 3 {
		sb.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			sb.WriteString(",")
		}
	}
	return sb.String()
}
