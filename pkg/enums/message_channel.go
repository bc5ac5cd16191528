package enums

import "fmt"

// MessageChannel is the outbound channel staff use for order handoff.
type MessageChannel string

const (
	MessageChannelWhatsApp MessageChannel = "whatsapp"
	MessageChannelTelegram MessageChannel = "telegram"
	MessageChannelInApp    MessageChannel = "in_app"
)

var validMessageChannels = []MessageChannel{
	MessageChannelWhatsApp,
	MessageChannelTelegram,
	MessageChannelInApp,
}

// String implements fmt.Stringer.
func (c MessageChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known MessageChannel.
func (c MessageChannel) IsValid() bool {
	for _, candidate := range validMessageChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseMessageChannel converts raw input into a MessageChannel.
func ParseMessageChannel(value string) (MessageChannel, error) {
	for _, candidate := range validMessageChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message channel %q", value)
}
