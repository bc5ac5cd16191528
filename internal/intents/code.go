package intents

import (
	"crypto/rand"
	"fmt"
)

const (
	verificationCodeLen     = 6
	verificationCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewVerificationCode returns a 6-character uppercase alphanumeric code a
// manager reads back to the guest during verification.
func NewVerificationCode() (string, error) {
	buf := make([]byte, verificationCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating verification code: %w", err)
	}
	out := make([]byte, verificationCodeLen)
	for i, b := range buf {
		out[i] = verificationCodeCharset[int(b)%len(verificationCodeCharset)]
	}
	return string(out), nil
}
