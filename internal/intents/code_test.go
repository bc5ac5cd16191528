package intents

import (
	"strings"
	"testing"
)

func TestNewVerificationCodeFormat(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 chars, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(verificationCodeCharset, r) {
				t.Fatalf("unexpected character %q in %q", r, code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("expected varied codes")
	}
}
