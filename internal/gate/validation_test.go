package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestNormalizeReference(t *testing.T) {
	cases := map[string]string{
		"  txn 123 abc  ": "TXN123ABC",
		"abcdef":          "ABCDEF",
		"A1B2\tC3":        "A1B2C3",
		"":                "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeReference(raw), "raw %q", raw)
	}
}

func TestValidateClaimCashNeedsNothing(t *testing.T) {
	out, err := validateClaim(enums.PaymentMethodCash, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out.Reference)
	assert.Nil(t, out.SenderName)
}

func TestValidateClaimPOSReferenceOptional(t *testing.T) {
	out, err := validateClaim(enums.PaymentMethodPOS, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out.Reference)

	out, err = validateClaim(enums.PaymentMethodPOS, nil, strPtr(" rrn 4412 "))
	require.NoError(t, err)
	require.NotNil(t, out.Reference)
	assert.Equal(t, "RRN4412", *out.Reference)
}

func TestValidateClaimTransferAcceptsRealReference(t *testing.T) {
	out, err := validateClaim(enums.PaymentMethodTransfer, strPtr("Jane Doe"), strPtr("abcdef"))
	require.NoError(t, err)
	require.NotNil(t, out.Reference)
	assert.Equal(t, "ABCDEF", *out.Reference)
	require.NotNil(t, out.SenderName)
	assert.Equal(t, "Jane Doe", *out.SenderName)
}

func TestValidateClaimTransferRejections(t *testing.T) {
	cases := []struct {
		name      string
		sender    *string
		reference *string
		reason    string
	}{
		{"short sender", strPtr("Jo"), strPtr("abcdef"), "sender_too_short"},
		{"spaces only sender", strPtr("  a b  "), strPtr("abcdef"), "sender_too_short"},
		{"missing reference", strPtr("Jane Doe"), nil, "reference_missing"},
		{"short reference", strPtr("Jane Doe"), strPtr("ab 12"), "reference_too_short"},
		{"blocklisted word", strPtr("Jane Doe"), strPtr("SENT123456"), "reference_blocklisted"},
		{"blocklist inside", strPtr("Jane Doe"), strPtr("i have paid 5k"), "reference_blocklisted"},
		{"transfer phrase", strPtr("Jane Doe"), strPtr("transfer done"), "reference_blocklisted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := validateClaim(enums.PaymentMethodTransfer, tc.sender, tc.reference)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, tc.reason, out.Reason)
		})
	}
}

func TestValidateClaimUnknownMethod(t *testing.T) {
	out, err := validateClaim(enums.PaymentMethod("crypto"), nil, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "unknown_method", out.Reason)
}
