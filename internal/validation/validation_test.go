package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	domain "mahfaza/internal/errors"
)

func TestAmount(t *testing.T) {
	valid := []string{"0.01", "1", "99.99", "10000"}
	for _, raw := range valid {
		assert.NoError(t, Amount(decimal.RequireFromString(raw)), raw)
	}
	invalid := []string{"0", "-1", "0.001", "1.005"}
	for _, raw := range invalid {
		assert.ErrorIs(t, Amount(decimal.RequireFromString(raw)), domain.ErrInvalidAmount, raw)
	}
}

func TestCurrency(t *testing.T) {
	for _, code := range []string{"EGP", "USD", "EUR"} {
		assert.NoError(t, Currency(code), code)
	}
	for _, code := range []string{"", "E", "egp", "EGPT", "EG1"} {
		assert.ErrorIs(t, Currency(code), domain.ErrInvalidCurrency, code)
	}
}

func TestOtpCode(t *testing.T) {
	assert.NoError(t, OtpCode("123456"))
	assert.NoError(t, OtpCode("000000"))
	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		assert.ErrorIs(t, OtpCode(code), domain.ErrInvalidOtp, code)
	}
}

func TestIdentifier(t *testing.T) {
	valid := []string{"alice@example.com", "+201000000001", "01000000001"}
	for _, id := range valid {
		assert.NoError(t, Identifier(id), id)
	}
	invalid := []string{"", "   ", "@", "alice@", "not an email", "+123"}
	for _, id := range invalid {
		assert.ErrorIs(t, Identifier(id), domain.ErrInvalidIdentifier, id)
	}
}
