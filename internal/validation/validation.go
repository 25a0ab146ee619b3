// Package validation rejects malformed input before any store access.
package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/money"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	otpPattern      = regexp.MustCompile(`^\d{6}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern    = regexp.MustCompile(`^\+?\d{8,15}$`)
)

// Amount requires a positive amount with at most two fractional digits.
func Amount(d decimal.Decimal) error {
	if d.Sign() <= 0 || !money.HasCents(d) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// Currency requires a three-letter uppercase ISO currency code.
func Currency(code string) error {
	if !currencyPattern.MatchString(code) {
		return domain.ErrInvalidCurrency
	}
	return nil
}

// OtpCode requires a six-digit numeric code. Malformed codes collapse into
// the same rejection as wrong codes.
func OtpCode(code string) error {
	if !otpPattern.MatchString(code) {
		return domain.ErrInvalidOtp
	}
	return nil
}

// Identifier requires a plausible phone number or email address.
func Identifier(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.ErrInvalidIdentifier
	}
	if strings.Contains(s, "@") {
		if !emailPattern.MatchString(s) {
			return domain.ErrInvalidIdentifier
		}
		return nil
	}
	if !phonePattern.MatchString(s) {
		return domain.ErrInvalidIdentifier
	}
	return nil
}

// IsEmail reports whether the identifier should be resolved as an email.
func IsEmail(s string) bool {
	return strings.Contains(s, "@")
}
