package utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// RandomDigits draws n decimal digits from r, uniformly distributed. The
// source is injected so tests can drive code generation deterministically;
// production callers pass crypto/rand.Reader.
func RandomDigits(r io.Reader, n int) (string, error) {
	mod := uint64(math.Pow10(n))
	// rejection sampling: draws at or above the largest multiple of mod
	// would skew the low codes, so redraw instead
	limit := math.MaxUint64 / mod * mod
	for {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return fmt.Sprintf("%0*d", n, v%mod), nil
		}
	}
}

// RandomAccountNumber produces a simulated bank account number in the
// form "FBA" followed by eight digits.
func RandomAccountNumber(r io.Reader) (string, error) {
	digits, err := RandomDigits(r, 8)
	if err != nil {
		return "", err
	}
	return "FBA" + digits, nil
}
