package utils

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDigitsDeterministic(t *testing.T) {
	// big-endian 1 % 1e6 = 1 -> "000001"
	code, err := RandomDigits(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 0, 1}), 6)
	require.NoError(t, err)
	assert.Equal(t, "000001", code)
}

func TestRandomDigitsRedrawsSkewedSamples(t *testing.T) {
	// the first draw sits above the largest multiple of 1e6 and must be
	// rejected; the second yields "000002"
	src := append(bytes.Repeat([]byte{0xFF}, 8), []byte{0, 0, 0, 0, 0, 0, 0, 2}...)
	code, err := RandomDigits(bytes.NewReader(src), 6)
	require.NoError(t, err)
	assert.Equal(t, "000002", code)
}

func TestRandomDigitsLength(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := RandomDigits(rand.Reader, 6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestRandomDigitsShortSource(t *testing.T) {
	_, err := RandomDigits(bytes.NewReader([]byte{1, 2}), 6)
	assert.Error(t, err)
}

func TestRandomAccountNumber(t *testing.T) {
	number, err := RandomAccountNumber(rand.Reader)
	require.NoError(t, err)
	assert.Regexp(t, `^FBA\d{8}$`, number)
}
