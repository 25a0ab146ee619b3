package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"2.5215": "2.52",
		"0.615":  "0.62",
		"0.625":  "0.63",
		"1.004":  "1.00",
		"1.005":  "1.01",
		"10":     "10",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s -> %s, want %s", in, got, want)
	}
}

func TestHasCents(t *testing.T) {
	assert.True(t, HasCents(decimal.RequireFromString("1.25")))
	assert.True(t, HasCents(decimal.RequireFromString("100")))
	assert.False(t, HasCents(decimal.RequireFromString("1.005")))
}
