package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateSource provides live conversion rates from an external provider.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	GetAllRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// RateCache is the cache slice used for rate lookups.
type RateCache interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
	SetRate(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error
}

// NoopRateCache satisfies RateCache without a backing store.
type NoopRateCache struct{}

func (NoopRateCache) GetRate(context.Context, string, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (NoopRateCache) SetRate(context.Context, string, string, decimal.Decimal, time.Duration) error {
	return nil
}

// ExchangeInput converts between two wallets of the initiating user.
type ExchangeInput struct {
	FromWalletID uint
	ToWalletID   uint
	Amount       decimal.Decimal
}

// Config tunes the exchange service.
type Config struct {
	// FeeBps is the conversion fee in basis points of the source amount.
	FeeBps int64
	// RateTTL bounds how long a cached rate is served.
	RateTTL time.Duration
}

const (
	defaultFeeBps  = 50
	defaultRateTTL = 15 * time.Minute
)
