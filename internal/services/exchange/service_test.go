package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories/repotest"
	"mahfaza/internal/services/wallet"
)

type fakeRateSource struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	calls int
	err   error
}

func (f *fakeRateSource) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	if r, ok := f.rates[from+":"+to]; ok {
		return r, nil
	}
	return decimal.Zero, domain.ErrRateUnavailable
}

func (f *fakeRateSource) GetAllRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]decimal.Decimal{}
	for key, r := range f.rates {
		if len(key) == 7 && key[:3] == base {
			out[key[4:]] = r
		}
	}
	return out, nil
}

type memRateCache struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
}

func newMemRateCache() *memRateCache {
	return &memRateCache{rates: map[string]decimal.Decimal{}}
}

func (c *memRateCache) GetRate(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rates[from+":"+to]
	return r, ok, nil
}

func (c *memRateCache) SetRate(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[from+":"+to] = rate
	return nil
}

type exchangeFixture struct {
	store  *repotest.Store
	svc    Service
	source *fakeRateSource
	cache  *memRateCache
	user   *models.User
	egp    *models.Wallet
	usd    *models.Wallet
}

func newExchangeFixture(t *testing.T) *exchangeFixture {
	t.Helper()
	store := repotest.New()
	user := store.SeedUser("alice@example.com", "+201000000001")
	egp := store.SeedWallet(user.ID, "EGP", "1000.00")
	usd := store.SeedWallet(user.ID, "USD", "0.00")

	source := &fakeRateSource{rates: map[string]decimal.Decimal{
		"EGP:USD": decimal.RequireFromString("0.02"),
		"USD:EGP": decimal.RequireFromString("48.10"),
	}}
	cache := newMemRateCache()
	ledger := wallet.NewService(wallet.NoopCache{}, wallet.NoopMetricsCollector{})
	svc := NewService(store, ledger, source, cache, Config{})
	return &exchangeFixture{store: store, svc: svc, source: source, cache: cache, user: user, egp: egp, usd: usd}
}

func TestExchangeAppliesRateAndFee(t *testing.T) {
	f := newExchangeFixture(t)

	rec, err := f.svc.Exchange(context.Background(), f.user.ID, ExchangeInput{
		FromWalletID: f.egp.ID,
		ToWalletID:   f.usd.ID,
		Amount:       decimal.RequireFromString("100"),
	})
	require.NoError(t, err)

	// converted = 100 * 0.02 = 2.00, fee = 100 * 0.5% = 0.50
	assert.True(t, rec.ToAmount.Equal(decimal.RequireFromString("2.00")), "got %s", rec.ToAmount)
	assert.True(t, rec.Fee.Equal(decimal.RequireFromString("0.50")), "got %s", rec.Fee)

	// source loses amount + fee, target gains the converted amount
	assert.True(t, f.store.Wallet(f.egp.ID).Balance.Equal(decimal.RequireFromString("899.50")))
	assert.True(t, f.store.Wallet(f.usd.ID).Balance.Equal(decimal.RequireFromString("2.00")))

	entries := f.store.Journal()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, rec.Reference, e.Reference)
		assert.Equal(t, models.TransactionTypeExchange, e.Type)
	}
}

func TestExchangeRoundsHalfUp(t *testing.T) {
	f := newExchangeFixture(t)
	f.source.rates["EGP:USD"] = decimal.RequireFromString("0.0205")

	rec, err := f.svc.Exchange(context.Background(), f.user.ID, ExchangeInput{
		FromWalletID: f.egp.ID,
		ToWalletID:   f.usd.ID,
		Amount:       decimal.RequireFromString("123"),
	})
	require.NoError(t, err)

	// 123 * 0.0205 = 2.5215 -> 2.52; fee 123 * 0.005 = 0.615 -> 0.62
	assert.True(t, rec.ToAmount.Equal(decimal.RequireFromString("2.52")), "got %s", rec.ToAmount)
	assert.True(t, rec.Fee.Equal(decimal.RequireFromString("0.62")), "got %s", rec.Fee)
}

func TestExchangeRejections(t *testing.T) {
	f := newExchangeFixture(t)
	ctx := context.Background()
	other := f.store.SeedUser("bob@example.com", "+201000000002")
	otherW := f.store.SeedWallet(other.ID, "USD", "0.00")
	egp2 := f.store.SeedWallet(other.ID, "EGP", "0.00")

	t.Run("cross user target", func(t *testing.T) {
		_, err := f.svc.Exchange(ctx, f.user.ID, ExchangeInput{
			FromWalletID: f.egp.ID, ToWalletID: otherW.ID,
			Amount: decimal.RequireFromString("10"),
		})
		assert.ErrorIs(t, err, domain.ErrCrossUserExchange)
	})

	t.Run("foreign source wallet", func(t *testing.T) {
		_, err := f.svc.Exchange(ctx, f.user.ID, ExchangeInput{
			FromWalletID: egp2.ID, ToWalletID: f.usd.ID,
			Amount: decimal.RequireFromString("10"),
		})
		assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	})

	t.Run("same wallet", func(t *testing.T) {
		_, err := f.svc.Exchange(ctx, f.user.ID, ExchangeInput{
			FromWalletID: f.egp.ID, ToWalletID: f.egp.ID,
			Amount: decimal.RequireFromString("10"),
		})
		assert.ErrorIs(t, err, domain.ErrSameCurrencyExchange)
	})

	t.Run("insufficient for amount plus fee", func(t *testing.T) {
		// 1000 balance cannot cover 1000 + 5.00 fee
		_, err := f.svc.Exchange(ctx, f.user.ID, ExchangeInput{
			FromWalletID: f.egp.ID, ToWalletID: f.usd.ID,
			Amount: decimal.RequireFromString("1000"),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.True(t, f.store.Wallet(f.egp.ID).Balance.Equal(decimal.RequireFromString("1000.00")))
		assert.Empty(t, f.store.Journal())
	})

	t.Run("rate unavailable", func(t *testing.T) {
		f.source.err = domain.ErrRateUnavailable
		defer func() { f.source.err = nil }()
		gbp := f.store.SeedWallet(f.user.ID, "JPY", "0.00")
		_, err := f.svc.Exchange(ctx, f.user.ID, ExchangeInput{
			FromWalletID: f.egp.ID, ToWalletID: gbp.ID,
			Amount: decimal.RequireFromString("10"),
		})
		assert.ErrorIs(t, err, domain.ErrRateUnavailable)
	})
}

func TestGetRateFallbackOrder(t *testing.T) {
	f := newExchangeFixture(t)
	ctx := context.Background()

	// live source answers first, and the answer lands in table and cache
	rate, err := f.svc.GetRate(ctx, "EGP", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, 1, f.source.calls)

	// second lookup is served from cache, no extra provider call
	_, err = f.svc.GetRate(ctx, "EGP", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1, f.source.calls)
}

func TestGetRateUsesLocalTableWhenProviderDown(t *testing.T) {
	f := newExchangeFixture(t)
	f.store.SeedRate("EGP", "USD", "0.019")
	f.source.err = domain.ErrRateUnavailable

	rate, err := f.svc.GetRate(context.Background(), "EGP", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.019")))
	assert.Equal(t, 0, f.source.calls)
}

func TestGetRateIdentity(t *testing.T) {
	f := newExchangeFixture(t)
	rate, err := f.svc.GetRate(context.Background(), "EGP", "EGP")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestRefreshRatesPopulatesTable(t *testing.T) {
	f := newExchangeFixture(t)
	require.NoError(t, f.svc.RefreshRates(context.Background(), "EGP"))

	row, err := f.store.Repos().Rates.GetRate("EGP", "USD")
	require.NoError(t, err)
	assert.True(t, row.Rate.Equal(decimal.RequireFromString("0.02")))
}

func TestAPIRateSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EGP":48.1,"EUR":0.92}}`))
	}))
	defer srv.Close()

	source := NewAPIRateSource(srv.URL)
	rate, err := source.GetRate(context.Background(), "USD", "EGP")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("48.1")))

	_, err = source.GetRate(context.Background(), "USD", "XXX")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}
