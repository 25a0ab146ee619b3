package request

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories/repotest"
	"mahfaza/internal/services/otp"
	"mahfaza/internal/services/wallet"
)

type requestFixture struct {
	store      *repotest.Store
	svc        Service
	requester  *models.User
	payer      *models.User
	requesterW *models.Wallet
	payerW     *models.Wallet
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	store := repotest.New()
	requester := store.SeedUser("alice@example.com", "+201000000001")
	payer := store.SeedUser("bob@example.com", "+201000000002")
	requesterW := store.SeedWallet(requester.ID, "EGP", "0.00")
	payerW := store.SeedWallet(payer.ID, "EGP", "500.00")

	ledger := wallet.NewService(wallet.NoopCache{}, wallet.NoopMetricsCollector{})
	otps := otp.NewService(bytes.NewReader(make([]byte, 64)), 5*time.Minute)
	svc := NewService(store, ledger, otps, nil)
	return &requestFixture{
		store:      store,
		svc:        svc,
		requester:  requester,
		payer:      payer,
		requesterW: requesterW,
		payerW:     payerW,
	}
}

func (f *requestFixture) seedPayerOtp() string {
	f.store.SeedOtp(f.payer.ID, "123456", models.OtpPurposeTransfer)
	return "123456"
}

func TestCreateRequest(t *testing.T) {
	f := newRequestFixture(t)

	req, err := f.svc.Create(context.Background(), f.requester.ID, CreateInput{
		Payer:    "bob@example.com",
		Amount:   decimal.RequireFromString("75"),
		Currency: "EGP",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MoneyRequestStatusPending, req.Status)
	assert.Equal(t, f.requester.ID, req.FromUserID)
	assert.Equal(t, f.payer.ID, req.ToUserID)
}

func TestCreateRequestAgainstSelf(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.svc.Create(context.Background(), f.requester.ID, CreateInput{
		Payer:    "alice@example.com",
		Amount:   decimal.RequireFromString("75"),
		Currency: "EGP",
	})
	assert.ErrorIs(t, err, domain.ErrSelfOperation)
}

func TestAcceptMovesMoneyToRequester(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", models.MoneyRequestStatusPending)
	code := f.seedPayerOtp()

	req, err := f.svc.Accept(context.Background(), f.payer.ID, seed.ID, code)
	require.NoError(t, err)
	assert.Equal(t, models.MoneyRequestStatusAccepted, req.Status)
	assert.NotEmpty(t, req.Reference)

	assert.True(t, f.store.Wallet(f.payerW.ID).Balance.Equal(decimal.RequireFromString("425.00")))
	assert.True(t, f.store.Wallet(f.requesterW.ID).Balance.Equal(decimal.RequireFromString("75.00")))

	entries := f.store.Journal()
	require.Len(t, entries, 2)
	sum := decimal.Zero
	for _, e := range entries {
		assert.Equal(t, req.Reference, e.Reference)
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.IsZero())

	assert.False(t, f.store.OtpLive(f.payer.ID, code, models.OtpPurposeTransfer))
}

func TestAcceptRequiresPayer(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", models.MoneyRequestStatusPending)

	// the requester cannot settle their own request
	_, err := f.svc.Accept(context.Background(), f.requester.ID, seed.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAcceptAlreadyProcessed(t *testing.T) {
	f := newRequestFixture(t)
	for _, status := range []string{models.MoneyRequestStatusAccepted, models.MoneyRequestStatusRejected} {
		seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", status)
		code := f.seedPayerOtp()

		_, err := f.svc.Accept(context.Background(), f.payer.ID, seed.ID, code)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed, status)

		// status untouched, no money moved
		assert.Equal(t, status, f.store.Request(seed.ID).Status)
		assert.True(t, f.store.Wallet(f.payerW.ID).Balance.Equal(decimal.RequireFromString("500.00")))
	}
}

func TestAcceptTwiceSettlesOnce(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", models.MoneyRequestStatusPending)
	code := f.seedPayerOtp()

	_, err := f.svc.Accept(context.Background(), f.payer.ID, seed.ID, code)
	require.NoError(t, err)

	f.seedPayerOtp()
	_, err = f.svc.Accept(context.Background(), f.payer.ID, seed.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	// settled exactly once
	assert.True(t, f.store.Wallet(f.requesterW.ID).Balance.Equal(decimal.RequireFromString("75.00")))
}

func TestAcceptInsufficientPayerBalance(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "500.01", "EGP", models.MoneyRequestStatusPending)
	code := f.seedPayerOtp()

	_, err := f.svc.Accept(context.Background(), f.payer.ID, seed.ID, code)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// request stays pending so the payer can retry after topping up
	assert.Equal(t, models.MoneyRequestStatusPending, f.store.Request(seed.ID).Status)
	assert.True(t, f.store.OtpLive(f.payer.ID, code, models.OtpPurposeTransfer))
}

func TestAcceptRequiresOtp(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", models.MoneyRequestStatusPending)

	_, err := f.svc.Accept(context.Background(), f.payer.ID, seed.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)
	assert.Equal(t, models.MoneyRequestStatusPending, f.store.Request(seed.ID).Status)
}

func TestRejectMovesNoMoney(t *testing.T) {
	f := newRequestFixture(t)
	seed := f.store.SeedRequest(f.requester.ID, f.payer.ID, "75.00", "EGP", models.MoneyRequestStatusPending)

	req, err := f.svc.Reject(context.Background(), f.payer.ID, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MoneyRequestStatusRejected, req.Status)

	assert.True(t, f.store.Wallet(f.payerW.ID).Balance.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, f.store.Wallet(f.requesterW.ID).Balance.IsZero())
	assert.Empty(t, f.store.Journal())
}

func TestListSentAndReceived(t *testing.T) {
	f := newRequestFixture(t)
	f.store.SeedRequest(f.requester.ID, f.payer.ID, "10.00", "EGP", models.MoneyRequestStatusPending)
	f.store.SeedRequest(f.payer.ID, f.requester.ID, "20.00", "EGP", models.MoneyRequestStatusPending)

	sent, err := f.svc.ListSent(context.Background(), f.requester.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.True(t, sent[0].Amount.Equal(decimal.RequireFromString("10.00")))

	received, err := f.svc.ListReceived(context.Background(), f.requester.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.True(t, received[0].Amount.Equal(decimal.RequireFromString("20.00")))
}
