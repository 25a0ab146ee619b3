package user

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/repositories/repotest"
	"mahfaza/internal/services/bank"
	"mahfaza/internal/services/wallet"
)

func newUserService(store *repotest.Store) Service {
	ledger := wallet.NewService(wallet.NoopCache{}, wallet.NoopMetricsCollector{})
	banks := bank.NewService(store, ledger, bytes.NewReader(make([]byte, 256)), nil)
	return NewService(store, ledger, banks)
}

func TestRegisterProvisionsEverything(t *testing.T) {
	store := repotest.New()
	svc := newUserService(store)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Phone:    "+201000000001",
		Password: "correct horse",
		FullName: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, models.UserStatusActive, res.User.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.Password), []byte("correct horse")))

	assert.Equal(t, models.DefaultCurrency, res.Wallet.Currency)
	assert.True(t, res.Wallet.Balance.IsZero())

	assert.Regexp(t, `^FBA\d{8}$`, res.Account.AccountNumber)
	assert.NotNil(t, store.BankAccount(res.User.ID))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := repotest.New()
	svc := newUserService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email: "alice@example.com", Phone: "+201000000001", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Email: "alice@example.com", Phone: "+201000000009", Password: "correct horse",
	})
	assert.ErrorIs(t, err, repositories.ErrEmailTaken)
}

func TestRegisterRollsBackOnWalletFailure(t *testing.T) {
	store := repotest.New()
	svc := newUserService(store)
	boom := errors.New("storage failure")
	store.FailOp = func(op string) error {
		if op == "wallet.create" {
			return boom
		}
		return nil
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Phone: "+201000000001", Password: "correct horse",
	})
	require.ErrorIs(t, err, boom)

	// the user row rolled back with the wallet
	store.FailOp = nil
	_, err = store.Repos().Users.GetByEmail("alice@example.com")
	assert.Error(t, err)
}

func TestRegisterWeakPassword(t *testing.T) {
	store := repotest.New()
	svc := newUserService(store)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Phone: "+201000000001", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestGetProfileStripsPassword(t *testing.T) {
	store := repotest.New()
	svc := newUserService(store)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com", Phone: "+201000000001", Password: "correct horse",
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Password)
	assert.Equal(t, "alice@example.com", profile.Email)
}
