package wallet

import (
	"context"
	"errors"

	"mahfaza/internal/models"
)

// Entry describes the journal row written alongside a balance change.
// Reference links the entries produced by one operation; Metadata carries
// operation-specific detail for audit queries.
type Entry struct {
	Type        string
	Description string
	Reference   string
	Metadata    models.JSON
}

// CacheOperator is the slice of the cache layer the ledger needs. Reads go
// cache-first; every committed balance change invalidates the wallet key.
type CacheOperator interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletIDs ...uint) error
}

var errCacheMiss = errors.New("cache miss")

// NoopCache satisfies CacheOperator without a backing store, for tests and
// for running without Redis.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, errCacheMiss
}
func (NoopCache) SetWallet(context.Context, *models.Wallet) error { return nil }
func (NoopCache) InvalidateWallet(context.Context, ...uint) error { return nil }
