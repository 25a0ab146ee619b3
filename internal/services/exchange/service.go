// Package exchange converts money between two wallets of the same user.
// Rates resolve cache-first, then the local rate table, then the live
// provider; the conversion itself debits the source wallet for the amount
// plus fee and credits the target wallet in one transaction.
package exchange

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/money"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/wallet"
	"mahfaza/internal/validation"
)

// Service converts between currencies.
type Service interface {
	Exchange(ctx context.Context, userID uint, input ExchangeInput) (*models.CurrencyExchange, error)

	// GetRate resolves a conversion rate without moving money.
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)

	// RefreshRates pulls all rates for a base currency from the live
	// provider into the local table.
	RefreshRates(ctx context.Context, base string) error

	History(ctx context.Context, userID uint, limit, offset int) ([]*models.CurrencyExchange, error)
}

type service struct {
	txm    repositories.Manager
	ledger wallet.Service
	source RateSource
	cache  RateCache
	cfg    Config
}

// NewService creates the exchange service.
func NewService(txm repositories.Manager, ledger wallet.Service, source RateSource, cache RateCache, cfg Config) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if cache == nil {
		cache = NoopRateCache{}
	}
	if cfg.FeeBps <= 0 {
		cfg.FeeBps = defaultFeeBps
	}
	if cfg.RateTTL <= 0 {
		cfg.RateTTL = defaultRateTTL
	}
	return &service{txm: txm, ledger: ledger, source: source, cache: cache, cfg: cfg}
}

func (s *service) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if err := validation.Currency(from); err != nil {
		return decimal.Zero, err
	}
	if err := validation.Currency(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	if rate, found, err := s.cache.GetRate(ctx, from, to); err == nil && found {
		return rate, nil
	}

	if row, err := s.txm.Repos().Rates.GetRate(from, to); err == nil {
		s.cacheRate(ctx, from, to, row.Rate)
		return row.Rate, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	if s.source == nil {
		return decimal.Zero, domain.ErrRateUnavailable
	}
	rate, err := s.source.GetRate(ctx, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			return decimal.Zero, err
		}
		return decimal.Zero, domain.ErrRateUnavailable
	}

	if err := s.txm.Repos().Rates.Upsert(from, to, rate); err != nil {
		log.Printf("rate upsert failed for %s/%s: %v", from, to, err)
	}
	s.cacheRate(ctx, from, to, rate)
	return rate, nil
}

func (s *service) cacheRate(ctx context.Context, from, to string, rate decimal.Decimal) {
	if err := s.cache.SetRate(ctx, from, to, rate, s.cfg.RateTTL); err != nil {
		log.Printf("rate cache write failed for %s/%s: %v", from, to, err)
	}
}

func (s *service) Exchange(ctx context.Context, userID uint, input ExchangeInput) (*models.CurrencyExchange, error) {
	if err := validation.Amount(input.Amount); err != nil {
		return nil, err
	}
	if input.FromWalletID == input.ToWalletID {
		return nil, domain.ErrSameCurrencyExchange
	}

	// resolve wallets up front to learn the currency pair; ownership and
	// balances are re-checked under lock inside the transaction
	uow := s.txm.Repos()
	from, err := uow.Wallets.GetByID(input.FromWalletID)
	if err != nil {
		return nil, err
	}
	if from.UserID != userID {
		return nil, domain.ErrWalletNotFound
	}
	to, err := uow.Wallets.GetByID(input.ToWalletID)
	if err != nil {
		return nil, err
	}
	if to.UserID != userID {
		return nil, domain.ErrCrossUserExchange
	}
	if from.Currency == to.Currency {
		return nil, domain.ErrSameCurrencyExchange
	}

	// the live provider is consulted before the transaction opens
	rate, err := s.GetRate(ctx, from.Currency, to.Currency)
	if err != nil {
		return nil, err
	}

	fee := money.Round2(input.Amount.Mul(decimal.NewFromInt(s.cfg.FeeBps)).Div(decimal.NewFromInt(10000)))
	converted := money.Round2(input.Amount.Mul(rate))
	if converted.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var record *models.CurrencyExchange
	err = s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		fromW, toW, err := s.ledger.LockPair(uow, input.FromWalletID, input.ToWalletID)
		if err != nil {
			return err
		}
		if fromW.UserID != userID || toW.UserID != userID {
			return domain.ErrCrossUserExchange
		}

		reference := uuid.NewString()
		meta := models.NewJSON(map[string]interface{}{
			"rate": rate.String(),
			"fee":  fee.String(),
		})

		if _, err := s.ledger.Debit(ctx, uow, fromW.ID, input.Amount.Add(fee), wallet.Entry{
			Type:      models.TransactionTypeExchange,
			Reference: reference,
			Metadata:  meta,
		}); err != nil {
			return err
		}
		if _, err := s.ledger.Credit(ctx, uow, toW.ID, converted, wallet.Entry{
			Type:      models.TransactionTypeExchange,
			Reference: reference,
			Metadata:  meta,
		}); err != nil {
			return err
		}

		record = &models.CurrencyExchange{
			UserID:       userID,
			FromWalletID: fromW.ID,
			ToWalletID:   toW.ID,
			FromAmount:   input.Amount,
			FromCurrency: fromW.Currency,
			ToAmount:     converted,
			ToCurrency:   toW.Currency,
			Rate:         rate,
			Fee:          fee,
			Status:       models.TransactionStatusSuccess,
			Reference:    reference,
		}
		return uow.Exchanges.Create(record)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, input.FromWalletID, input.ToWalletID)
	return record, nil
}

func (s *service) RefreshRates(ctx context.Context, base string) error {
	if err := validation.Currency(base); err != nil {
		return err
	}
	if s.source == nil {
		return domain.ErrRateUnavailable
	}
	rates, err := s.source.GetAllRates(ctx, base)
	if err != nil {
		return domain.ErrRateUnavailable
	}

	uow := s.txm.Repos()
	for code, rate := range rates {
		if code == base || rate.Sign() <= 0 {
			continue
		}
		if err := uow.Rates.Upsert(base, code, rate); err != nil {
			return err
		}
		s.cacheRate(ctx, base, code, rate)
	}
	return nil
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]*models.CurrencyExchange, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txm.Repos().Exchanges.ListByUser(userID, limit, offset)
}
