// Package bank moves money between a user's wallet and their simulated
// external bank account. The bank account lives in the same database, so a
// deposit or withdrawal is one transaction touching both balances; there
// is no external settlement to reconcile.
package bank

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/wallet"
	"mahfaza/internal/utils"
	"mahfaza/internal/validation"
)

// Bank transaction types
const (
	BankTransactionDeposit  = "deposit"
	BankTransactionWithdraw = "withdraw"
)

// Notifier is the post-commit notification sink.
type Notifier interface {
	NotifyTransaction(ctx context.Context, userID uint, title string, amount decimal.Decimal, currency string)
}

// Service moves money across the wallet / bank boundary.
type Service interface {
	// OpenAccount provisions the user's bank account with a generated
	// account number and a starting balance.
	OpenAccount(ctx context.Context, uow *repositories.UnitOfWork, userID uint, openingBalance decimal.Decimal) (*models.BankAccount, error)

	// Deposit moves amount from the bank account into a wallet.
	Deposit(ctx context.Context, userID, walletID uint, amount decimal.Decimal) (*models.BankTransaction, error)

	// Withdraw moves amount from a wallet back to the bank account.
	Withdraw(ctx context.Context, userID, walletID uint, amount decimal.Decimal) (*models.BankTransaction, error)

	GetAccount(ctx context.Context, userID uint) (*models.BankAccount, error)
}

type service struct {
	txm      repositories.Manager
	ledger   wallet.Service
	rand     io.Reader
	notifier Notifier
}

// NewService creates the bank service. rand feeds account number
// generation; pass crypto/rand.Reader in production.
func NewService(txm repositories.Manager, ledger wallet.Service, rand io.Reader, notifier Notifier) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if rand == nil {
		panic("random source is required")
	}
	return &service{txm: txm, ledger: ledger, rand: rand, notifier: notifier}
}

func (s *service) OpenAccount(ctx context.Context, uow *repositories.UnitOfWork, userID uint, openingBalance decimal.Decimal) (*models.BankAccount, error) {
	number, err := utils.RandomAccountNumber(s.rand)
	if err != nil {
		return nil, err
	}
	account := &models.BankAccount{
		UserID:        userID,
		AccountNumber: number,
		Balance:       openingBalance,
	}
	if err := uow.Bank.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Deposit(ctx context.Context, userID, walletID uint, amount decimal.Decimal) (*models.BankTransaction, error) {
	if err := validation.Amount(amount); err != nil {
		return nil, err
	}

	var (
		record   *models.BankTransaction
		currency string
	)
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		// wallet row first, bank row second, always in this order
		w, err := s.ledger.Lock(uow, walletID)
		if err != nil {
			return err
		}
		if w.UserID != userID {
			return domain.ErrWalletNotFound
		}
		// the bank settles in EGP only
		if w.Currency != models.DefaultCurrency {
			return domain.ErrInvalidCurrency
		}
		currency = w.Currency

		account, err := uow.Bank.GetAccountByUserForUpdate(userID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}

		if err := uow.Bank.UpdateAccountBalance(account.ID, account.Balance.Sub(amount)); err != nil {
			return err
		}

		reference := uuid.NewString()
		if _, err := s.ledger.Credit(ctx, uow, walletID, amount, wallet.Entry{
			Type:        models.TransactionTypeDeposit,
			Description: "Deposit from bank account",
			Reference:   reference,
			Metadata: models.NewJSON(map[string]interface{}{
				"bank_account": account.AccountNumber,
			}),
		}); err != nil {
			return err
		}

		record = &models.BankTransaction{
			UserID:    userID,
			Amount:    amount,
			Type:      BankTransactionDeposit,
			Status:    models.TransactionStatusSuccess,
			Reference: reference,
		}
		return uow.Bank.CreateTransaction(record)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, walletID)
	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, userID, "Deposit completed", amount, currency)
	}
	return record, nil
}

func (s *service) Withdraw(ctx context.Context, userID, walletID uint, amount decimal.Decimal) (*models.BankTransaction, error) {
	if err := validation.Amount(amount); err != nil {
		return nil, err
	}

	var (
		record   *models.BankTransaction
		currency string
	)
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		w, err := s.ledger.Lock(uow, walletID)
		if err != nil {
			return err
		}
		if w.UserID != userID {
			return domain.ErrWalletNotFound
		}
		// the bank settles in EGP only
		if w.Currency != models.DefaultCurrency {
			return domain.ErrInvalidCurrency
		}
		currency = w.Currency

		account, err := uow.Bank.GetAccountByUserForUpdate(userID)
		if err != nil {
			return err
		}

		reference := uuid.NewString()
		if _, err := s.ledger.Debit(ctx, uow, walletID, amount, wallet.Entry{
			Type:        models.TransactionTypeWithdraw,
			Description: "Withdrawal to bank account",
			Reference:   reference,
			Metadata: models.NewJSON(map[string]interface{}{
				"bank_account": account.AccountNumber,
			}),
		}); err != nil {
			return err
		}

		if err := uow.Bank.UpdateAccountBalance(account.ID, account.Balance.Add(amount)); err != nil {
			return err
		}

		record = &models.BankTransaction{
			UserID:    userID,
			Amount:    amount,
			Type:      BankTransactionWithdraw,
			Status:    models.TransactionStatusSuccess,
			Reference: reference,
		}
		return uow.Bank.CreateTransaction(record)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, walletID)
	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, userID, "Withdrawal completed", amount, currency)
	}
	return record, nil
}

func (s *service) GetAccount(ctx context.Context, userID uint) (*models.BankAccount, error) {
	return s.txm.Repos().Bank.GetAccountByUser(userID)
}
