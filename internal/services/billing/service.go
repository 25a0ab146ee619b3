// Package billing pays bills from a wallet to a catalog biller. A payment
// is OTP-gated and debits the wallet once, in the same transaction that
// records the payment and burns the code.
package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/otp"
	"mahfaza/internal/services/wallet"
	"mahfaza/internal/validation"
)

// Notifier is the post-commit notification sink.
type Notifier interface {
	NotifyTransaction(ctx context.Context, userID uint, title string, amount decimal.Decimal, currency string)
}

// PayBillInput pays one bill from a wallet.
type PayBillInput struct {
	WalletID uint
	BillerID uint
	Amount   decimal.Decimal
	OtpCode  string
}

// Service pays bills and reads the biller catalog.
type Service interface {
	PayBill(ctx context.Context, userID uint, input PayBillInput) (*models.BillPayment, error)
	ListBillers(ctx context.Context) ([]*models.Biller, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]*models.BillPayment, error)
}

type service struct {
	txm      repositories.Manager
	ledger   wallet.Service
	otps     otp.Service
	notifier Notifier
}

// NewService creates the billing service.
func NewService(txm repositories.Manager, ledger wallet.Service, otps otp.Service, notifier Notifier) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if otps == nil {
		panic("otp service is required")
	}
	return &service{txm: txm, ledger: ledger, otps: otps, notifier: notifier}
}

func (s *service) PayBill(ctx context.Context, userID uint, input PayBillInput) (*models.BillPayment, error) {
	if err := validation.Amount(input.Amount); err != nil {
		return nil, err
	}

	var payment *models.BillPayment
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		w, err := uow.Wallets.GetByID(input.WalletID)
		if err != nil {
			return err
		}
		if w.UserID != userID {
			return domain.ErrWalletNotFound
		}

		user, err := uow.Users.GetByID(userID)
		if err != nil {
			return err
		}
		if !user.CanTransact() {
			return domain.ErrUserSuspended
		}

		handle, err := s.otps.Validate(ctx, uow, userID, input.OtpCode, models.OtpPurposeTransfer)
		if err != nil {
			return err
		}

		biller, err := uow.Billers.GetByID(input.BillerID)
		if err != nil {
			return err
		}
		if !biller.IsActive {
			return domain.ErrBillerUnavailable
		}

		reference := uuid.NewString()
		if _, err := s.ledger.Debit(ctx, uow, w.ID, input.Amount, wallet.Entry{
			Type:        models.TransactionTypeBill,
			Description: biller.Name,
			Reference:   reference,
			Metadata: models.NewJSON(map[string]interface{}{
				"biller_id":   biller.ID,
				"biller_name": biller.Name,
			}),
		}); err != nil {
			return err
		}

		payment = &models.BillPayment{
			UserID:    userID,
			WalletID:  w.ID,
			BillerID:  biller.ID,
			Amount:    input.Amount,
			Currency:  w.Currency,
			Status:    models.TransactionStatusSuccess,
			Reference: reference,
		}
		if err := uow.BillPayments.Create(payment); err != nil {
			return err
		}

		return s.otps.Consume(ctx, uow, handle)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, input.WalletID)
	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, userID, "Bill paid", input.Amount, payment.Currency)
	}
	return payment, nil
}

func (s *service) ListBillers(ctx context.Context) ([]*models.Biller, error) {
	return s.txm.Repos().Billers.ListActive()
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]*models.BillPayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txm.Repos().BillPayments.ListByUser(userID, limit, offset)
}
