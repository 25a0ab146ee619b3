// Package request implements peer money requests: one user asks another to
// pay them. Settlement is the only money movement; it reuses the transfer
// path (OTP gate, pair lock, debit and credit under one transaction) with
// the payer as sender. A request leaves pending exactly once.
package request

import (
	"context"
	"errors"

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

// CreateInput asks payer (named by phone or email) for an amount.
type CreateInput struct {
	Payer    string
	Amount   decimal.Decimal
	Currency string
}

// Service creates and settles money requests.
type Service interface {
	Create(ctx context.Context, requesterID uint, input CreateInput) (*models.MoneyRequest, error)

	// Accept pays a pending request from the payer's wallet in the
	// request currency. OTP-gated.
	Accept(ctx context.Context, payerID, requestID uint, otpCode string) (*models.MoneyRequest, error)

	// Reject closes a pending request without moving money.
	Reject(ctx context.Context, payerID, requestID uint) (*models.MoneyRequest, error)

	ListSent(ctx context.Context, userID uint) ([]*models.MoneyRequest, error)
	ListReceived(ctx context.Context, userID uint) ([]*models.MoneyRequest, error)
}

type service struct {
	txm      repositories.Manager
	ledger   wallet.Service
	otps     otp.Service
	notifier Notifier
}

// NewService creates the money request service.
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

func (s *service) Create(ctx context.Context, requesterID uint, input CreateInput) (*models.MoneyRequest, error) {
	if err := validation.Amount(input.Amount); err != nil {
		return nil, err
	}
	if err := validation.Currency(input.Currency); err != nil {
		return nil, err
	}
	if err := validation.Identifier(input.Payer); err != nil {
		return nil, err
	}

	var req *models.MoneyRequest
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		payer, err := resolveUser(uow, input.Payer)
		if err != nil {
			return err
		}
		if payer.ID == requesterID {
			return domain.ErrSelfOperation
		}

		req = &models.MoneyRequest{
			FromUserID: requesterID,
			ToUserID:   payer.ID,
			Amount:     input.Amount,
			Currency:   input.Currency,
			Status:     models.MoneyRequestStatusPending,
		}
		return uow.Requests.Create(req)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, req.ToUserID, "Money requested from you", req.Amount, req.Currency)
	}
	return req, nil
}

func (s *service) Accept(ctx context.Context, payerID, requestID uint, otpCode string) (*models.MoneyRequest, error) {
	var (
		req         *models.MoneyRequest
		payerWallet uint
		reqWallet   uint
	)
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		var err error
		// the row lock serializes concurrent settlement attempts
		req, err = uow.Requests.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req.ToUserID != payerID {
			return domain.ErrUnauthorized
		}
		if req.Status != models.MoneyRequestStatusPending {
			return domain.ErrAlreadyProcessed
		}

		payer, err := uow.Users.GetByID(payerID)
		if err != nil {
			return err
		}
		if !payer.CanTransact() {
			return domain.ErrUserSuspended
		}

		handle, err := s.otps.Validate(ctx, uow, payerID, otpCode, models.OtpPurposeTransfer)
		if err != nil {
			return err
		}

		fromWallet, err := uow.Wallets.GetByUserAndCurrency(payerID, req.Currency)
		if err != nil {
			return err
		}
		toWallet, err := uow.Wallets.GetByUserAndCurrency(req.FromUserID, req.Currency)
		if err != nil {
			if errors.Is(err, domain.ErrWalletNotFound) {
				return domain.ErrReceiverWalletMissing
			}
			return err
		}

		if _, _, err := s.ledger.LockPair(uow, fromWallet.ID, toWallet.ID); err != nil {
			return err
		}

		reference := uuid.NewString()
		meta := models.NewJSON(map[string]interface{}{
			"money_request_id": req.ID,
		})
		if _, err := s.ledger.Debit(ctx, uow, fromWallet.ID, req.Amount, wallet.Entry{
			Type:      models.TransactionTypeTransfer,
			Reference: reference,
			Metadata:  meta,
		}); err != nil {
			return err
		}
		if _, err := s.ledger.Credit(ctx, uow, toWallet.ID, req.Amount, wallet.Entry{
			Type:      models.TransactionTypeTransfer,
			Reference: reference,
			Metadata:  meta,
		}); err != nil {
			return err
		}

		req.Status = models.MoneyRequestStatusAccepted
		req.Reference = reference
		if err := uow.Requests.Update(req); err != nil {
			return err
		}

		payerWallet, reqWallet = fromWallet.ID, toWallet.ID
		return s.otps.Consume(ctx, uow, handle)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, payerWallet, reqWallet)
	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, req.FromUserID, "Money request paid", req.Amount, req.Currency)
		s.notifier.NotifyTransaction(ctx, req.ToUserID, "Money request accepted", req.Amount, req.Currency)
	}
	return req, nil
}

func (s *service) Reject(ctx context.Context, payerID, requestID uint) (*models.MoneyRequest, error) {
	var req *models.MoneyRequest
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		var err error
		req, err = uow.Requests.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req.ToUserID != payerID {
			return domain.ErrUnauthorized
		}
		if req.Status != models.MoneyRequestStatusPending {
			return domain.ErrAlreadyProcessed
		}

		req.Status = models.MoneyRequestStatusRejected
		return uow.Requests.Update(req)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, req.FromUserID, "Money request rejected", req.Amount, req.Currency)
	}
	return req, nil
}

func (s *service) ListSent(ctx context.Context, userID uint) ([]*models.MoneyRequest, error) {
	return s.txm.Repos().Requests.ListSent(userID)
}

func (s *service) ListReceived(ctx context.Context, userID uint) ([]*models.MoneyRequest, error) {
	return s.txm.Repos().Requests.ListReceived(userID)
}

func resolveUser(uow *repositories.UnitOfWork, identifier string) (*models.User, error) {
	if validation.IsEmail(identifier) {
		return uow.Users.GetByEmail(identifier)
	}
	return uow.Users.GetByPhone(identifier)
}
