// Package transfer orchestrates peer-to-peer money movement between two
// users' wallets. The balance check, both balance writes, the journal
// entries, the transfer record, and the OTP consumption all happen in one
// database transaction; notifications and cache invalidation run only
// after it commits.
package transfer

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

// SendMoneyInput is a transfer request from the sender's point of view.
// Receiver names the counterparty by phone number or email address.
type SendMoneyInput struct {
	SenderWalletID uint
	Receiver       string
	Amount         decimal.Decimal
	Description    string
	OtpCode        string
}

// Service sends money between users.
type Service interface {
	SendMoney(ctx context.Context, senderUserID uint, input SendMoneyInput) (*models.Transfer, error)
	History(ctx context.Context, userID, walletID uint, limit, offset int) ([]*models.Transfer, error)
}

type service struct {
	txm      repositories.Manager
	ledger   wallet.Service
	otps     otp.Service
	notifier Notifier
}

// NewService creates the transfer service.
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

func (s *service) SendMoney(ctx context.Context, senderUserID uint, input SendMoneyInput) (*models.Transfer, error) {
	if err := validation.Amount(input.Amount); err != nil {
		return nil, err
	}
	if err := validation.Identifier(input.Receiver); err != nil {
		return nil, err
	}

	var (
		transfer *models.Transfer
		sender   *models.User
		receiver *models.User
	)
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		senderWallet, err := uow.Wallets.GetByID(input.SenderWalletID)
		if err != nil {
			return err
		}
		if senderWallet.UserID != senderUserID {
			return domain.ErrWalletNotFound
		}

		sender, err = uow.Users.GetByID(senderUserID)
		if err != nil {
			return err
		}
		if !sender.CanTransact() {
			return domain.ErrUserSuspended
		}

		handle, err := s.otps.Validate(ctx, uow, senderUserID, input.OtpCode, models.OtpPurposeTransfer)
		if err != nil {
			return err
		}

		receiver, err = resolveUser(uow, input.Receiver)
		if err != nil {
			return err
		}
		if receiver.ID == senderUserID {
			return domain.ErrSelfOperation
		}
		if !receiver.CanTransact() {
			return domain.ErrUserSuspended
		}

		receiverWallet, err := uow.Wallets.GetByUserAndCurrency(receiver.ID, senderWallet.Currency)
		if err != nil {
			if errors.Is(err, domain.ErrWalletNotFound) {
				return domain.ErrReceiverWalletMissing
			}
			return err
		}

		if _, _, err := s.ledger.LockPair(uow, senderWallet.ID, receiverWallet.ID); err != nil {
			return err
		}

		reference := uuid.NewString()
		meta := models.NewJSON(map[string]interface{}{
			"sender_user_id":   sender.ID,
			"receiver_user_id": receiver.ID,
		})

		if _, err := s.ledger.Debit(ctx, uow, senderWallet.ID, input.Amount, wallet.Entry{
			Type:        models.TransactionTypeTransfer,
			Description: input.Description,
			Reference:   reference,
			Metadata:    meta,
		}); err != nil {
			return err
		}
		if _, err := s.ledger.Credit(ctx, uow, receiverWallet.ID, input.Amount, wallet.Entry{
			Type:        models.TransactionTypeTransfer,
			Description: input.Description,
			Reference:   reference,
			Metadata:    meta,
		}); err != nil {
			return err
		}

		transfer = &models.Transfer{
			SenderWalletID:   senderWallet.ID,
			ReceiverWalletID: receiverWallet.ID,
			Amount:           input.Amount,
			Currency:         senderWallet.Currency,
			Status:           models.TransactionStatusSuccess,
			Reference:        reference,
			Description:      input.Description,
		}
		if err := uow.Transfers.Create(transfer); err != nil {
			return err
		}

		return s.otps.Consume(ctx, uow, handle)
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Invalidate(ctx, transfer.SenderWalletID, transfer.ReceiverWalletID)
	if s.notifier != nil {
		s.notifier.NotifyTransaction(ctx, sender.ID, "Money sent", input.Amount, transfer.Currency)
		s.notifier.NotifyTransaction(ctx, receiver.ID, "Money received", input.Amount, transfer.Currency)
	}
	return transfer, nil
}

func (s *service) History(ctx context.Context, userID, walletID uint, limit, offset int) ([]*models.Transfer, error) {
	uow := s.txm.Repos()
	w, err := uow.Wallets.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, domain.ErrWalletNotFound
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uow.Transfers.ListByWallet(walletID, limit, offset)
}

// resolveUser finds a user by phone number or email address.
func resolveUser(uow *repositories.UnitOfWork, identifier string) (*models.User, error) {
	if validation.IsEmail(identifier) {
		return uow.Users.GetByEmail(identifier)
	}
	return uow.Users.GetByPhone(identifier)
}
