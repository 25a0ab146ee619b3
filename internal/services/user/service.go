// Package user handles registration and profile reads. Registration
// provisions the user, their default-currency wallet, and their simulated
// bank account in one transaction.
package user

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/bank"
	"mahfaza/internal/services/wallet"
	"mahfaza/internal/validation"
)

// RegisterInput creates a new user account.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
}

// RegisterResult is everything provisioned at signup.
type RegisterResult struct {
	User    *models.User
	Wallet  *models.Wallet
	Account *models.BankAccount
}

// Service manages user accounts.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
}

type service struct {
	txm    repositories.Manager
	ledger wallet.Service
	banks  bank.Service

	// openingBankBalance funds the simulated bank account so new users
	// can deposit immediately.
	openingBankBalance decimal.Decimal
}

// NewService creates the user service.
func NewService(txm repositories.Manager, ledger wallet.Service, banks bank.Service) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if banks == nil {
		panic("bank service is required")
	}
	return &service{
		txm:                txm,
		ledger:             ledger,
		banks:              banks,
		openingBankBalance: decimal.NewFromInt(10000),
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Identifier(input.Email); err != nil {
		return nil, err
	}
	if err := validation.Identifier(input.Phone); err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	result := &RegisterResult{}
	err = s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		user := &models.User{
			Email:    input.Email,
			Phone:    input.Phone,
			Password: string(hashed),
			FullName: input.FullName,
			Role:     "user",
			Status:   models.UserStatusActive,
		}
		if err := uow.Users.Create(user); err != nil {
			return err
		}

		w, err := s.ledger.Create(ctx, uow, user.ID, models.DefaultCurrency)
		if err != nil {
			return err
		}

		account, err := s.banks.OpenAccount(ctx, uow, user.ID, s.openingBankBalance)
		if err != nil {
			return err
		}

		result.User = user
		result.Wallet = w
		result.Account = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.txm.Repos().Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}
