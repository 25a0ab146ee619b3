// Package auth implements password + OTP login. A correct password never
// returns tokens directly: it issues a login OTP, and only verifying that
// code yields a token pair.
package auth

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/services/otp"
	"mahfaza/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenRevoked = errors.New("token revoked")

// TokenPair is an access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service authenticates users.
type Service interface {
	// Login checks the password and issues a login OTP. The OTP code is
	// returned for out-of-band delivery, never in the HTTP response.
	Login(ctx context.Context, identifier, password string) (*models.User, *models.OtpCode, error)

	// VerifyOtp consumes a login OTP and mints tokens.
	VerifyOtp(ctx context.Context, userID uint, code string) (*TokenPair, error)

	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Logout revokes all outstanding tokens for the user.
	Logout(ctx context.Context, userID uint) error
}

type service struct {
	txm  repositories.Manager
	otps otp.Service
}

// NewService creates the auth service.
func NewService(txm repositories.Manager, otps otp.Service) Service {
	if txm == nil {
		panic("transaction manager is required")
	}
	if otps == nil {
		panic("otp service is required")
	}
	return &service{txm: txm, otps: otps}
}

func (s *service) Login(ctx context.Context, identifier, password string) (*models.User, *models.OtpCode, error) {
	uow := s.txm.Repos()
	user, err := getUserByIdentifier(uow, identifier)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed for user %d: bad password", user.ID)
		return nil, nil, ErrInvalidCredentials
	}
	if !user.CanTransact() {
		return nil, nil, domain.ErrUserSuspended
	}

	var code *models.OtpCode
	err = s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		var err error
		code, err = s.otps.Issue(ctx, uow, user.ID, models.OtpPurposeLogin)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return user, code, nil
}

func (s *service) VerifyOtp(ctx context.Context, userID uint, code string) (*TokenPair, error) {
	err := s.txm.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		handle, err := s.otps.Validate(ctx, uow, userID, code, models.OtpPurposeLogin)
		if err != nil {
			return err
		}
		return s.otps.Consume(ctx, uow, handle)
	})
	if err != nil {
		return nil, err
	}

	user, err := s.txm.Repos().Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return mintTokens(user)
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.txm.Repos().Users.GetByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return mintTokens(user)
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.txm.Repos().Users.IncrementTokenVersion(userID)
}

func mintTokens(user *models.User) (*TokenPair, error) {
	access, refresh, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func getUserByIdentifier(uow *repositories.UnitOfWork, identifier string) (*models.User, error) {
	if user, err := uow.Users.GetByEmail(identifier); err == nil {
		return user, nil
	}
	return uow.Users.GetByPhone(identifier)
}
