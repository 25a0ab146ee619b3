// Package otp implements the single-use passcode store that gates
// sensitive money movement. Codes are numeric, time-limited, and bound to
// one user and one purpose; validating a code never consumes it, so an
// operation can check the code up front and burn it only once its own
// writes are committing.
package otp

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
	"mahfaza/internal/utils"
	"mahfaza/internal/validation"
)

const (
	defaultCodeLength = 6
	defaultTTL        = 5 * time.Minute
)

// Handle is a validated passcode awaiting consumption. It is returned by
// Validate and accepted by Consume so callers cannot consume a code they
// never validated.
type Handle struct {
	id       uint
	consumed bool
}

// Service issues, validates, and consumes one-time passcodes.
type Service interface {
	// Issue creates a fresh code for (user, purpose), invalidating any
	// earlier unused codes for the same pair.
	Issue(ctx context.Context, uow *repositories.UnitOfWork, userID uint, purpose string) (*models.OtpCode, error)

	// Validate checks a code without consuming it. Wrong, expired, used,
	// and wrong-purpose codes all fail with the same error.
	Validate(ctx context.Context, uow *repositories.UnitOfWork, userID uint, code, purpose string) (*Handle, error)

	// Consume marks a validated code as used. Consuming the same handle
	// twice is a no-op.
	Consume(ctx context.Context, uow *repositories.UnitOfWork, h *Handle) error

	// PurgeExpired deletes codes past their expiry. Expired codes are
	// already unusable; this trims the dead rows.
	PurgeExpired(ctx context.Context, uow *repositories.UnitOfWork) error
}

type service struct {
	rand       io.Reader
	ttl        time.Duration
	codeLength int
	now        func() time.Time
}

// NewService creates an OTP service drawing randomness from rand.
// Pass crypto/rand.Reader in production.
func NewService(rand io.Reader, ttl time.Duration) Service {
	if rand == nil {
		panic("random source is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &service{
		rand:       rand,
		ttl:        ttl,
		codeLength: defaultCodeLength,
		now:        time.Now,
	}
}

func (s *service) Issue(ctx context.Context, uow *repositories.UnitOfWork, userID uint, purpose string) (*models.OtpCode, error) {
	code, err := utils.RandomDigits(s.rand, s.codeLength)
	if err != nil {
		return nil, err
	}

	// One live code per (user, purpose): issuing replaces, never stacks.
	if err := uow.Otps.InvalidateActive(userID, purpose); err != nil {
		return nil, err
	}

	otp := &models.OtpCode{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := uow.Otps.Create(otp); err != nil {
		return nil, err
	}
	return otp, nil
}

func (s *service) Validate(ctx context.Context, uow *repositories.UnitOfWork, userID uint, code, purpose string) (*Handle, error) {
	if err := validation.OtpCode(code); err != nil {
		return nil, err
	}

	otp, err := uow.Otps.GetValid(userID, code, purpose, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOtp
		}
		return nil, err
	}
	return &Handle{id: otp.ID}, nil
}

func (s *service) Consume(ctx context.Context, uow *repositories.UnitOfWork, h *Handle) error {
	if h == nil {
		return domain.ErrInvalidOtp
	}
	if h.consumed {
		return nil
	}
	if err := uow.Otps.MarkUsed(h.id); err != nil {
		return err
	}
	h.consumed = true
	return nil
}

func (s *service) PurgeExpired(ctx context.Context, uow *repositories.UnitOfWork) error {
	return uow.Otps.DeleteExpired(s.now())
}
