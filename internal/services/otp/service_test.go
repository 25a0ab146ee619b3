package otp

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
)

type fakeOtpRepo struct {
	mu     sync.Mutex
	nextID uint
	codes  []*models.OtpCode
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{nextID: 1}
}

func (r *fakeOtpRepo) Create(otp *models.OtpCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp.ID = r.nextID
	r.nextID++
	cp := *otp
	r.codes = append(r.codes, &cp)
	return nil
}

func (r *fakeOtpRepo) GetValid(userID uint, code, purpose string, now time.Time) (*models.OtpCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.UserID == userID && c.Code == code && c.Purpose == purpose && !c.IsUsed && c.ExpiresAt.After(now) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOtpRepo) MarkUsed(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == id {
			c.IsUsed = true
		}
	}
	return nil
}

func (r *fakeOtpRepo) InvalidateActive(userID uint, purpose string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.UserID == userID && c.Purpose == purpose && !c.IsUsed {
			c.IsUsed = true
		}
	}
	return nil
}

func (r *fakeOtpRepo) DeleteExpired(before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.codes[:0]
	for _, c := range r.codes {
		if !c.ExpiresAt.Before(before) {
			kept = append(kept, c)
		}
	}
	r.codes = kept
	return nil
}

func newTestService(t *testing.T) (Service, *fakeOtpRepo, *repositories.UnitOfWork) {
	t.Helper()
	repo := newFakeOtpRepo()
	uow := &repositories.UnitOfWork{Otps: repo}
	// zero bytes give a deterministic code of "000000"
	svc := NewService(bytes.NewReader(make([]byte, 64)), 5*time.Minute)
	return svc, repo, uow
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	svc, _, uow := newTestService(t)

	otp, err := svc.Issue(context.Background(), uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)
	assert.Len(t, otp.Code, 6)
	assert.Equal(t, "000000", otp.Code)
	assert.True(t, otp.ExpiresAt.After(time.Now()))
}

func TestIssueInvalidatesEarlierCodes(t *testing.T) {
	repo := newFakeOtpRepo()
	uow := &repositories.UnitOfWork{Otps: repo}
	// two distinct draws: "000001" then "000002"
	svc := NewService(bytes.NewReader([]byte{
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 0, 0, 2,
	}), 5*time.Minute)
	ctx := context.Background()

	first, err := svc.Issue(ctx, uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)

	_, err = svc.Validate(ctx, uow, 1, first.Code, models.OtpPurposeTransfer)
	assert.ErrorIs(t, err, domain.ErrInvalidOtp, "issuing again must retire the old code")

	h, err := svc.Validate(ctx, uow, 1, second.Code, models.OtpPurposeTransfer)
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestPurgeExpiredDropsOnlyDeadCodes(t *testing.T) {
	svc, repo, uow := newTestService(t)
	ctx := context.Background()

	stale, err := svc.Issue(ctx, uow, 1, models.OtpPurposeLogin)
	require.NoError(t, err)
	live, err := svc.Issue(ctx, uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)

	repo.mu.Lock()
	for _, c := range repo.codes {
		if c.ID == stale.ID {
			c.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
	repo.mu.Unlock()

	require.NoError(t, svc.PurgeExpired(ctx, uow))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.codes, 1)
	assert.Equal(t, live.ID, repo.codes[0].ID)
}

func TestValidateDoesNotConsume(t *testing.T) {
	svc, _, uow := newTestService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, uow, 1, otp.Code, models.OtpPurposeTransfer)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, uow, 1, otp.Code, models.OtpPurposeTransfer)
	assert.NoError(t, err, "validation alone must leave the code live")
}

func TestConsumeBurnsCode(t *testing.T) {
	svc, _, uow := newTestService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, uow, 1, models.OtpPurposeTransfer)
	require.NoError(t, err)

	h, err := svc.Validate(ctx, uow, 1, otp.Code, models.OtpPurposeTransfer)
	require.NoError(t, err)
	require.NoError(t, svc.Consume(ctx, uow, h))

	_, err = svc.Validate(ctx, uow, 1, otp.Code, models.OtpPurposeTransfer)
	assert.ErrorIs(t, err, domain.ErrInvalidOtp)

	// consuming the same handle again is a no-op
	assert.NoError(t, svc.Consume(ctx, uow, h))
}

func TestValidateRejections(t *testing.T) {
	svc, repo, uow := newTestService(t)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, uow, 7, models.OtpPurposeTransfer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uint
		code    string
		purpose string
	}{
		{"wrong code", 7, "999999", models.OtpPurposeTransfer},
		{"wrong user", 8, otp.Code, models.OtpPurposeTransfer},
		{"wrong purpose", 7, otp.Code, models.OtpPurposeLogin},
		{"malformed code", 7, "12345", models.OtpPurposeTransfer},
		{"non numeric", 7, "abcdef", models.OtpPurposeTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(ctx, uow, tt.userID, tt.code, tt.purpose)
			assert.ErrorIs(t, err, domain.ErrInvalidOtp)
		})
	}

	t.Run("expired code", func(t *testing.T) {
		repo.mu.Lock()
		for _, c := range repo.codes {
			c.ExpiresAt = time.Now().Add(-time.Minute)
		}
		repo.mu.Unlock()
		_, err := svc.Validate(ctx, uow, 7, otp.Code, models.OtpPurposeTransfer)
		assert.ErrorIs(t, err, domain.ErrInvalidOtp)
	})
}
