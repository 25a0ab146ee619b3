// Package cache provides the Redis-backed cache-aside layer used for
// wallet reads and exchange rate lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"mahfaza/internal/models"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheService creates a cache service with a default TTL.
func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{client: client, ttl: defaultTTL}
}

// Set stores value as JSON under key with the default TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL stores value as JSON under key with an explicit TTL.
func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get loads key into dest. The bool result reports whether the key existed.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// Delete removes keys.
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Wallet caching

func walletKey(walletID uint) string {
	return fmt.Sprintf("wallet:%d", walletID)
}

func (s *CacheService) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, walletKey(walletID), &wallet)
	if err != nil || !found {
		return nil, redis.Nil
	}
	return &wallet, nil
}

func (s *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.Set(ctx, walletKey(wallet.ID), wallet)
}

func (s *CacheService) InvalidateWallet(ctx context.Context, walletIDs ...uint) error {
	keys := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		keys = append(keys, walletKey(id))
	}
	return s.Delete(ctx, keys...)
}

// Exchange rate caching

func rateKey(from, to string) string {
	return fmt.Sprintf("rate:%s:%s", from, to)
}

func (s *CacheService) GetRate(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	var raw string
	found, err := s.Get(ctx, rateKey(from, to), &raw)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

func (s *CacheService) SetRate(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error {
	return s.SetWithTTL(ctx, rateKey(from, to), rate.String(), ttl)
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *CacheService) Close() error {
	return s.client.Close()
}
