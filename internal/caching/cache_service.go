package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type CacheService interface {
	// Supply caching
	GetSupply(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.Supply, error)
	SetSupply(ctx context.Context, tenantID uuid.UUID, supply *models.Supply, ttl time.Duration) error
	DeleteSupply(ctx context.Context, tenantID, supplyID uuid.UUID) error

	// Stats caching
	GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error)
	SetStats(ctx context.Context, tenantID uuid.UUID, stats *models.SupplyStats, ttl time.Duration) error
	DeleteStats(ctx context.Context, tenantID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Refresh token storage
	SetRefreshToken(ctx context.Context, tokenHash string, userID string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenHash string) (string, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error

	// Rate limiting
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func supplyKey(tenantID, supplyID uuid.UUID) string {
	return fmt.Sprintf("dataclinica:supply:%s:%s", tenantID.String(), supplyID.String())
}

func statsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("dataclinica:stats:%s", tenantID.String())
}

func refreshTokenKey(tokenHash string) string {
	return fmt.Sprintf("dataclinica:refresh:%s", tokenHash)
}

func (r *redisCacheService) GetSupply(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.Supply, error) {
	data, err := r.client.Get(ctx, supplyKey(tenantID, supplyID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var supply models.Supply
	if err := json.Unmarshal(data, &supply); err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *redisCacheService) SetSupply(ctx context.Context, tenantID uuid.UUID, supply *models.Supply, ttl time.Duration) error {
	data, err := json.Marshal(supply)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, supplyKey(tenantID, supply.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteSupply(ctx context.Context, tenantID, supplyID uuid.UUID) error {
	return r.client.Del(ctx, supplyKey(tenantID, supplyID)).Err()
}

func (r *redisCacheService) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	data, err := r.client.Get(ctx, statsKey(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.SupplyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetStats(ctx context.Context, tenantID uuid.UUID, stats *models.SupplyStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKey(tenantID), data, ttl).Err()
}

func (r *redisCacheService) DeleteStats(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, statsKey(tenantID)).Err()
}

// InvalidateTenantCache drops every cached entry for the tenant. SCAN keeps
// the sweep from blocking redis the way KEYS would.
func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("dataclinica:*:%s*", tenantID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) SetRefreshToken(ctx context.Context, tokenHash string, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, refreshTokenKey(tokenHash), userID, ttl).Err()
}

func (r *redisCacheService) GetRefreshToken(ctx context.Context, tokenHash string) (string, error) {
	val, err := r.client.Get(ctx, refreshTokenKey(tokenHash)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *redisCacheService) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	return r.client.Del(ctx, refreshTokenKey(tokenHash)).Err()
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	rateKey := fmt.Sprintf("dataclinica:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, rateKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, rateKey, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
