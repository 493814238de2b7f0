package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds transactions the provider already confirmed as successful.
type Cache interface {
	Get(ctx context.Context, reference string) (*Transaction, error)
	Set(ctx context.Context, tx *Transaction) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisCache) Get(ctx context.Context, reference string) (*Transaction, error) {
	data, err := r.client.Get(ctx, cacheKey(reference)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction failed: %w", err)
	}
	return &tx, nil
}

// Set refuses anything but successful transactions.
func (r *RedisCache) Set(ctx context.Context, tx *Transaction) error {
	if tx == nil || !tx.Successful() {
		return fmt.Errorf("refusing to cache unsuccessful transaction")
	}
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, cacheKey(tx.Reference), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(reference string) string {
	return fmt.Sprintf("paystack:verify:%s", reference)
}

// TransactionVerifier is satisfied by Client and CachedVerifier.
type TransactionVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)
}

// CachedVerifier answers from the cache when it can. Cache failures fall
// through to the provider; they never turn into a successful verification.
type CachedVerifier struct {
	next  TransactionVerifier
	cache Cache
	log   *zap.Logger
}

func NewCachedVerifier(next TransactionVerifier, cache Cache, log *zap.Logger) *CachedVerifier {
	return &CachedVerifier{next: next, cache: cache, log: log}
}

func (c *CachedVerifier) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	tx, err := c.cache.Get(ctx, reference)
	if err == nil && tx.Successful() && tx.Reference == reference {
		return tx, nil
	}
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("verification cache read failed", zap.String("reference", reference), zap.Error(err))
	}

	tx, err = c.next.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, tx); err != nil {
		c.log.Warn("verification cache write failed", zap.String("reference", reference), zap.Error(err))
	}
	return tx, nil
}
