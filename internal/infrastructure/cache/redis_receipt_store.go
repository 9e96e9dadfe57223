package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultReceiptKeyPrefix namespaces receipt keys in a shared Redis
const DefaultReceiptKeyPrefix = "lseed:receipt:"

// RedisReceiptStore implements shared.ReceiptStore on Redis, so every
// instance behind a load balancer replays the same receipts
type RedisReceiptStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewRedisReceiptStore connects and pings Redis
func NewRedisReceiptStore(ctx context.Context, cfg RedisConfig) (*RedisReceiptStore, error) {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisReceiptStoreWithClient(client, DefaultReceiptKeyPrefix), nil
}

// NewRedisReceiptStoreWithClient wraps an existing client
func NewRedisReceiptStoreWithClient(client *redis.Client, keyPrefix string) *RedisReceiptStore {
	if keyPrefix == "" {
		keyPrefix = DefaultReceiptKeyPrefix
	}
	return &RedisReceiptStore{client: client, keyPrefix: keyPrefix}
}

// Save stores the receipt with SET NX so that only the first writer wins
func (s *RedisReceiptStore) Save(ctx context.Context, key string, receipt []byte, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, receipt, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to save receipt: %w", err)
	}
	return ok, nil
}

// Load returns the stored receipt, if any
func (s *RedisReceiptStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load receipt: %w", err)
	}
	return body, true, nil
}

// Close closes the Redis client
func (s *RedisReceiptStore) Close() error {
	return s.client.Close()
}

var _ shared.ReceiptStore = (*RedisReceiptStore)(nil)
