package cache

import (
	"context"
	"fmt"

	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReceiptStoreFactory picks a receipt store from configuration
type ReceiptStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReceiptStoreFactoryOption configures the factory
type ReceiptStoreFactoryOption func(*ReceiptStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReceiptStoreFactoryOption {
	return func(f *ReceiptStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default true.
func WithInMemoryFallback(allow bool) ReceiptStoreFactoryOption {
	return func(f *ReceiptStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReceiptStoreFactory creates a new factory
func NewReceiptStoreFactory(cfg config.RedisConfig, opts ...ReceiptStoreFactoryOption) *ReceiptStoreFactory {
	f := &ReceiptStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable, and
// the in-memory store otherwise
func (f *ReceiptStoreFactory) CreateStore(ctx context.Context) (shared.ReceiptStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory receipt store")
		return NewInMemoryReceiptStore(), nil
	}

	store, err := NewRedisReceiptStore(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis receipt store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for receipt replay but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory receipt store. "+
		"Retries routed to another instance will not replay.",
		zap.Error(err),
	)
	return NewInMemoryReceiptStore(), nil
}
