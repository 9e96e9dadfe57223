package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hotteokboki/lseed-project/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// 127.0.0.1:1 refuses connections immediately on every CI runner we use
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestReceiptStoreFactory_Disabled(t *testing.T) {
	store, err := NewReceiptStoreFactory(config.RedisConfig{}).CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryReceiptStore{}, store)
}

func TestReceiptStoreFactory_FallsBackWhenUnreachable(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	f := NewReceiptStoreFactory(unreachableRedis, WithLogger(zap.New(core)))

	store, err := f.CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryReceiptStore{}, store)
	assert.Equal(t, 1, recorded.Len())
}

func TestReceiptStoreFactory_StrictModeFails(t *testing.T) {
	f := NewReceiptStoreFactory(unreachableRedis, WithInMemoryFallback(false))

	store, err := f.CreateStore(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewRedisReceiptStore_Unreachable(t *testing.T) {
	_, err := NewRedisReceiptStore(context.Background(), RedisConfig{
		Addr:        unreachableRedis.Addr(),
		DialTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
