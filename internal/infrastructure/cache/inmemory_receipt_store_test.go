package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReceiptStore_SaveLoad(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	body, found, err := store.Load(ctx, "import-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, body)

	saved, err := store.Save(ctx, "import-1", []byte(`{"upserted":3}`), time.Hour)
	require.NoError(t, err)
	assert.True(t, saved)

	body, found, err = store.Load(ctx, "import-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"upserted":3}`, string(body))
}

func TestInMemoryReceiptStore_FirstWriterWins(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	saved, err := store.Save(ctx, "k", []byte("first"), time.Hour)
	require.NoError(t, err)
	require.True(t, saved)

	saved, err = store.Save(ctx, "k", []byte("second"), time.Hour)
	require.NoError(t, err)
	assert.False(t, saved)

	body, _, _ := store.Load(ctx, "k")
	assert.Equal(t, "first", string(body))
}

func TestInMemoryReceiptStore_CopiesBytes(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	in := []byte("abc")
	_, err := store.Save(ctx, "k", in, time.Hour)
	require.NoError(t, err)
	in[0] = 'x'

	out, _, _ := store.Load(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[0] = 'y'

	again, _, _ := store.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryReceiptStore_Expiry(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Save(ctx, "k", []byte("old"), time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, found, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired receipt is not replayed")

	saved, err := store.Save(ctx, "k", []byte("new"), time.Minute)
	require.NoError(t, err)
	assert.True(t, saved, "expired key can be reused")
}

func TestInMemoryReceiptStore_Cleanup(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _ = store.Save(ctx, "short", []byte("a"), time.Minute)
	_, _ = store.Save(ctx, "long", []byte("b"), time.Hour)
	assert.Equal(t, 2, store.Size())

	now = now.Add(10 * time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	_, found, _ := store.Load(ctx, "long")
	assert.True(t, found)
}

func TestInMemoryReceiptStore_ConcurrentSave(t *testing.T) {
	store := NewInMemoryReceiptStore()
	defer store.Close()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := store.Save(ctx, "same-key", []byte("r"), time.Hour)
			assert.NoError(t, err)
			if saved {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryReceiptStore_Close(t *testing.T) {
	store := NewInMemoryReceiptStore()
	require.NoError(t, store.Close())
	assert.NotPanics(t, func() { _ = store.Close() })
}
