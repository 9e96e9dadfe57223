package shared

import (
	"context"
	"time"
)

// ReceiptStore keeps the serialized result of a completed request under a
// client-supplied idempotency key so that retries replay the original answer.
type ReceiptStore interface {
	// Save stores the receipt. It returns false if a receipt already exists for key.
	Save(ctx context.Context, key string, receipt []byte, ttl time.Duration) (bool, error)

	// Load returns the stored receipt and whether it was found
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Close releases resources held by the store
	Close() error
}

// ReceiptConfig holds configuration for receipt replay
type ReceiptConfig struct {
	// TTL after which a key can be reused. Default: 24 hours
	TTL time.Duration

	Enabled bool
}

// DefaultReceiptConfig returns the default receipt configuration
func DefaultReceiptConfig() ReceiptConfig {
	return ReceiptConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
