package persistence

import (
	"context"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"gorm.io/gorm"
)

// AdvisoryLocker serializes imports of the same (unit, month, kind) across
// processes with a PostgreSQL transaction-scoped advisory lock. The lock is
// released when the surrounding transaction ends.
type AdvisoryLocker struct {
	tx *gorm.DB
}

// NewAdvisoryLocker creates an AdvisoryLocker bound to tx
func NewAdvisoryLocker(tx *gorm.DB) *AdvisoryLocker {
	return &AdvisoryLocker{tx: tx}
}

// Lock blocks until the lock for key is held by tx
func (l *AdvisoryLocker) Lock(ctx context.Context, key string) error {
	err := l.tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
	return translateError("acquire period lock", err)
}

// localLocker is used on databases without advisory locks. Imports are
// already serialized within the process by the ingestion service.
type localLocker struct{}

func (localLocker) Lock(context.Context, string) error { return nil }

// NewPeriodLocker returns the advisory locker on PostgreSQL and a no-op
// locker elsewhere
func NewPeriodLocker(tx *gorm.DB) ledger.PeriodLocker {
	if tx.Dialector.Name() == DialectPostgres {
		return NewAdvisoryLocker(tx)
	}
	return localLocker{}
}

var _ ledger.PeriodLocker = (*AdvisoryLocker)(nil)
