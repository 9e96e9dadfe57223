package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnitRepository reads the out-of-band unit registry
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByScope(ctx context.Context, scope Scope) ([]Unit, error)
	Save(ctx context.Context, unit *Unit) error
}

// CategoryRepository stores canonical categories
type CategoryRepository interface {
	// GetOrCreate returns the category for (kind, canonicalName), inserting it
	// under the uniqueness constraint if it does not exist yet
	GetOrCreate(ctx context.Context, kind CategoryKind, canonicalName string) (*Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByKind(ctx context.Context, kind CategoryKind) ([]Category, error)
	// RecomputeTotals rebuilds TotalAmount of the given categories from the ledger
	RecomputeTotals(ctx context.Context, ids []uuid.UUID) error
}

// CashInRepository stores cash-in rows keyed by content key
type CashInRepository interface {
	Upsert(ctx context.Context, tx *CashInTransaction) error
	FindByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]CashInTransaction, error)
	DeleteByContentKeys(ctx context.Context, keys []string) (int64, error)
}

// CashOutRepository stores cash-out rows keyed by content key
type CashOutRepository interface {
	Upsert(ctx context.Context, tx *CashOutTransaction) error
	FindByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]CashOutTransaction, error)
	DeleteByContentKeys(ctx context.Context, keys []string) (int64, error)
}

// InventoryRepository stores items, BOMs and monthly counts
type InventoryRepository interface {
	GetOrCreateBOM(ctx context.Context, name string) (*BOM, error)
	UpsertBOMLine(ctx context.Context, line *BOMLine) error
	// EnsureItem creates the item if missing and applies non-nil fields of in
	EnsureItem(ctx context.Context, in ItemInput, bomID *uuid.UUID) (*Item, error)
	FindItemByName(ctx context.Context, name string) (*Item, error)
	UpsertCount(ctx context.Context, count *InventoryCount) error
	FindCountsByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]InventoryCount, error)
	DeleteCountsByContentKeys(ctx context.Context, keys []string) (int64, error)
}

// GuardRepository stores period guards
type GuardRepository interface {
	// Insert records the guard. It returns false when the guard already exists.
	Insert(ctx context.Context, guard PeriodGuard) (bool, error)
	Exists(ctx context.Context, unitID uuid.UUID, month time.Time, kind ReportKind) (bool, error)
	Delete(ctx context.Context, unitID uuid.UUID, month time.Time, kind ReportKind) (bool, error)
}

// PeriodLocker acquires the serialization token of an import for the
// lifetime of the surrounding transaction
type PeriodLocker interface {
	Lock(ctx context.Context, key string) error
}
