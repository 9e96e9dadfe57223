package ingestion

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// CashInImport is one unit's cash-in report for one month
type CashInImport struct {
	UnitID      uuid.UUID
	PeriodMonth time.Time
	Rows        []ledger.CashInRow
}

// CashOutImport is one unit's cash-out report for one month
type CashOutImport struct {
	UnitID      uuid.UUID
	PeriodMonth time.Time
	Rows        []ledger.CashOutRow
}

// InventoryImport carries item reference data plus one month of counts
type InventoryImport struct {
	UnitID   uuid.UUID
	Items    []ledger.ItemInput
	BOMLines []ledger.BOMLineInput
	Links    []ledger.ReportLinkInput
}

// ImportResult reports what a cash import changed
type ImportResult struct {
	Upserted int `json:"upserted"`
	Removed  int `json:"removed"`
}

// InventoryResult reports what an inventory import changed
type InventoryResult struct {
	UpsertedItems    int `json:"upsertedItems"`
	InsertedBOMLines int `json:"insertedBomLines"`
	Linked           int `json:"linked"`
	Removed          int `json:"removed"`
}

// EnsureRefsRequest lists labels to register ahead of an import
type EnsureRefsRequest struct {
	Assets   []string
	Expenses []string
}

// EnsureRefsResult maps lowercased labels to category ids
type EnsureRefsResult struct {
	AssetMap   map[string]uuid.UUID `json:"assetMap"`
	ExpenseMap map[string]uuid.UUID `json:"expenseMap"`
}

// ReopenRequest identifies a guard to remove
type ReopenRequest struct {
	UnitID uuid.UUID
	Month  time.Time
	Kind   ledger.ReportKind
}
