// Package health turns reconciled ledger rows into monthly aggregates,
// banded health scores and the dashboard views derived from them.
// Everything here is a pure function of the facts passed in.
package health

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// DateBasis selects which date of a cash row a window filters on
type DateBasis int

const (
	// BasisPeriod filters on the reporting month the row was imported under
	BasisPeriod DateBasis = iota
	// BasisTransactionDate filters on the row's own transaction date
	BasisTransactionDate
)

// FactQuery selects ledger facts for a set of units and a window
type FactQuery struct {
	UnitIDs []uuid.UUID
	Window  ledger.Window
	Basis   DateBasis
}

// CashInFact is the read-side projection of a cash-in row
type CashInFact struct {
	UnitID          uuid.UUID
	PeriodMonth     time.Time
	TransactionDate time.Time
	Buckets         ledger.CashInBuckets
}

// CashOutFact is the read-side projection of a cash-out row
type CashOutFact struct {
	UnitID          uuid.UUID
	PeriodMonth     time.Time
	TransactionDate time.Time
	Buckets         ledger.CashOutBuckets
}

// InventoryFact is one item count joined with its item
type InventoryFact struct {
	UnitID         uuid.UUID
	Month          time.Time
	ItemID         uuid.UUID
	ItemName       string
	ItemPrice      decimal.Decimal
	BeginQty       decimal.Decimal
	BeginUnitPrice *decimal.Decimal
	FinalQty       decimal.Decimal
	FinalUnitPrice *decimal.Decimal
}

// BeginPrice prefers the begin price, then the final price, then the list price
func (f InventoryFact) BeginPrice() decimal.Decimal {
	return ledger.PriceOr(f.ItemPrice, f.BeginUnitPrice, f.FinalUnitPrice)
}

// FinalPrice prefers the final price, then the begin price, then the list price
func (f InventoryFact) FinalPrice() decimal.Decimal {
	return ledger.PriceOr(f.ItemPrice, f.FinalUnitPrice, f.BeginUnitPrice)
}

// BeginValue is BeginQty at BeginPrice
func (f InventoryFact) BeginValue() decimal.Decimal {
	return f.BeginQty.Mul(f.BeginPrice())
}

// EndValue is FinalQty at FinalPrice
func (f InventoryFact) EndValue() decimal.Decimal {
	return f.FinalQty.Mul(f.FinalPrice())
}

// MovedQty is max(begin - final, 0)
func (f InventoryFact) MovedQty() decimal.Decimal {
	return decimal.Max(f.BeginQty.Sub(f.FinalQty), decimal.Zero)
}

// GuardFact is one recorded period guard
type GuardFact struct {
	UnitID uuid.UUID
	Month  time.Time
	Kind   ledger.ReportKind
}

// Facts is everything the engine needs for one scope and window
type Facts struct {
	CashIn    []CashInFact
	CashOut   []CashOutFact
	Inventory []InventoryFact
	Guards    []GuardFact
}

// FactSource loads ledger facts from storage
type FactSource interface {
	CashInFacts(ctx context.Context, q FactQuery) ([]CashInFact, error)
	CashOutFacts(ctx context.Context, q FactQuery) ([]CashOutFact, error)
	InventoryFacts(ctx context.Context, q FactQuery) ([]InventoryFact, error)
	GuardFacts(ctx context.Context, q FactQuery) ([]GuardFact, error)
}
