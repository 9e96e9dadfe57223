package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashInBuckets are the inflow amount buckets of a cash-in row
type CashInBuckets struct {
	Cash          decimal.Decimal
	Sales         decimal.Decimal
	OtherRevenue  decimal.Decimal
	Liability     decimal.Decimal
	OwnersCapital decimal.Decimal
}

// Revenue is the revenue-bearing part of the row (sales + other revenue)
func (b CashInBuckets) Revenue() decimal.Decimal {
	return b.Sales.Add(b.OtherRevenue)
}

// Total is every inflow bucket including financing and misc cash
func (b CashInBuckets) Total() decimal.Decimal {
	return b.Cash.Add(b.Sales).Add(b.OtherRevenue).Add(b.Liability).Add(b.OwnersCapital)
}

// HasNonCash reports whether any bucket other than Cash is non-zero
func (b CashInBuckets) HasNonCash() bool {
	return !b.Sales.IsZero() || !b.OtherRevenue.IsZero() || !b.Liability.IsZero() || !b.OwnersCapital.IsZero()
}

func (b CashInBuckets) amounts() []decimal.Decimal {
	return []decimal.Decimal{b.Cash, b.Sales, b.OtherRevenue, b.Liability, b.OwnersCapital}
}

// CashOutBuckets are the outflow amount buckets of a cash-out row.
// Cash is the operating expense bucket; Liability is debt service.
type CashOutBuckets struct {
	Cash             decimal.Decimal
	Inventory        decimal.Decimal
	Liability        decimal.Decimal
	OwnersWithdrawal decimal.Decimal
}

// Total is operating + inventory purchase + debt service + owner draw
func (b CashOutBuckets) Total() decimal.Decimal {
	return b.Cash.Add(b.Inventory).Add(b.Liability).Add(b.OwnersWithdrawal)
}

// HasNonCash reports whether any bucket other than Cash is non-zero
func (b CashOutBuckets) HasNonCash() bool {
	return !b.Inventory.IsZero() || !b.Liability.IsZero() || !b.OwnersWithdrawal.IsZero()
}

func (b CashOutBuckets) amounts() []decimal.Decimal {
	return []decimal.Decimal{b.Cash, b.Inventory, b.Liability, b.OwnersWithdrawal}
}

// Entry holds the fields shared by every stored ledger row
type Entry struct {
	ID              uuid.UUID
	UnitID          uuid.UUID
	PeriodMonth     time.Time
	TransactionDate time.Time
	Mode            RowMode
	CategoryID      *uuid.UUID
	Note            string
	EnteredBy       string
	ContentKey      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CashInTransaction is a stored cash-in ledger row
type CashInTransaction struct {
	Entry
	Buckets CashInBuckets
}

// CashOutTransaction is a stored cash-out ledger row
type CashOutTransaction struct {
	Entry
	Buckets CashOutBuckets
}

// CashInRow is one submitted cash-in line before reconciliation
type CashInRow struct {
	SourceKey       string
	TransactionDate time.Time
	Buckets         CashInBuckets
	Link            CategoryLink
	Splits          []Split
	Note            string
	EnteredBy       string
}

// CashOutRow is one submitted cash-out line before reconciliation
type CashOutRow struct {
	SourceKey       string
	TransactionDate time.Time
	Buckets         CashOutBuckets
	Link            CategoryLink
	Splits          []Split
	Note            string
	EnteredBy       string
}
