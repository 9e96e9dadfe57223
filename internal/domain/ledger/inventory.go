package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBOMName is used when a BOM line names no bill of materials
const DefaultBOMName = "Default BOM"

// Item is a stock-keeping item. NameKey is the normalized, unique lookup key.
type Item struct {
	ID                 uuid.UUID
	Name               string
	NameKey            string
	Price              decimal.Decimal
	BeginningInventory decimal.Decimal
	LessCount          decimal.Decimal
	BOMID              *uuid.UUID
}

// BOM is a named bill of materials
type BOM struct {
	ID      uuid.UUID
	Name    string
	NameKey string
}

// BOMLine is one raw material of a BOM, unique per (BOM, material key)
type BOMLine struct {
	ID           uuid.UUID
	BOMID        uuid.UUID
	MaterialName string
	MaterialKey  string
	Qty          decimal.Decimal
	Price        decimal.Decimal
}

// InventoryCount is the stored begin/final count of one item for one unit-month.
// Unit prices are optional; readers fall back through the other price and
// the item's list price.
type InventoryCount struct {
	ID             uuid.UUID
	UnitID         uuid.UUID
	Month          time.Time
	ItemID         uuid.UUID
	BeginQty       decimal.Decimal
	BeginUnitPrice *decimal.Decimal
	FinalQty       decimal.Decimal
	FinalUnitPrice *decimal.Decimal
	ContentKey     string
}

// ItemInput is a submitted item line. Nil fields leave stored values untouched.
type ItemInput struct {
	Name               string
	Price              *decimal.Decimal
	BeginningInventory *decimal.Decimal
	LessCount          *decimal.Decimal
	BOMName            string
}

// BOMLineInput is a submitted BOM line
type BOMLineInput struct {
	BOMName      string
	MaterialName string
	Qty          decimal.Decimal
	Price        decimal.Decimal
}

// ReportLinkInput ties an item to a unit-month with its counts
type ReportLinkInput struct {
	ItemName       string
	Month          time.Time
	BeginQty       decimal.Decimal
	BeginUnitPrice *decimal.Decimal
	FinalQty       decimal.Decimal
	FinalUnitPrice *decimal.Decimal
}

// SingleMonth returns the one month all links target. Zero months yields
// ErrMissingFields and more than one ErrMultiMonthPayload.
func SingleMonth(links []ReportLinkInput) (time.Time, error) {
	var month time.Time
	seen := false
	for _, l := range links {
		if l.Month.IsZero() {
			continue
		}
		m := MonthBucket(l.Month)
		if !seen {
			month, seen = m, true
			continue
		}
		if !m.Equal(month) {
			return time.Time{}, ErrMultiMonthPayload
		}
	}
	if !seen {
		return time.Time{}, ErrMissingFields.WithMessage("Missing or invalid month for inventory report")
	}
	return month, nil
}

// BOMNameOrDefault returns name or DefaultBOMName when it is blank
func BOMNameOrDefault(name string) string {
	if NormalizeLabel(name) == "" {
		return DefaultBOMName
	}
	return name
}

// PriceOr returns the first non-nil price, or fallback
func PriceOr(fallback decimal.Decimal, prices ...*decimal.Decimal) decimal.Decimal {
	for _, p := range prices {
		if p != nil {
			return *p
		}
	}
	return fallback
}
