package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryKind separates asset labels from expense labels
type CategoryKind string

const (
	CategoryKindAsset   CategoryKind = "asset"
	CategoryKindExpense CategoryKind = "expense"
)

// IsValid reports whether k is a known category kind
func (k CategoryKind) IsValid() bool {
	return k == CategoryKindAsset || k == CategoryKindExpense
}

// UncategorizedName is the canonical name returned for empty labels
const UncategorizedName = "uncategorized"

// Category is a canonical asset or expense identity.
// TotalAmount is derived and recomputed wholesale after every import.
type Category struct {
	ID            uuid.UUID
	Kind          CategoryKind
	CanonicalName string
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryRef is the resolved identity of a label
type CategoryRef struct {
	ID   uuid.UUID
	Kind CategoryKind
	Name string
}

// Uncategorized returns the reference for a missing label of the given kind
func Uncategorized(kind CategoryKind) CategoryRef {
	return CategoryRef{ID: uuid.Nil, Kind: kind, Name: UncategorizedName}
}

// IsUncategorized reports whether the reference carries no identity
func (r CategoryRef) IsUncategorized() bool {
	return r.ID == uuid.Nil
}

// IDPtr returns nil for uncategorized references, for nullable columns
func (r CategoryRef) IDPtr() *uuid.UUID {
	if r.IsUncategorized() {
		return nil
	}
	id := r.ID
	return &id
}
