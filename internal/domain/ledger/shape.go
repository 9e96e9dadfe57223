package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RowMode is the single categorization of a stored row. A row is linked to
// an asset or to an expense, never both.
type RowMode string

const (
	RowModeAssetLinked   RowMode = "asset_linked"
	RowModeExpenseLinked RowMode = "expense_linked"
	RowModeUncategorized RowMode = "uncategorized"
)

// CategoryKind returns the category kind a linked mode points at
func (m RowMode) CategoryKind() (CategoryKind, bool) {
	switch m {
	case RowModeAssetLinked:
		return CategoryKindAsset, true
	case RowModeExpenseLinked:
		return CategoryKindExpense, true
	}
	return "", false
}

// CategoryLink carries the raw category hints of a submitted row
type CategoryLink struct {
	AssetID      *uuid.UUID
	AssetLabel   string
	ExpenseID    *uuid.UUID
	ExpenseLabel string
}

func (l CategoryLink) hasAsset() bool {
	return l.AssetID != nil || NormalizeLabel(l.AssetLabel) != ""
}

func (l CategoryLink) hasExpense() bool {
	return l.ExpenseID != nil || NormalizeLabel(l.ExpenseLabel) != ""
}

// ClassifyRow decides the row mode once per row. Asset hints win over
// expense hints when a source row carries both.
func ClassifyRow(link CategoryLink) RowMode {
	switch {
	case link.hasAsset():
		return RowModeAssetLinked
	case link.hasExpense():
		return RowModeExpenseLinked
	default:
		return RowModeUncategorized
	}
}

// Split is one category-tagged sub-amount of a row
type Split struct {
	Kind   CategoryKind
	Label  string
	Amount decimal.Decimal
}

// AmountShape is either SingleAmount or SplitAmounts
type AmountShape interface {
	amountShape()
}

// SingleAmount means the row's buckets are persisted as one row
type SingleAmount struct{}

// SplitAmounts means only the split rows are persisted
type SplitAmounts struct {
	Splits []Split
}

func (SingleAmount) amountShape() {}
func (SplitAmounts) amountShape() {}

// ResolveShape inspects the raw splits once at ingestion entry. Splits with
// empty labels or zero amounts are dropped; splits sharing a kind and
// normalized label are merged so each split key is unique within a row.
func ResolveShape(splits []Split) AmountShape {
	type key struct {
		kind  CategoryKind
		label string
	}
	merged := make(map[key]*Split)
	var order []key
	for _, s := range splits {
		n := NormalizeLabel(s.Label)
		if n == "" || s.Amount.IsZero() || !s.Kind.IsValid() {
			continue
		}
		k := key{kind: s.Kind, label: n}
		if existing, ok := merged[k]; ok {
			existing.Amount = existing.Amount.Add(s.Amount)
			continue
		}
		merged[k] = &Split{Kind: s.Kind, Label: s.Label, Amount: s.Amount}
		order = append(order, k)
	}
	if len(order) == 0 {
		return SingleAmount{}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].kind != order[j].kind {
			return order[i].kind < order[j].kind
		}
		return order[i].label < order[j].label
	})
	out := make([]Split, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return SplitAmounts{Splits: out}
}

// SplitMode maps a split's kind to the row mode of the persisted split row
func SplitMode(s Split) RowMode {
	if s.Kind == CategoryKindAsset {
		return RowModeAssetLinked
	}
	return RowModeExpenseLinked
}
