package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleCashOut(amount int64) CashOutRow {
	return CashOutRow{
		TransactionDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Buckets:         CashOutBuckets{Cash: decimal.NewFromInt(amount)},
		Link:            CategoryLink{ExpenseLabel: "Rent"},
		Note:            "march rent",
	}
}

func TestKeyBuilder_Derive(t *testing.T) {
	unit := uuid.New()
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("same payload yields same keys", func(t *testing.T) {
		a := NewKeyBuilder()
		b := NewKeyBuilder()
		f := CashOutFingerprint(unit, period, sampleCashOut(100))
		assert.Equal(t, a.Derive("", f), b.Derive("", f))
	})

	t.Run("identical rows in one payload stay distinct", func(t *testing.T) {
		kb := NewKeyBuilder()
		f := CashOutFingerprint(unit, period, sampleCashOut(100))
		first := kb.Derive("", f)
		second := kb.Derive("", f)
		assert.NotEqual(t, first, second)
	})

	t.Run("amount change changes key", func(t *testing.T) {
		kb1, kb2 := NewKeyBuilder(), NewKeyBuilder()
		k1 := kb1.Derive("", CashOutFingerprint(unit, period, sampleCashOut(100)))
		k2 := kb2.Derive("", CashOutFingerprint(unit, period, sampleCashOut(101)))
		assert.NotEqual(t, k1, k2)
	})

	t.Run("equivalent amounts share a key", func(t *testing.T) {
		row := sampleCashOut(0)
		row.Buckets.Cash = decimal.RequireFromString("100.00")
		k1 := NewKeyBuilder().Derive("", CashOutFingerprint(unit, period, row))
		k2 := NewKeyBuilder().Derive("", CashOutFingerprint(unit, period, sampleCashOut(100)))
		assert.Equal(t, k1, k2)
	})

	t.Run("source key is namespaced by unit and kind", func(t *testing.T) {
		f := CashOutFingerprint(unit, period, sampleCashOut(100))
		other := CashOutFingerprint(uuid.New(), period, sampleCashOut(100))
		kb := NewKeyBuilder()
		assert.Equal(t, kb.Derive("row-7", f), kb.Derive("row-7", f))
		assert.NotEqual(t, kb.Derive("row-7", f), kb.Derive("row-7", other))
	})
}

func TestSplitKey(t *testing.T) {
	parent := "abc"
	a := SplitKey(parent, Split{Kind: CategoryKindExpense, Label: "Rent"})
	b := SplitKey(parent, Split{Kind: CategoryKindExpense, Label: " RENT"})
	c := SplitKey(parent, Split{Kind: CategoryKindAsset, Label: "Rent"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
