package health

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func allGuards(unit uuid.UUID, m time.Time) []GuardFact {
	out := make([]GuardFact, 0, 3)
	for _, k := range ledger.AllReportKinds() {
		out = append(out, GuardFact{UnitID: unit, Month: m, Kind: k})
	}
	return out
}

func TestComputeMonthly(t *testing.T) {
	unit := uuid.New()
	jan, feb := month(2024, time.January), month(2024, time.February)
	beginPrice := d("5")

	facts := Facts{
		CashIn: []CashInFact{{
			UnitID: unit, PeriodMonth: jan, TransactionDate: jan.AddDate(0, 0, 3),
			Buckets: ledger.CashInBuckets{Sales: d("900"), OtherRevenue: d("100"), Liability: d("500")},
		}},
		CashOut: []CashOutFact{{
			UnitID: unit, PeriodMonth: jan, TransactionDate: jan.AddDate(0, 0, 4),
			Buckets: ledger.CashOutBuckets{Cash: d("300"), Inventory: d("200")},
		}},
		Inventory: []InventoryFact{{
			UnitID: unit, Month: jan, ItemID: uuid.New(), ItemName: "bread", ItemPrice: d("99"),
			BeginQty: d("10"), BeginUnitPrice: &beginPrice, FinalQty: d("6"),
		}},
		Guards: append(allGuards(unit, jan), GuardFact{UnitID: unit, Month: feb, Kind: ledger.ReportKindCashIn}),
	}

	aggs := ComputeMonthly(facts)
	require.Len(t, aggs, 2)

	j := aggs[0]
	assert.Equal(t, jan, j.Month)
	assert.True(t, j.Inflow.Equal(d("1000")), "inflow excludes financing")
	assert.True(t, j.Outflow.Equal(d("500")))
	assert.True(t, j.BeginValue.Equal(d("50")))
	assert.True(t, j.EndValue.Equal(d("30")), "final price falls back to begin price")
	assert.True(t, j.COGS.Equal(d("220")))
	assert.True(t, j.AvgInventory.Equal(d("40")))
	require.NotNil(t, j.Turnover)
	assert.True(t, j.Turnover.Equal(d("5.5")))
	assert.Equal(t, 3, j.ReportCount)
	assert.True(t, j.Complete())

	f := aggs[1]
	assert.Equal(t, feb, f.Month, "a guard alone enumerates the month")
	assert.Nil(t, f.Turnover)
	assert.Equal(t, 1, f.ReportCount)
	assert.False(t, f.Complete())

	assert.Equal(t, []string{"2024-01", "2024-02"}, MonthsPresent(aggs))
}

func TestComputeMonthly_COGSNeverNegative(t *testing.T) {
	unit := uuid.New()
	jan := month(2024, time.January)
	aggs := ComputeMonthly(Facts{Inventory: []InventoryFact{{
		UnitID: unit, Month: jan, ItemPrice: d("2"), BeginQty: d("1"), FinalQty: d("10"),
	}}})
	require.Len(t, aggs, 1)
	assert.True(t, aggs[0].COGS.IsZero())
	require.NotNil(t, aggs[0].Turnover)
	assert.True(t, aggs[0].Turnover.IsZero())
}

func TestComputeMonthly_Empty(t *testing.T) {
	assert.Empty(t, ComputeMonthly(Facts{}))
	assert.Empty(t, MonthsPresent(nil))
}
