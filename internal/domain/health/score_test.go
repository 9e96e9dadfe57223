package health

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyFacts produces one fully reported, strongly positive month
func healthyFacts(unit uuid.UUID, m time.Time) Facts {
	price := d("10")
	return Facts{
		CashIn: []CashInFact{{UnitID: unit, PeriodMonth: m, TransactionDate: m,
			Buckets: ledger.CashInBuckets{Sales: d("1000")}}},
		CashOut: []CashOutFact{{UnitID: unit, PeriodMonth: m, TransactionDate: m,
			Buckets: ledger.CashOutBuckets{Cash: d("300"), Inventory: d("200")}}},
		Inventory: []InventoryFact{{UnitID: unit, Month: m, ItemID: uuid.New(), ItemPrice: price,
			BeginQty: d("10"), FinalQty: d("6")}},
		Guards: allGuards(unit, m),
	}
}

// weakFacts produces one fully reported month that loses money
func weakFacts(unit uuid.UUID, m time.Time) Facts {
	return Facts{
		CashIn: []CashInFact{{UnitID: unit, PeriodMonth: m, TransactionDate: m,
			Buckets: ledger.CashInBuckets{Sales: d("100")}}},
		CashOut: []CashOutFact{{UnitID: unit, PeriodMonth: m, TransactionDate: m,
			Buckets: ledger.CashOutBuckets{Cash: d("400")}}},
		Guards: allGuards(unit, m),
	}
}

func merge(fs ...Facts) Facts {
	var out Facts
	for _, f := range fs {
		out.CashIn = append(out.CashIn, f.CashIn...)
		out.CashOut = append(out.CashOut, f.CashOut...)
		out.Inventory = append(out.Inventory, f.Inventory...)
		out.Guards = append(out.Guards, f.Guards...)
	}
	return out
}

func TestScore_HealthyUnit(t *testing.T) {
	u := ledger.Unit{ID: uuid.New(), Name: "Bakery"}
	jan := month(2024, time.January)
	s := Score(u, ComputeMonthly(healthyFacts(u.ID, jan)))

	assert.True(t, s.Eligible)
	assert.True(t, s.Bands.CashMargin.Equal(d("5")))
	assert.True(t, s.Bands.InOutRatio.Equal(d("5")))
	assert.True(t, s.Bands.Turnover.Equal(d("5")))
	assert.True(t, s.Bands.Reporting.Equal(d("5")))
	assert.True(t, s.Composite.Equal(d("20")))
	assert.True(t, s.Healthy)
	assert.False(t, s.Flagged)
	assert.Equal(t, 0, s.RedCount)
}

func TestScore_FlaggedUnit(t *testing.T) {
	u := ledger.Unit{ID: uuid.New(), Name: "Laundry"}
	s := Score(u, ComputeMonthly(weakFacts(u.ID, month(2024, time.January))))

	require.True(t, s.Eligible)
	assert.Equal(t, 3, s.RedCount, "cash margin, ratio and turnover are red")
	assert.True(t, s.Flagged)
	assert.False(t, s.Healthy)
	assert.Equal(t, LevelHealthy, s.Level(IndicatorReporting))
}

func TestScore_IneligibleUnitIsNeverFlagged(t *testing.T) {
	u := ledger.Unit{ID: uuid.New(), Name: "Sari-sari"}
	jan := month(2024, time.January)
	f := weakFacts(u.ID, jan)
	f.Guards = f.Guards[:2]

	s := Score(u, ComputeMonthly(f))
	assert.False(t, s.Eligible)
	assert.False(t, s.Flagged)
	assert.False(t, s.Healthy)
	assert.Equal(t, 0, s.RedCount)
	assert.True(t, s.Bands.Reporting.Equal(d("3.67")))
}

func TestScore_NoMonths(t *testing.T) {
	s := Score(ledger.Unit{ID: uuid.New()}, nil)
	assert.False(t, s.Eligible)
	assert.True(t, s.Bands.Reporting.Equal(d("1")))
	assert.True(t, s.Composite.Equal(d("4")))
}

func TestTotals_AveragesDefinedTurnoversOnly(t *testing.T) {
	one, three := d("1"), d("3")
	tot := Totals([]MonthlyAggregate{
		{Inflow: d("10"), Outflow: d("5"), Turnover: &one, ReportCount: 3, Completeness: d("1")},
		{Inflow: d("20"), Outflow: d("5"), Turnover: nil, ReportCount: 0, Completeness: d("0")},
		{Inflow: d("30"), Outflow: d("5"), Turnover: &three, ReportCount: 3, Completeness: d("1")},
	})
	assert.True(t, tot.Inflow.Equal(d("60")))
	assert.True(t, tot.Net().Equal(d("45")))
	require.NotNil(t, tot.AvgTurnover)
	assert.True(t, tot.AvgTurnover.Equal(d("2")))
	assert.Equal(t, 3, tot.Months)
	assert.Equal(t, 2, tot.EligibleMonths)
}

func TestScoreAll_RanksWorstFirst(t *testing.T) {
	jan := month(2024, time.January)
	good := ledger.Unit{ID: uuid.New(), Name: "Alpha"}
	bad := ledger.Unit{ID: uuid.New(), Name: "Zulu"}
	tieA := ledger.Unit{ID: uuid.New(), Name: "Bravo"}
	tieB := ledger.Unit{ID: uuid.New(), Name: "Charlie"}

	aggs := ComputeMonthly(merge(
		healthyFacts(good.ID, jan),
		weakFacts(bad.ID, jan),
	))
	scores := ScoreAll([]ledger.Unit{good, tieB, bad, tieA}, aggs)
	require.Len(t, scores, 4)

	assert.Equal(t, "Bravo", scores[0].Unit.Name, "ties on composite break by name")
	assert.Equal(t, "Charlie", scores[1].Unit.Name)
	assert.Equal(t, "Zulu", scores[2].Unit.Name)
	assert.Equal(t, "Alpha", scores[3].Unit.Name)
}

func TestScore_ReferenceScenario(t *testing.T) {
	u := ledger.Unit{ID: uuid.New(), Name: "Canteen"}
	jan := month(2024, time.January)
	f := Facts{
		CashIn: []CashInFact{{UnitID: u.ID, PeriodMonth: jan, TransactionDate: jan,
			Buckets: ledger.CashInBuckets{Sales: d("1000")}}},
		CashOut: []CashOutFact{{UnitID: u.ID, PeriodMonth: jan, TransactionDate: jan,
			Buckets: ledger.CashOutBuckets{Cash: d("400"), Inventory: d("200")}}},
		Inventory: []InventoryFact{{UnitID: u.ID, Month: jan, ItemID: uuid.New(), ItemPrice: d("1"),
			BeginQty: d("500"), FinalQty: d("300")}},
		Guards: allGuards(u.ID, jan),
	}
	aggs := ComputeMonthly(f)
	require.Len(t, aggs, 1)
	assert.True(t, aggs[0].COGS.Equal(d("400")))
	assert.True(t, aggs[0].AvgInventory.Equal(d("400")))
	require.NotNil(t, aggs[0].Turnover)
	assert.True(t, aggs[0].Turnover.Equal(d("1")))

	s := Score(u, aggs)
	margin, ok := CashMargin(s.Totals.Inflow, s.Totals.Outflow)
	require.True(t, ok)
	assert.True(t, margin.Equal(d("0.4")))
	assert.True(t, s.Bands.CashMargin.Equal(d("5")))
	assert.True(t, s.Bands.Turnover.Equal(d("5")))
}
