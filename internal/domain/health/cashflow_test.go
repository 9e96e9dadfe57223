package health

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaterfall_RunningBalanceAndRunway(t *testing.T) {
	months := []CashFlowMonth{
		{Month: month(2024, time.January), Sales: d("100"), Opex: d("50")},
		{Month: month(2024, time.February), Sales: d("100"), Opex: d("150")},
		{Month: month(2024, time.March), Sales: d("100"), Opex: d("50")},
	}
	points := Waterfall(months, d("0"))
	require.Len(t, points, 3)

	assert.True(t, points[0].CashOnHand.Equal(d("50")))
	assert.True(t, points[1].CashOnHand.Equal(d("0")))
	assert.True(t, points[2].CashOnHand.Equal(d("50")))

	assert.Nil(t, points[0].RunwayInstant)
	require.NotNil(t, points[1].RunwayInstant)
	assert.True(t, points[1].RunwayInstant.IsZero())
	assert.Nil(t, points[2].RunwayInstant)

	assert.Nil(t, points[0].RunwayMA3, "no burn yet")
	require.NotNil(t, points[1].RunwayMA3)
	assert.True(t, points[1].RunwayMA3.IsZero())
	require.NotNil(t, points[2].RunwayMA3)
	assert.True(t, points[2].RunwayMA3.Round(2).Equal(d("3")))
}

func TestWaterfall_OpeningBalance(t *testing.T) {
	points := Waterfall([]CashFlowMonth{
		{Month: month(2024, time.January), Opex: d("25")},
	}, d("100"))
	require.Len(t, points, 1)
	assert.True(t, points[0].CashOnHand.Equal(d("75")))
	require.NotNil(t, points[0].RunwayInstant)
	assert.True(t, points[0].RunwayInstant.Equal(d("3")))
}

func TestCashFlowMonths_UsesTransactionDate(t *testing.T) {
	unit := uuid.New()
	jan, feb := month(2024, time.January), month(2024, time.February)
	f := Facts{
		CashIn: []CashInFact{{UnitID: unit, PeriodMonth: feb, TransactionDate: jan.AddDate(0, 0, 30),
			Buckets: ledger.CashInBuckets{Sales: d("10"), OtherRevenue: d("1"), Liability: d("2"), OwnersCapital: d("3"), Cash: d("4")}}},
		CashOut: []CashOutFact{{UnitID: unit, PeriodMonth: feb, TransactionDate: feb.AddDate(0, 0, 2),
			Buckets: ledger.CashOutBuckets{Cash: d("5"), Inventory: d("6"), Liability: d("7"), OwnersWithdrawal: d("8")}}},
	}

	byTx := CashFlowMonths(f)
	require.Len(t, byTx, 2)
	assert.Equal(t, jan, byTx[0].Month)
	assert.True(t, byTx[0].Inflow().Equal(d("20")))
	assert.True(t, byTx[1].Outflow().Equal(d("26")))

	byPeriod := PeriodMonths(f)
	require.Len(t, byPeriod, 1)
	flows := CapitalFlows(byPeriod)
	assert.True(t, flows[0].DebtIn.Equal(d("2")))
	assert.True(t, flows[0].DebtOut.Equal(d("7")))
	assert.True(t, flows[0].OwnerCapitalIn.Equal(d("3")))
	assert.True(t, flows[0].OwnerWithdrawal.Equal(d("8")))

	net := NetCashSeries(byPeriod)
	assert.True(t, net[0].Net.Equal(d("-10")), "misc cash is not counted")

	seasons := Seasonality(f)
	require.Len(t, seasons, 1)
	assert.Equal(t, 2024, seasons[0].Year)
	assert.Equal(t, 2, seasons[0].Month)
	assert.True(t, seasons[0].Revenue.Equal(d("11")))
}
