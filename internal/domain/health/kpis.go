package health

import (
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// FinanceKPIs are portfolio totals over a scope and window
type FinanceKPIs struct {
	Revenue          decimal.Decimal
	Purchases        decimal.Decimal
	Opex             decimal.Decimal
	COGS             decimal.Decimal
	GrossProfit      decimal.Decimal
	OperatingProfit  decimal.Decimal
	GrossMargin      *decimal.Decimal
	OperatingMargin  *decimal.Decimal
	OverallTurnover  *decimal.Decimal
	OverallDIO       *decimal.Decimal
	NetCashFlow      decimal.Decimal
	ReportingRate    decimal.Decimal
	ReportsSubmitted int
	ReportsExpected  int
	Months           int
	Units            int
}

type kpiMonth struct {
	revenue, purchases, opex decimal.Decimal
	debtIn, debtOut          decimal.Decimal
	capitalIn, withdrawal    decimal.Decimal
	beginValue, endValue     decimal.Decimal
}

// ComputeKPIs rolls every unit's rows into per-month portfolio totals first,
// then derives COGS and turnover from those. unitCount is the number of units
// in scope, including ones without data.
func ComputeKPIs(f Facts, unitCount int) FinanceKPIs {
	months := make(map[time.Time]*kpiMonth)
	get := func(t time.Time) *kpiMonth {
		m := ledger.MonthBucket(t)
		k, ok := months[m]
		if !ok {
			k = &kpiMonth{}
			months[m] = k
		}
		return k
	}
	for _, r := range f.CashIn {
		k := get(r.PeriodMonth)
		k.revenue = k.revenue.Add(r.Buckets.Revenue())
		k.debtIn = k.debtIn.Add(r.Buckets.Liability)
		k.capitalIn = k.capitalIn.Add(r.Buckets.OwnersCapital)
	}
	for _, r := range f.CashOut {
		k := get(r.PeriodMonth)
		k.opex = k.opex.Add(r.Buckets.Cash)
		k.purchases = k.purchases.Add(r.Buckets.Inventory)
		k.debtOut = k.debtOut.Add(r.Buckets.Liability)
		k.withdrawal = k.withdrawal.Add(r.Buckets.OwnersWithdrawal)
	}
	for _, r := range f.Inventory {
		k := get(r.Month)
		k.beginValue = k.beginValue.Add(r.BeginValue())
		k.endValue = k.endValue.Add(r.EndValue())
	}

	out := FinanceKPIs{Months: len(months), Units: unitCount}
	var weightedAvg decimal.Decimal
	days := 0
	var in, outflow decimal.Decimal
	for m, k := range months {
		cogs := decimal.Max(k.beginValue.Add(k.purchases).Sub(k.endValue), decimal.Zero)
		out.Revenue = out.Revenue.Add(k.revenue)
		out.Purchases = out.Purchases.Add(k.purchases)
		out.Opex = out.Opex.Add(k.opex)
		out.COGS = out.COGS.Add(cogs)

		d := ledger.DaysInMonth(m)
		days += d
		avg := k.beginValue.Add(k.endValue).Div(two)
		weightedAvg = weightedAvg.Add(avg.Mul(decimal.NewFromInt(int64(d))))

		in = in.Add(k.revenue).Add(k.debtIn).Add(k.capitalIn)
		outflow = outflow.Add(k.opex).Add(k.purchases).Add(k.debtOut).Add(k.withdrawal)
	}

	out.GrossProfit = out.Revenue.Sub(out.COGS).Round(2)
	out.OperatingProfit = out.Revenue.Sub(out.COGS).Sub(out.Opex).Round(2)
	if out.Revenue.IsPositive() {
		gm := out.Revenue.Sub(out.COGS).Div(out.Revenue).Round(4)
		om := out.Revenue.Sub(out.COGS).Sub(out.Opex).Div(out.Revenue).Round(4)
		out.GrossMargin = &gm
		out.OperatingMargin = &om
	}
	if weightedAvg.IsPositive() {
		avgInv := weightedAvg.Div(decimal.NewFromInt(int64(days)))
		t := out.COGS.Div(avgInv)
		rounded := t.Round(4)
		out.OverallTurnover = &rounded
		if t.IsPositive() {
			dio := decimal.NewFromInt(int64(days)).Div(t).Round(1)
			out.OverallDIO = &dio
		}
	}
	out.Revenue = out.Revenue.Round(2)
	out.Purchases = out.Purchases.Round(2)
	out.Opex = out.Opex.Round(2)
	out.COGS = out.COGS.Round(2)
	out.NetCashFlow = in.Sub(outflow).Round(2)

	for _, g := range f.Guards {
		if _, ok := months[ledger.MonthBucket(g.Month)]; ok {
			out.ReportsSubmitted++
		}
	}
	out.ReportsExpected = unitCount * len(months) * ledger.ExpectedReportKinds
	if out.ReportsExpected > 0 {
		out.ReportingRate = decimal.NewFromInt(int64(out.ReportsSubmitted)).
			Div(decimal.NewFromInt(int64(out.ReportsExpected))).Round(4)
	}
	return out
}
