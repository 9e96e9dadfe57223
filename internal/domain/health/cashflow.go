package health

import (
	"sort"
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CashFlowMonth is the bucket detail of one calendar month
type CashFlowMonth struct {
	Month        time.Time
	Sales        decimal.Decimal
	OtherRevenue decimal.Decimal
	Loan         decimal.Decimal
	Capital      decimal.Decimal
	CashMisc     decimal.Decimal
	Opex         decimal.Decimal
	Inventory    decimal.Decimal
	DebtService  decimal.Decimal
	OwnersDraw   decimal.Decimal
}

// Inflow is every inflow bucket
func (m CashFlowMonth) Inflow() decimal.Decimal {
	return m.Sales.Add(m.OtherRevenue).Add(m.Loan).Add(m.Capital).Add(m.CashMisc)
}

// Outflow is every outflow bucket
func (m CashFlowMonth) Outflow() decimal.Decimal {
	return m.Opex.Add(m.Inventory).Add(m.DebtService).Add(m.OwnersDraw)
}

// CashFlowPoint is one month of the waterfall
type CashFlowPoint struct {
	CashFlowMonth
	Net        decimal.Decimal
	Burn       decimal.Decimal
	CashOnHand decimal.Decimal
	// RunwayInstant is cash / |net|, defined only when net < 0
	RunwayInstant *decimal.Decimal
	// RunwayMA3 is cash / mean burn of this and the two previous months,
	// defined only when that mean is positive
	RunwayMA3 *decimal.Decimal
}

// monthlyBy collects rows into calendar months chosen by pick
func monthlyBy(f Facts, pick func(period, tx time.Time) time.Time) []CashFlowMonth {
	byMonth := make(map[time.Time]*CashFlowMonth)
	get := func(t time.Time) *CashFlowMonth {
		m := ledger.MonthBucket(t)
		c, ok := byMonth[m]
		if !ok {
			c = &CashFlowMonth{Month: m}
			byMonth[m] = c
		}
		return c
	}
	for _, r := range f.CashIn {
		c := get(pick(r.PeriodMonth, r.TransactionDate))
		c.Sales = c.Sales.Add(r.Buckets.Sales)
		c.OtherRevenue = c.OtherRevenue.Add(r.Buckets.OtherRevenue)
		c.Loan = c.Loan.Add(r.Buckets.Liability)
		c.Capital = c.Capital.Add(r.Buckets.OwnersCapital)
		c.CashMisc = c.CashMisc.Add(r.Buckets.Cash)
	}
	for _, r := range f.CashOut {
		c := get(pick(r.PeriodMonth, r.TransactionDate))
		c.Opex = c.Opex.Add(r.Buckets.Cash)
		c.Inventory = c.Inventory.Add(r.Buckets.Inventory)
		c.DebtService = c.DebtService.Add(r.Buckets.Liability)
		c.OwnersDraw = c.OwnersDraw.Add(r.Buckets.OwnersWithdrawal)
	}
	out := make([]CashFlowMonth, 0, len(byMonth))
	for _, c := range byMonth {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// CashFlowMonths groups cash rows by transaction-date month
func CashFlowMonths(f Facts) []CashFlowMonth {
	return monthlyBy(f, func(_, tx time.Time) time.Time { return tx })
}

// PeriodMonths groups cash rows by reporting month
func PeriodMonths(f Facts) []CashFlowMonth {
	return monthlyBy(f, func(period, _ time.Time) time.Time { return period })
}

// Waterfall computes the running balance and runway for month-ordered input
func Waterfall(months []CashFlowMonth, opening decimal.Decimal) []CashFlowPoint {
	out := make([]CashFlowPoint, 0, len(months))
	balance := opening
	for i, m := range months {
		net := m.Inflow().Sub(m.Outflow())
		burn := decimal.Max(m.Outflow().Sub(m.Inflow()), decimal.Zero)
		balance = balance.Add(net)
		p := CashFlowPoint{CashFlowMonth: m, Net: net, Burn: burn, CashOnHand: balance}
		if net.IsNegative() {
			r := balance.Div(net.Abs())
			p.RunwayInstant = &r
		}
		start := i - 2
		if start < 0 {
			start = 0
		}
		sum := burn
		for j := start; j < i; j++ {
			sum = sum.Add(out[j].Burn)
		}
		ma3 := sum.Div(decimal.NewFromInt(int64(i - start + 1)))
		if ma3.IsPositive() {
			r := balance.Div(ma3)
			p.RunwayMA3 = &r
		}
		out = append(out, p)
	}
	return out
}

// CapitalFlow is the financing movement of one month
type CapitalFlow struct {
	Month           time.Time
	DebtIn          decimal.Decimal
	DebtOut         decimal.Decimal
	OwnerCapitalIn  decimal.Decimal
	OwnerWithdrawal decimal.Decimal
}

// CapitalFlows projects reporting months onto financing movements
func CapitalFlows(months []CashFlowMonth) []CapitalFlow {
	out := make([]CapitalFlow, 0, len(months))
	for _, m := range months {
		out = append(out, CapitalFlow{
			Month:           m.Month,
			DebtIn:          m.Loan,
			DebtOut:         m.DebtService,
			OwnerCapitalIn:  m.Capital,
			OwnerWithdrawal: m.OwnersDraw,
		})
	}
	return out
}

// NetCash is the net movement of one month, excluding misc cash inflow
type NetCash struct {
	Month time.Time
	Net   decimal.Decimal
}

// NetCashSeries computes revenue plus financing inflow minus every outflow
func NetCashSeries(months []CashFlowMonth) []NetCash {
	out := make([]NetCash, 0, len(months))
	for _, m := range months {
		in := m.Sales.Add(m.OtherRevenue).Add(m.Loan).Add(m.Capital)
		out = append(out, NetCash{Month: m.Month, Net: in.Sub(m.Outflow())})
	}
	return out
}

// SeasonalRevenue is revenue of one calendar month
type SeasonalRevenue struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
}

// Seasonality lists revenue per reporting month for months with cash-in rows
func Seasonality(f Facts) []SeasonalRevenue {
	revenue := make(map[time.Time]decimal.Decimal)
	for _, r := range f.CashIn {
		m := ledger.MonthBucket(r.PeriodMonth)
		revenue[m] = revenue[m].Add(r.Buckets.Revenue())
	}
	out := make([]SeasonalRevenue, 0, len(revenue))
	for m, v := range revenue {
		out = append(out, SeasonalRevenue{Year: m.Year(), Month: int(m.Month()), Revenue: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
