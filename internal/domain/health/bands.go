package health

import "github.com/shopspring/decimal"

// threshold maps a lower bound (inclusive) to a band
type threshold struct {
	min  decimal.Decimal
	band int64
}

func bandFor(v decimal.Decimal, table []threshold) decimal.Decimal {
	for _, t := range table {
		if v.GreaterThanOrEqual(t.min) {
			return decimal.NewFromInt(t.band)
		}
	}
	return decimal.NewFromInt(1)
}

var (
	cashMarginThresholds = []threshold{
		{decimal.RequireFromString("0.15"), 5},
		{decimal.RequireFromString("0.05"), 4},
		{decimal.Zero, 3},
		{decimal.RequireFromString("-0.10"), 2},
	}
	inOutThresholds = []threshold{
		{decimal.RequireFromString("1.5"), 5},
		{decimal.RequireFromString("1.2"), 4},
		{decimal.RequireFromString("1.0"), 3},
		{decimal.RequireFromString("0.8"), 2},
	}
	turnoverThresholds = []threshold{
		{decimal.RequireFromString("0.50"), 5},
		{decimal.RequireFromString("0.35"), 4},
		{decimal.RequireFromString("0.25"), 3},
		{decimal.RequireFromString("0.15"), 2},
	}
	bandOne  = decimal.NewFromInt(1)
	bandFive = decimal.NewFromInt(5)
	four     = decimal.NewFromInt(4)
)

// CashMargin is (inflow - outflow) / inflow; ok is false when inflow <= 0
func CashMargin(inflow, outflow decimal.Decimal) (decimal.Decimal, bool) {
	if !inflow.IsPositive() {
		return decimal.Zero, false
	}
	return inflow.Sub(outflow).Div(inflow), true
}

// CashMarginBand bands the cash margin; inflow <= 0 is band 1
func CashMarginBand(inflow, outflow decimal.Decimal) decimal.Decimal {
	m, ok := CashMargin(inflow, outflow)
	if !ok {
		return bandOne
	}
	return bandFor(m, cashMarginThresholds)
}

// InOutRatioBand bands inflow/outflow. Without outflow a positive inflow is
// band 5 and no inflow is band 1.
func InOutRatioBand(inflow, outflow decimal.Decimal) decimal.Decimal {
	if !outflow.IsPositive() {
		if inflow.IsPositive() {
			return bandFive
		}
		return bandOne
	}
	return bandFor(inflow.Div(outflow), inOutThresholds)
}

// TurnoverBand bands average turnover; undefined turnover is band 1
func TurnoverBand(turnover *decimal.Decimal) decimal.Decimal {
	if turnover == nil {
		return bandOne
	}
	return bandFor(*turnover, turnoverThresholds)
}

// ReportingBand is 1 + 4*clamp(rate, 0, 1), rounded to two places
func ReportingBand(rate decimal.Decimal) decimal.Decimal {
	r := decimal.Min(decimal.Max(rate, decimal.Zero), bandOne)
	return bandOne.Add(four.Mul(r)).Round(2)
}
