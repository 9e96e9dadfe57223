package health

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(ledger.ExpectedReportKinds)
)

// MonthlyAggregate is one unit-month of joined ledger activity
type MonthlyAggregate struct {
	UnitID       uuid.UUID
	Month        time.Time
	Inflow       decimal.Decimal
	Outflow      decimal.Decimal
	Purchases    decimal.Decimal
	BeginValue   decimal.Decimal
	EndValue     decimal.Decimal
	COGS         decimal.Decimal
	AvgInventory decimal.Decimal
	// Turnover is nil when average inventory is not positive
	Turnover     *decimal.Decimal
	ReportCount  int
	Completeness decimal.Decimal
}

// Complete reports whether all three report kinds were submitted
func (a MonthlyAggregate) Complete() bool {
	return a.ReportCount >= ledger.ExpectedReportKinds
}

type unitMonth struct {
	unit  uuid.UUID
	month time.Time
}

type monthAccumulator struct {
	inflow, outflow, purchases decimal.Decimal
	beginValue, endValue       decimal.Decimal
	kinds                      map[ledger.ReportKind]struct{}
}

// ComputeMonthly joins the three ledger kinds and the guards on (unit, month).
// Cash rows are bucketed by their reporting month. A unit-month appears when
// at least one source has an entry for it; silent months are not zero-filled.
func ComputeMonthly(f Facts) []MonthlyAggregate {
	acc := make(map[unitMonth]*monthAccumulator)
	get := func(unit uuid.UUID, t time.Time) *monthAccumulator {
		k := unitMonth{unit: unit, month: ledger.MonthBucket(t)}
		a, ok := acc[k]
		if !ok {
			a = &monthAccumulator{kinds: make(map[ledger.ReportKind]struct{})}
			acc[k] = a
		}
		return a
	}

	for _, r := range f.CashIn {
		a := get(r.UnitID, r.PeriodMonth)
		a.inflow = a.inflow.Add(r.Buckets.Revenue())
	}
	for _, r := range f.CashOut {
		a := get(r.UnitID, r.PeriodMonth)
		a.outflow = a.outflow.Add(r.Buckets.Total())
		a.purchases = a.purchases.Add(r.Buckets.Inventory)
	}
	for _, r := range f.Inventory {
		a := get(r.UnitID, r.Month)
		a.beginValue = a.beginValue.Add(r.BeginValue())
		a.endValue = a.endValue.Add(r.EndValue())
	}
	for _, g := range f.Guards {
		a := get(g.UnitID, g.Month)
		a.kinds[g.Kind] = struct{}{}
	}

	out := make([]MonthlyAggregate, 0, len(acc))
	for k, a := range acc {
		cogs := decimal.Max(a.beginValue.Add(a.purchases).Sub(a.endValue), decimal.Zero)
		avg := a.beginValue.Add(a.endValue).Div(two)
		var turnover *decimal.Decimal
		if avg.IsPositive() {
			t := cogs.Div(avg)
			turnover = &t
		}
		count := len(a.kinds)
		out = append(out, MonthlyAggregate{
			UnitID:       k.unit,
			Month:        k.month,
			Inflow:       a.inflow,
			Outflow:      a.outflow,
			Purchases:    a.purchases,
			BeginValue:   a.beginValue,
			EndValue:     a.endValue,
			COGS:         cogs,
			AvgInventory: avg,
			Turnover:     turnover,
			ReportCount:  count,
			Completeness: decimal.NewFromInt(int64(count)).Div(three),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitID != out[j].UnitID {
			return out[i].UnitID.String() < out[j].UnitID.String()
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// MonthsPresent lists the distinct months of the aggregates as YYYY-MM, ascending
func MonthsPresent(aggs []MonthlyAggregate) []string {
	seen := make(map[string]struct{})
	for _, a := range aggs {
		seen[ledger.FormatMonth(a.Month)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// GroupByUnit indexes aggregates by unit, preserving month order
func GroupByUnit(aggs []MonthlyAggregate) map[uuid.UUID][]MonthlyAggregate {
	out := make(map[uuid.UUID][]MonthlyAggregate)
	for _, a := range aggs {
		out[a.UnitID] = append(out[a.UnitID], a)
	}
	return out
}
