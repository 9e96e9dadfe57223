package health

import (
	"sort"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Indicator names one of the four banded sub-scores
type Indicator string

const (
	IndicatorCashMargin Indicator = "Cash Margin"
	IndicatorInOutRatio Indicator = "In/Out Ratio"
	IndicatorTurnover   Indicator = "Inventory Turnover"
	IndicatorReporting  Indicator = "Reporting"
)

// Indicators lists the indicators in display order
func Indicators() []Indicator {
	return []Indicator{IndicatorCashMargin, IndicatorInOutRatio, IndicatorTurnover, IndicatorReporting}
}

// Level is the red/amber/green classification of a band
type Level string

const (
	LevelRed      Level = "red"
	LevelModerate Level = "moderate"
	LevelHealthy  Level = "healthy"
)

var (
	redCeiling      = decimal.RequireFromString("1.5")
	moderateCeiling = decimal.NewFromInt(3)
)

// LevelOf classifies a band: <=1.5 red, <=3 moderate, otherwise healthy
func LevelOf(band decimal.Decimal) Level {
	switch {
	case band.LessThanOrEqual(redCeiling):
		return LevelRed
	case band.LessThanOrEqual(moderateCeiling):
		return LevelModerate
	default:
		return LevelHealthy
	}
}

// Bands holds the four sub-scores of a unit
type Bands struct {
	CashMargin decimal.Decimal
	InOutRatio decimal.Decimal
	Turnover   decimal.Decimal
	Reporting  decimal.Decimal
}

// Of returns the band for an indicator
func (b Bands) Of(ind Indicator) decimal.Decimal {
	switch ind {
	case IndicatorCashMargin:
		return b.CashMargin
	case IndicatorInOutRatio:
		return b.InOutRatio
	case IndicatorTurnover:
		return b.Turnover
	default:
		return b.Reporting
	}
}

// Composite is the sum of the four bands (4..20)
func (b Bands) Composite() decimal.Decimal {
	return b.CashMargin.Add(b.InOutRatio).Add(b.Turnover).Add(b.Reporting)
}

// WindowTotals is one unit's aggregates collapsed over the window
type WindowTotals struct {
	Inflow         decimal.Decimal
	Outflow        decimal.Decimal
	AvgTurnover    *decimal.Decimal
	ReportingRate  decimal.Decimal
	Months         int
	EligibleMonths int
}

// Net is inflow minus outflow
func (t WindowTotals) Net() decimal.Decimal {
	return t.Inflow.Sub(t.Outflow)
}

// Totals sums inflow and outflow, averages the defined turnovers and the
// completeness of every enumerated month
func Totals(months []MonthlyAggregate) WindowTotals {
	var t WindowTotals
	turnSum := decimal.Zero
	turnN := 0
	rateSum := decimal.Zero
	for _, m := range months {
		t.Inflow = t.Inflow.Add(m.Inflow)
		t.Outflow = t.Outflow.Add(m.Outflow)
		if m.Turnover != nil {
			turnSum = turnSum.Add(*m.Turnover)
			turnN++
		}
		rateSum = rateSum.Add(m.Completeness)
		if m.Complete() {
			t.EligibleMonths++
		}
		t.Months++
	}
	if turnN > 0 {
		avg := turnSum.Div(decimal.NewFromInt(int64(turnN)))
		t.AvgTurnover = &avg
	}
	if t.Months > 0 {
		t.ReportingRate = rateSum.Div(decimal.NewFromInt(int64(t.Months)))
	}
	return t
}

// HealthScore is the banded result for one unit over a window
type HealthScore struct {
	Unit      ledger.Unit
	Totals    WindowTotals
	Bands     Bands
	Composite decimal.Decimal
	// Eligible units have at least one month with all three reports
	Eligible bool
	RedCount int
	Flagged  bool
	Healthy  bool
}

// Level classifies one indicator of the score
func (s HealthScore) Level(ind Indicator) Level {
	return LevelOf(s.Bands.Of(ind))
}

// BandTotals maps window totals onto the four bands
func BandTotals(t WindowTotals) Bands {
	return Bands{
		CashMargin: CashMarginBand(t.Inflow, t.Outflow),
		InOutRatio: InOutRatioBand(t.Inflow, t.Outflow),
		Turnover:   TurnoverBand(t.AvgTurnover),
		Reporting:  ReportingBand(t.ReportingRate),
	}
}

// Score bands a unit's months. Red counts and the flagged/healthy flags are
// only set for eligible units.
func Score(unit ledger.Unit, months []MonthlyAggregate) HealthScore {
	totals := Totals(months)
	bands := BandTotals(totals)
	s := HealthScore{
		Unit:      unit,
		Totals:    totals,
		Bands:     bands,
		Composite: bands.Composite(),
		Eligible:  totals.EligibleMonths > 0,
	}
	if !s.Eligible {
		return s
	}
	healthy := true
	for _, ind := range Indicators() {
		switch s.Level(ind) {
		case LevelRed:
			s.RedCount++
			healthy = false
		case LevelModerate:
			healthy = false
		}
	}
	s.Flagged = s.RedCount > 2
	s.Healthy = healthy
	return s
}

// ScoreAll scores every unit against the aggregates and ranks them worst first
func ScoreAll(units []ledger.Unit, aggs []MonthlyAggregate) []HealthScore {
	byUnit := GroupByUnit(aggs)
	out := make([]HealthScore, 0, len(units))
	for _, u := range units {
		out = append(out, Score(u, byUnit[u.ID]))
	}
	Rank(out)
	return out
}

// Rank orders scores by composite ascending, then display name, then id
func Rank(scores []HealthScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if c := scores[i].Composite.Cmp(scores[j].Composite); c != 0 {
			return c < 0
		}
		if scores[i].Unit.Name != scores[j].Unit.Name {
			return scores[i].Unit.Name < scores[j].Unit.Name
		}
		return lessID(scores[i].Unit.ID, scores[j].Unit.ID)
	})
}

func lessID(a, b uuid.UUID) bool {
	return a.String() < b.String()
}
