package health

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Heatmap is the unit x indicator grid plus the months with any data
type Heatmap struct {
	Months []string
	Rows   []HealthScore
}

// BuildHeatmap keeps the ranked order of scores
func BuildHeatmap(scores []HealthScore, aggs []MonthlyAggregate) Heatmap {
	rows := make([]HealthScore, len(scores))
	copy(rows, scores)
	Rank(rows)
	return Heatmap{Months: MonthsPresent(aggs), Rows: rows}
}

// CategoryHealth is the red/moderate/healthy split of one indicator
type CategoryHealth struct {
	Indicator   Indicator
	Red         int
	Moderate    int
	Healthy     int
	RedPct      decimal.Decimal
	ModeratePct decimal.Decimal
	HealthyPct  decimal.Decimal
}

// Overview summarizes unit counts and per-indicator health over eligible units
type Overview struct {
	UnitCount      int
	WithFinancials int
	NoData         int
	Flagged        int
	Healthy        int
	Moderate       int
	Categories     []CategoryHealth
}

var hundred = decimal.NewFromInt(100)

func pctOf(n, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(n)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1)
}

// BuildOverview counts every unit in the total but only eligible units in
// the health buckets. Percentages use the eligible count as denominator.
func BuildOverview(scores []HealthScore) Overview {
	o := Overview{UnitCount: len(scores)}
	counts := make(map[Indicator]*CategoryHealth)
	for _, ind := range Indicators() {
		counts[ind] = &CategoryHealth{Indicator: ind}
	}
	for _, s := range scores {
		if !s.Eligible {
			continue
		}
		o.WithFinancials++
		if s.Flagged {
			o.Flagged++
		}
		if s.Healthy {
			o.Healthy++
		}
		for _, ind := range Indicators() {
			c := counts[ind]
			switch s.Level(ind) {
			case LevelRed:
				c.Red++
			case LevelModerate:
				c.Moderate++
			default:
				c.Healthy++
			}
		}
	}
	o.NoData = o.UnitCount - o.WithFinancials
	if m := o.WithFinancials - o.Flagged - o.Healthy; m > 0 {
		o.Moderate = m
	}
	for _, ind := range Indicators() {
		c := counts[ind]
		c.RedPct = pctOf(c.Red, o.WithFinancials)
		c.ModeratePct = pctOf(c.Moderate, o.WithFinancials)
		c.HealthyPct = pctOf(c.Healthy, o.WithFinancials)
		o.Categories = append(o.Categories, *c)
	}
	return o
}

// FlaggedUnits returns eligible units with more than two red indicators,
// most red first, then worst composite, then name
func FlaggedUnits(scores []HealthScore) []HealthScore {
	var out []HealthScore
	for _, s := range scores {
		if s.Flagged {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RedCount != out[j].RedCount {
			return out[i].RedCount > out[j].RedCount
		}
		if c := out[i].Composite.Cmp(out[j].Composite); c != 0 {
			return c < 0
		}
		return out[i].Unit.Name < out[j].Unit.Name
	})
	return out
}
