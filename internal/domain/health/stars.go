package health

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

var (
	compositeFloor = decimal.NewFromInt(4)
	compositeSpan  = decimal.NewFromInt(16)
	starWidth      = decimal.NewFromInt(20)
)

// StarPoint is one unit-month on the star-rating trend
type StarPoint struct {
	UnitID uuid.UUID
	Name   string
	Month  time.Time
	Score  decimal.Decimal
	Stars  decimal.Decimal
}

// MonthScore maps a single month's composite onto 0..100
func MonthScore(a MonthlyAggregate) decimal.Decimal {
	t := Totals([]MonthlyAggregate{a})
	c := BandTotals(t).Composite()
	return c.Sub(compositeFloor).Div(compositeSpan).Mul(hundred)
}

// HalfStars rounds a 0..100 score to the nearest half star out of five
func HalfStars(score decimal.Decimal) decimal.Decimal {
	return score.Div(starWidth).Mul(two).Round(0).Div(two)
}

// StarTrend scores every enumerated unit-month. When limit > 0 only the
// units with the best average score are kept.
func StarTrend(units []ledger.Unit, aggs []MonthlyAggregate, limit int) []StarPoint {
	names := make(map[uuid.UUID]string, len(units))
	for _, u := range units {
		names[u.ID] = u.Name
	}

	type avg struct {
		id  uuid.UUID
		sum decimal.Decimal
		n   int64
	}
	avgs := make(map[uuid.UUID]*avg)
	var points []StarPoint
	for _, a := range aggs {
		name, ok := names[a.UnitID]
		if !ok {
			continue
		}
		score := MonthScore(a)
		points = append(points, StarPoint{
			UnitID: a.UnitID,
			Name:   name,
			Month:  a.Month,
			Score:  score.Round(1),
			Stars:  HalfStars(score),
		})
		v, ok := avgs[a.UnitID]
		if !ok {
			v = &avg{id: a.UnitID}
			avgs[a.UnitID] = v
		}
		v.sum = v.sum.Add(score)
		v.n++
	}

	if limit > 0 && len(avgs) > limit {
		ranked := make([]*avg, 0, len(avgs))
		for _, v := range avgs {
			ranked = append(ranked, v)
		}
		sort.Slice(ranked, func(i, j int) bool {
			ai := ranked[i].sum.Div(decimal.NewFromInt(ranked[i].n))
			aj := ranked[j].sum.Div(decimal.NewFromInt(ranked[j].n))
			if c := ai.Cmp(aj); c != 0 {
				return c > 0
			}
			return lessID(ranked[i].id, ranked[j].id)
		})
		keep := make(map[uuid.UUID]struct{}, limit)
		for _, v := range ranked[:limit] {
			keep[v.id] = struct{}{}
		}
		filtered := points[:0]
		for _, p := range points {
			if _, ok := keep[p.UnitID]; ok {
				filtered = append(filtered, p)
			}
		}
		points = filtered
	}

	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Month.Equal(points[j].Month) {
			return points[i].Month.Before(points[j].Month)
		}
		return lessID(points[i].UnitID, points[j].UnitID)
	})
	return points
}
