package health

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// MoveMetric selects how top-moving items are scored
type MoveMetric string

const (
	MoveByValue MoveMetric = "value"
	MoveByQty   MoveMetric = "qty"
)

// ParseMoveMetric defaults to value for anything but "qty"
func ParseMoveMetric(s string) MoveMetric {
	if strings.EqualFold(strings.TrimSpace(s), string(MoveByQty)) {
		return MoveByQty
	}
	return MoveByValue
}

// ItemMovement is one item's outbound movement over the window
type ItemMovement struct {
	ItemID     uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	MovedQty   decimal.Decimal
	MovedValue decimal.Decimal
	Score      decimal.Decimal
}

// TopMovingItems sums max(begin-final, 0) per item. Moved value uses the
// item's list price. Items with a zero score are dropped unless includeZeros.
func TopMovingItems(inv []InventoryFact, metric MoveMetric, includeZeros bool) []ItemMovement {
	byItem := make(map[uuid.UUID]*ItemMovement)
	order := make([]uuid.UUID, 0)
	for _, f := range inv {
		m, ok := byItem[f.ItemID]
		if !ok {
			m = &ItemMovement{ItemID: f.ItemID, Name: f.ItemName, UnitPrice: f.ItemPrice}
			byItem[f.ItemID] = m
			order = append(order, f.ItemID)
		}
		m.MovedQty = m.MovedQty.Add(f.MovedQty())
	}

	out := make([]ItemMovement, 0, len(order))
	for _, id := range order {
		m := byItem[id]
		m.MovedValue = m.MovedQty.Mul(m.UnitPrice)
		m.Score = m.MovedValue
		if metric == MoveByQty {
			m.Score = m.MovedQty
		}
		if !includeZeros && m.Score.IsZero() {
			continue
		}
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Score.Cmp(out[j].Score); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// InventoryMeta lists the years and quarters present in inventory data
type InventoryMeta struct {
	Years          []int
	QuartersByYear map[int][]string
}

// BuildInventoryMeta collects distinct years and "Q1".."Q4" labels per year
func BuildInventoryMeta(inv []InventoryFact) InventoryMeta {
	quarters := make(map[int]map[int]struct{})
	for _, f := range inv {
		m := ledger.MonthBucket(f.Month)
		q := (int(m.Month())-1)/3 + 1
		if quarters[m.Year()] == nil {
			quarters[m.Year()] = make(map[int]struct{})
		}
		quarters[m.Year()][q] = struct{}{}
	}
	meta := InventoryMeta{QuartersByYear: make(map[int][]string, len(quarters))}
	for y, qs := range quarters {
		meta.Years = append(meta.Years, y)
		list := make([]int, 0, len(qs))
		for q := range qs {
			list = append(list, q)
		}
		sort.Ints(list)
		for _, q := range list {
			meta.QuartersByYear[y] = append(meta.QuartersByYear[y], fmt.Sprintf("Q%d", q))
		}
	}
	sort.Ints(meta.Years)
	return meta
}

// TurnoverPoint is one month of the inventory turnover trend
type TurnoverPoint struct {
	Month        time.Time
	COGS         decimal.Decimal
	BeginValue   decimal.Decimal
	EndValue     decimal.Decimal
	AvgInventory decimal.Decimal
	Turnover     *decimal.Decimal
	DaysInMonth  int
	DIODays      *decimal.Decimal
}

// TurnoverTrend values moved stock at the begin price and averages begin and
// end value per month. Turnover is rounded to 4 places and DIO to 1.
func TurnoverTrend(inv []InventoryFact) []TurnoverPoint {
	type acc struct{ cogs, begin, end decimal.Decimal }
	byMonth := make(map[time.Time]*acc)
	for _, f := range inv {
		m := ledger.MonthBucket(f.Month)
		a, ok := byMonth[m]
		if !ok {
			a = &acc{}
			byMonth[m] = a
		}
		a.cogs = a.cogs.Add(f.MovedQty().Mul(f.BeginPrice()))
		a.begin = a.begin.Add(f.BeginValue())
		a.end = a.end.Add(f.EndValue())
	}

	out := make([]TurnoverPoint, 0, len(byMonth))
	for m, a := range byMonth {
		avg := a.begin.Add(a.end).Div(two)
		p := TurnoverPoint{
			Month:        m,
			COGS:         a.cogs.Round(2),
			BeginValue:   a.begin.Round(2),
			EndValue:     a.end.Round(2),
			AvgInventory: avg.Round(2),
			DaysInMonth:  ledger.DaysInMonth(m),
		}
		if avg.IsPositive() {
			t := a.cogs.Div(avg)
			rounded := t.Round(4)
			p.Turnover = &rounded
			if t.IsPositive() {
				dio := decimal.NewFromInt(int64(p.DaysInMonth)).Div(t).Round(1)
				p.DIODays = &dio
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}
