package ingestion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

type bucketSet interface {
	HasNonCash() bool
}

// rowInput is the kind-independent view of a submitted cash row
type rowInput[B bucketSet] struct {
	sourceKey   string
	date        time.Time
	buckets     B
	link        ledger.CategoryLink
	splits      []ledger.Split
	note        string
	enteredBy   string
	fingerprint ledger.Fingerprint
}

// plannedRow is one row to persist, with its content key fixed
type plannedRow[B bucketSet] struct {
	key       string
	date      time.Time
	buckets   B
	link      ledger.CategoryLink
	split     *ledger.Split
	note      string
	enteredBy string
}

func (p plannedRow[B]) entry(unitID uuid.UUID, period time.Time, mode ledger.RowMode, categoryID *uuid.UUID) ledger.Entry {
	return ledger.Entry{
		UnitID:          unitID,
		PeriodMonth:     period,
		TransactionDate: p.date,
		Mode:            mode,
		CategoryID:      categoryID,
		Note:            p.note,
		EnteredBy:       p.enteredBy,
		ContentKey:      p.key,
	}
}

// planRows resolves each row's amount shape once and derives content keys.
// A row with splits persists only its splits, each in the cash bucket. A later
// row with the same key replaces an earlier one.
func planRows[B bucketSet](inputs []rowInput[B], cashOnly func(decimal.Decimal) B) ([]plannedRow[B], error) {
	kb := ledger.NewKeyBuilder()
	out := make([]plannedRow[B], 0, len(inputs))
	index := make(map[string]int, len(inputs))
	add := func(p plannedRow[B]) {
		if i, ok := index[p.key]; ok {
			out[i] = p
			return
		}
		index[p.key] = len(out)
		out = append(out, p)
	}

	for i, in := range inputs {
		parent := kb.Derive(in.sourceKey, in.fingerprint)
		switch shape := ledger.ResolveShape(in.splits).(type) {
		case ledger.SplitAmounts:
			if in.buckets.HasNonCash() {
				return nil, ledger.ErrInvalidSplit.WithMessage(fmt.Sprintf("Row %d: split rows may only carry cash amounts", i+1))
			}
			for _, sp := range shape.Splits {
				sp := sp
				add(plannedRow[B]{
					key:       ledger.SplitKey(parent, sp),
					date:      in.date,
					buckets:   cashOnly(sp.Amount),
					split:     &sp,
					note:      in.note,
					enteredBy: in.enteredBy,
				})
			}
		default:
			add(plannedRow[B]{
				key:       parent,
				date:      in.date,
				buckets:   in.buckets,
				link:      in.link,
				note:      in.note,
				enteredBy: in.enteredBy,
			})
		}
	}
	return out, nil
}

// rowDate defaults a missing transaction date to the period month
func rowDate(d, period time.Time) time.Time {
	if d.IsZero() {
		return period
	}
	return d.UTC()
}

func planCashIn(unitID uuid.UUID, period time.Time, rows []ledger.CashInRow) ([]plannedRow[ledger.CashInBuckets], error) {
	inputs := make([]rowInput[ledger.CashInBuckets], 0, len(rows))
	for _, r := range rows {
		r.TransactionDate = rowDate(r.TransactionDate, period)
		inputs = append(inputs, rowInput[ledger.CashInBuckets]{
			sourceKey:   r.SourceKey,
			date:        r.TransactionDate,
			buckets:     r.Buckets,
			link:        r.Link,
			splits:      r.Splits,
			note:        r.Note,
			enteredBy:   r.EnteredBy,
			fingerprint: ledger.CashInFingerprint(unitID, period, r),
		})
	}
	return planRows(inputs, func(d decimal.Decimal) ledger.CashInBuckets {
		return ledger.CashInBuckets{Cash: d}
	})
}

func planCashOut(unitID uuid.UUID, period time.Time, rows []ledger.CashOutRow) ([]plannedRow[ledger.CashOutBuckets], error) {
	inputs := make([]rowInput[ledger.CashOutBuckets], 0, len(rows))
	for _, r := range rows {
		r.TransactionDate = rowDate(r.TransactionDate, period)
		inputs = append(inputs, rowInput[ledger.CashOutBuckets]{
			sourceKey:   r.SourceKey,
			date:        r.TransactionDate,
			buckets:     r.Buckets,
			link:        r.Link,
			splits:      r.Splits,
			note:        r.Note,
			enteredBy:   r.EnteredBy,
			fingerprint: ledger.CashOutFingerprint(unitID, period, r),
		})
	}
	return planRows(inputs, func(d decimal.Decimal) ledger.CashOutBuckets {
		return ledger.CashOutBuckets{Cash: d}
	})
}

// keySet tracks content keys
type keySet map[string]struct{}

func (k keySet) add(key string) { k[key] = struct{}{} }

// missingFrom returns keys of k that are not in other
func (k keySet) missingFrom(other keySet) []string {
	var out []string
	for key := range k {
		if _, ok := other[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// categorySet tracks category ids whose totals need recomputing
type categorySet map[uuid.UUID]struct{}

func (c categorySet) add(id *uuid.UUID) {
	if id != nil && *id != uuid.Nil {
		c[*id] = struct{}{}
	}
}

func (c categorySet) ids() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	return out
}
