package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportKind identifies one of the three monthly submissions
type ReportKind string

const (
	ReportKindCashIn    ReportKind = "cash_in"
	ReportKindCashOut   ReportKind = "cash_out"
	ReportKindInventory ReportKind = "inventory"
)

// ExpectedReportKinds is the number of kinds a fully reporting month carries
const ExpectedReportKinds = 3

// AllReportKinds lists the kinds in canonical order
func AllReportKinds() []ReportKind {
	return []ReportKind{ReportKindCashIn, ReportKindCashOut, ReportKindInventory}
}

// IsValid reports whether k is a known kind
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportKindCashIn, ReportKindCashOut, ReportKindInventory:
		return true
	}
	return false
}

// ParseReportKind accepts the canonical names plus the dashless aliases
// used by older upload clients ("cashin", "cashout").
func ParseReportKind(s string) (ReportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash_in", "cashin", "cash-in":
		return ReportKindCashIn, nil
	case "cash_out", "cashout", "cash-out":
		return ReportKindCashOut, nil
	case "inventory":
		return ReportKindInventory, nil
	}
	return "", ErrInvalidKind.WithMessage(fmt.Sprintf("Unknown report kind %q", s))
}

// MonthBucket truncates t to the first day of its UTC calendar month
func MonthBucket(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month after m's month
func NextMonth(m time.Time) time.Time {
	return MonthBucket(m).AddDate(0, 1, 0)
}

// DaysInMonth returns the number of days in m's calendar month
func DaysInMonth(m time.Time) int {
	start := MonthBucket(m)
	return int(NextMonth(start).Sub(start).Hours() / 24)
}

// FormatMonth renders a month as YYYY-MM
func FormatMonth(m time.Time) string {
	return m.UTC().Format("2006-01")
}

var monthLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses the date shapes accepted from upload clients
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidMonth.WithMessage("empty date")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidMonth.WithMessage(fmt.Sprintf("Unrecognized date %q", s))
}

// ParseMonth parses s and buckets it to its month
func ParseMonth(s string) (time.Time, error) {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return MonthBucket(t), nil
}

// LockKey is the serialization token for one (unit, month, kind) import
func LockKey(kind ReportKind, unitID uuid.UUID, month time.Time) string {
	return fmt.Sprintf("import:%s:%s:%s", kind, unitID, MonthBucket(month).Format("2006-01-02"))
}

// PeriodGuard marks a (unit, month, kind) as imported. Never updated.
type PeriodGuard struct {
	UnitID    uuid.UUID
	Month     time.Time
	Kind      ReportKind
	CreatedAt time.Time
}

// NewPeriodGuard creates a guard for the bucketed month
func NewPeriodGuard(unitID uuid.UUID, month time.Time, kind ReportKind) PeriodGuard {
	return PeriodGuard{
		UnitID:    unitID,
		Month:     MonthBucket(month),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
