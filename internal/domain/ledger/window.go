package ledger

import "time"

// Window is a half-open date range [From, To). A nil bound is unbounded.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && !t.Before(*w.To) {
		return false
	}
	return true
}

// MonthWindow covers exactly the month of m
func MonthWindow(m time.Time) Window {
	from := MonthBucket(m)
	to := NextMonth(from)
	return Window{From: &from, To: &to}
}

// ParseWindow parses optional from/to strings. Empty strings are unbounded.
func ParseWindow(from, to string) (Window, error) {
	var w Window
	if from != "" {
		t, err := ParseDate(from)
		if err != nil {
			return Window{}, err
		}
		w.From = &t
	}
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return Window{}, err
		}
		w.To = &t
	}
	return w, nil
}
