package aggregate

import "time"

// horizonMonths is the rolling aggregation window length.
const horizonMonths = 24

// MonthWindow is the ordered set of calendar month keys ("YYYY-MM") covered
// by one aggregation pass. Oldest first; immutable once built.
type MonthWindow struct {
	keys    []string
	members map[string]struct{}
	current string
}

// NewMonthWindow builds the 24-month horizon relative to now. With
// includeCurrent the window ends at the current calendar month, otherwise at
// the month immediately preceding it.
func NewMonthWindow(now time.Time, includeCurrent bool) MonthWindow {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !includeCurrent {
		end = end.AddDate(0, -1, 0)
	}

	w := MonthWindow{
		keys:    make([]string, 0, horizonMonths),
		members: make(map[string]struct{}, horizonMonths),
		current: MonthKey(now),
	}
	for i := horizonMonths - 1; i >= 0; i-- {
		k := MonthKey(end.AddDate(0, -i, 0))
		w.keys = append(w.keys, k)
		w.members[k] = struct{}{}
	}
	return w
}

// MonthKey formats a date as its "YYYY-MM" bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Keys returns the window months oldest first. Callers wanting newest-first
// ordering (exports) reverse a copy.
func (w MonthWindow) Keys() []string {
	out := make([]string, len(w.keys))
	copy(out, w.keys)
	return out
}

// Contains reports whether the raw month string falls inside the window.
// Membership is tested on the string itself, so a malformed month such as
// "2025-13" is simply outside.
func (w MonthWindow) Contains(month string) bool {
	_, ok := w.members[month]
	return ok
}

// Current returns the "YYYY-MM" key of the wall-clock current month the
// window was built against, whether or not the window includes it.
func (w MonthWindow) Current() string {
	return w.current
}
