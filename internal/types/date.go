package types

import "time"

// DateLayout is the canonical rendering of every date index.
const DateLayout = "2006-01-02"

// TruncateToDate drops the time of day, keeping the calendar date as seen in t's own location.
func TruncateToDate(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days covered by the range.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}

	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
