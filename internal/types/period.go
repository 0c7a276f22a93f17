package types

import "time"

// Period is a time window with inclusive bounds. A zero Start or End leaves
// that side of the window open.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a closed period from start to end.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// Since returns a period open on the end side.
func Since(start time.Time) Period {
	return Period{Start: start}
}

// Until returns a period open on the start side.
func Until(end time.Time) Period {
	return Period{End: end}
}

// Contains reports whether the millisecond timestamp ts falls inside the
// period, bounds inclusive.
func (p Period) Contains(ts int64) bool {
	if !p.Start.IsZero() && ts < p.Start.UnixMilli() {
		return false
	}
	if !p.End.IsZero() && ts > p.End.UnixMilli() {
		return false
	}
	return true
}

// String renders the period as "start .. end" with open sides left blank.
func (p Period) String() string {
	const layout = "2006-01-02 15:04"
	s, e := "", ""
	if !p.Start.IsZero() {
		s = p.Start.UTC().Format(layout)
	}
	if !p.End.IsZero() {
		e = p.End.UTC().Format(layout)
	}
	return s + " .. " + e
}
