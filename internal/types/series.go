package types

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xtxerr/meterload/internal/errors"
)

// Point is a single load measurement.
type Point struct {
	TimestampMs int64
	Value       float64
}

// TimestampTime returns the timestamp as a time.Time.
func (p Point) TimestampTime() time.Time {
	return time.UnixMilli(p.TimestampMs)
}

// Series is an ordered sequence of load measurements with strictly increasing
// timestamps.
type Series []Point

// Len returns the number of points.
func (s Series) Len() int {
	return len(s)
}

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}

// Equal reports whether two series have identical timestamps and values.
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Restrict returns the sub-series whose timestamps fall within p, bounds
// inclusive. An open side of the period keeps the series end on that side.
// The result aliases the receiver's backing array.
func (s Series) Restrict(p Period) Series {
	lo := 0
	if !p.Start.IsZero() {
		start := p.Start.UnixMilli()
		lo = sort.Search(len(s), func(i int) bool { return s[i].TimestampMs >= start })
	}
	hi := len(s)
	if !p.End.IsZero() {
		end := p.End.UnixMilli()
		hi = sort.Search(len(s), func(i int) bool { return s[i].TimestampMs > end })
	}
	if lo > hi {
		lo = hi
	}
	return s[lo:hi]
}

// Add returns a new series with values summed point-wise. Both series must
// carry the identical timestamp index; alignment is by timestamp, not by
// position, so any mismatch fails with ErrMisalignedSeries.
func (s Series) Add(other Series) (Series, error) {
	if len(s) != len(other) {
		return nil, errors.Wrapf(errors.ErrMisalignedSeries, "length %d vs %d", len(s), len(other))
	}
	out := make(Series, len(s))
	for i := range s {
		if s[i].TimestampMs != other[i].TimestampMs {
			return nil, errors.Wrapf(errors.ErrMisalignedSeries,
				"timestamp %d vs %d at index %d", s[i].TimestampMs, other[i].TimestampMs, i)
		}
		out[i] = Point{TimestampMs: s[i].TimestampMs, Value: s[i].Value + other[i].Value}
	}
	return out, nil
}

// Scale returns a new series with every value multiplied by f.
func (s Series) Scale(f float64) Series {
	out := make(Series, len(s))
	for i := range s {
		out[i] = Point{TimestampMs: s[i].TimestampMs, Value: s[i].Value * f}
	}
	return out
}

// HasZero reports whether any point in the series has a zero value.
func (s Series) HasZero() bool {
	for i := range s {
		if s[i].Value == 0 {
			return true
		}
	}
	return false
}

// Sum returns the sum of all values.
func (s Series) Sum() float64 {
	var total float64
	for i := range s {
		total += s[i].Value
	}
	return total
}

// String renders a short preview of the series.
func (s Series) String() string {
	if len(s) == 0 {
		return "series[0]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "series[%d] %s .. %s",
		len(s),
		time.UnixMilli(s[0].TimestampMs).UTC().Format("2006-01-02 15:04"),
		time.UnixMilli(s[len(s)-1].TimestampMs).UTC().Format("2006-01-02 15:04"))
	return b.String()
}
