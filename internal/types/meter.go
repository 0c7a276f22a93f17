package types

import (
	"sort"
	"strconv"
)

// MeterID identifies one measured meter. IDs are opaque and stable for the
// lifetime of a store; the source domain uses 18-digit integers.
type MeterID int64

// String returns the decimal representation of the ID.
func (id MeterID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMeterID parses a decimal meter ID.
func ParseMeterID(s string) (MeterID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return MeterID(n), nil
}

// MeterSet is a set of meter identifiers.
type MeterSet map[MeterID]struct{}

// NewMeterSet builds a set from the given IDs.
func NewMeterSet(ids ...MeterID) MeterSet {
	s := make(MeterSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s MeterSet) Add(id MeterID) {
	s[id] = struct{}{}
}

// Contains reports whether id is a member of the set.
func (s MeterSet) Contains(id MeterID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s MeterSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order. The result is a fresh slice.
func (s MeterSet) Sorted() []MeterID {
	ids := make([]MeterID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns an independent copy of the set.
func (s MeterSet) Clone() MeterSet {
	c := make(MeterSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
