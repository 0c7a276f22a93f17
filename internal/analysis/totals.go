package analysis

import (
	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/loads"
	"github.com/xtxerr/meterload/internal/types"
)

// TotalLoad sums the load of the given meters over period. Each series is
// restricted to the period and the restrictions are added point-wise, so
// all meters must share the same timestamp index within the period.
//
// Fails with ErrEmptyMeterSet for an empty id list: with no series there is
// no defined timestamp index for a zero total.
func TotalLoad(c *loads.Cache, ids []types.MeterID, period types.Period) (types.Series, error) {
	if len(ids) == 0 {
		return nil, errors.ErrEmptyMeterSet
	}

	first, err := c.Get(ids[0])
	if err != nil {
		return nil, err
	}
	total := first.Restrict(period).Clone()

	for _, id := range ids[1:] {
		s, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		total, err = total.Add(s.Restrict(period))
		if err != nil {
			return nil, errors.Wrapf(err, "meter %d", id)
		}
	}
	return total, nil
}

// TotalLoadInExperimentPeriods returns the total load of the given meters
// for each experiment period, in period order.
func TotalLoadInExperimentPeriods(c *loads.Cache, ids []types.MeterID) ([]types.Series, error) {
	periods := ExperimentPeriods()
	totals := make([]types.Series, 0, len(periods))
	for _, p := range periods {
		total, err := TotalLoad(c, ids, p)
		if err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, nil
}

// TotalExperimentLoad returns the total load over the experiment periods for
// every meter in the cache's identifier set.
func TotalExperimentLoad(c *loads.Cache) ([]types.Series, error) {
	return TotalLoadInExperimentPeriods(c, c.MeterIDs().Sorted())
}

// NonZeroMeters returns the meters whose series has no zero reading inside
// the second experiment period. Meters with zero readings there make ratio
// error measures useless, so prediction scoring is restricted to this list.
func NonZeroMeters(c *loads.Cache) ([]types.MeterID, error) {
	var out []types.MeterID
	for _, id := range c.MeterIDs().Sorted() {
		s, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		if !s.Restrict(period2).HasZero() {
			out = append(out, id)
		}
	}
	return out, nil
}
