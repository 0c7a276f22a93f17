package analysis

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/loads"
	"github.com/xtxerr/meterload/internal/types"
)

// sketchAccuracy is the DDSketch relative accuracy used for profile
// percentiles (1% error).
const sketchAccuracy = 0.01

// Profile summarizes one meter's load inside a period.
type Profile struct {
	Meter  types.MeterID
	Period types.Period

	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Avg   float64

	// Percentiles from DDSketch; nil when the sketch could not be built.
	P50 *float64
	P90 *float64
	P95 *float64
	P99 *float64
}

// HasPercentiles reports whether percentile values are present.
func (p *Profile) HasPercentiles() bool {
	return p.P50 != nil
}

// MeterProfile computes a load profile for one meter over a period. Fails
// with ErrEmptySeries when the restriction leaves no points.
func MeterProfile(c *loads.Cache, id types.MeterID, period types.Period) (Profile, error) {
	s, err := c.Get(id)
	if err != nil {
		return Profile{}, err
	}

	window := s.Restrict(period)
	if window.Len() == 0 {
		return Profile{}, errors.Wrapf(errors.ErrEmptySeries, "meter %d in %s", id, period)
	}

	p := Profile{
		Meter:  id,
		Period: period,
		Min:    math.MaxFloat64,
		Max:    -math.MaxFloat64,
	}

	sketch, sketchErr := ddsketch.NewDefaultDDSketch(sketchAccuracy)

	for _, pt := range window {
		p.Count++
		p.Sum += pt.Value
		if pt.Value < p.Min {
			p.Min = pt.Value
		}
		if pt.Value > p.Max {
			p.Max = pt.Value
		}
		if sketchErr == nil {
			sketch.Add(pt.Value)
		}
	}
	p.Avg = p.Sum / float64(p.Count)

	if sketchErr == nil {
		p50, err50 := sketch.GetValueAtQuantile(0.50)
		p90, err90 := sketch.GetValueAtQuantile(0.90)
		p95, err95 := sketch.GetValueAtQuantile(0.95)
		p99, err99 := sketch.GetValueAtQuantile(0.99)
		if err50 == nil && err90 == nil && err95 == nil && err99 == nil {
			p.P50, p.P90, p.P95, p.P99 = &p50, &p90, &p95, &p99
		}
	}

	return p, nil
}
