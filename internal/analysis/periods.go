package analysis

import (
	"time"

	"github.com/xtxerr/meterload/internal/types"
)

// The two preselected experiment periods. They correspond to the two longest
// stretches of consecutive load values for an acceptable number of meters on
// the feeder with temperature recordings. Temperature readings start
// March 22 2004; loads start Feb 01 2004.
var (
	period1 = types.NewPeriod(
		time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC),
	)
	period2 = types.NewPeriod(
		time.Date(2005, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2006, 10, 1, 0, 0, 0, 0, time.UTC),
	)
)

// ExperimentPeriods returns the two fixed experiment periods, in order.
func ExperimentPeriods() []types.Period {
	return []types.Period{period1, period2}
}
