package analysis

import (
	"math/rand"

	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/loads"
	"github.com/xtxerr/meterload/internal/types"
)

// Seed bounds for auto-generated seeds.
const (
	minSeed = 1
	maxSeed = 1 << 16
)

// NewSeed draws a fresh random seed in [1, 65536). Callers that want a
// reproducible draw must record the seed they use.
func NewSeed() int64 {
	return rand.Int63n(maxSeed-minSeed) + minSeed
}

// Subset returns a pseudo-random subset of ids: a seeded permutation of the
// input order truncated to count elements. The same seed and the same input
// ordering always produce the identical subset. A count larger than the
// input returns the full permutation.
func Subset(ids []types.MeterID, count int, seed int64) ([]types.MeterID, error) {
	if count < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidSubsetSize, "%d", count)
	}
	if count > len(ids) {
		count = len(ids)
	}

	r := rand.New(rand.NewSource(seed))
	perm := r.Perm(len(ids))

	out := make([]types.MeterID, count)
	for i := 0; i < count; i++ {
		out[i] = ids[perm[i]]
	}
	return out, nil
}

// MeanSubsetLoad draws a random subset of count meters from the cache's
// identifier set and returns the per-meter mean load for each experiment
// period, along with the seed that produced the subset. A seed <= 0 requests
// a fresh seed; the effective seed is always returned so the draw can be
// reproduced later.
func MeanSubsetLoad(c *loads.Cache, count int, seed int64) ([]types.Series, int64, error) {
	if seed <= 0 {
		seed = NewSeed()
	}

	ids, err := Subset(c.MeterIDs().Sorted(), count, seed)
	if err != nil {
		return nil, seed, err
	}

	totals, err := TotalLoadInExperimentPeriods(c, ids)
	if err != nil {
		return nil, seed, err
	}

	means := make([]types.Series, len(totals))
	for i, total := range totals {
		means[i] = total.Scale(1 / float64(len(ids)))
	}
	return means, seed, nil
}
