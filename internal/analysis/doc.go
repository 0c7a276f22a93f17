// Package analysis implements the aggregation helpers used by the load
// prediction experiments: totals over meter subsets and time windows,
// reproducible random subset draws, and per-meter load profiles.
//
// All helpers pull series through a loads.Cache, so repeated aggregations
// over the same meters hit the in-memory overlay instead of the store.
package analysis
