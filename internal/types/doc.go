// Package types defines the shared data types for the meterload module:
// meter identifiers, time-indexed load series, and analysis periods.
//
// A Series is an ordered sequence of (timestamp, value) points with strictly
// increasing millisecond timestamps. The backing store emits series already
// ordered; all operations in this package preserve that ordering.
package types
