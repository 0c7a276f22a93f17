// Package store implements the read-only backing store for per-meter load
// series.
//
// A store is a directory container holding two Parquet files:
//
//	meters.parquet   one row per meter: meter_id, experiment flag
//	loads.parquet    measurement rows: meter_id, timestamp_ms, value
//
// The meters file is the authoritative enumeration of valid identifiers; the
// experiment flag marks the curated subset selected for the prediction
// experiments. Containers are written once by Writer and never modified
// afterwards.
//
// Reads go through DuckDB: each per-meter lookup is a SQL query over the
// loads file, returning an ordered series. The store is purely read-only
// after Open; Close releases the query engine, after which all reads fail
// with ErrClosed.
package store
