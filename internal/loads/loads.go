// Package loads presents per-meter load series from a backing store as a
// mutable, dict-like in-memory view with lazy materialization.
//
// A Cache validates meter IDs against the store's identifier set, reads each
// series from the store on first access, and afterwards serves and mutates
// only the in-memory entry. Overlay writes are never persisted; ForceRead
// discards them and restores the stored value.
//
// A Cache is not safe for concurrent use. The intended usage is
// single-process, single-goroutine analysis; callers that need sharing must
// synchronize externally.
package loads

import (
	"fmt"

	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/store"
	"github.com/xtxerr/meterload/internal/types"
)

// Cache is a lazy-loading overlay over a backing store.
type Cache struct {
	store  *store.Store
	ids    types.MeterSet
	loads  map[types.MeterID]types.Series
	closed bool
}

// Open opens the store container at path and builds a cache over the
// identifiers recognized under sel. The cache owns the store handle and
// releases it on Close.
func Open(path string, sel store.Selector) (*Cache, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := New(st, sel)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

// New builds a cache over an already-open store. The cache takes ownership
// of the store handle; Close releases it.
func New(st *store.Store, sel store.Selector) (*Cache, error) {
	ids, err := st.MeterIDs(sel)
	if err != nil {
		return nil, err
	}
	return &Cache{
		store: st,
		ids:   ids,
		loads: make(map[types.MeterID]types.Series),
	}, nil
}

// Get returns the series for id. A cached entry is returned as-is; otherwise
// the series is read from the store, cached, and returned. Fails with
// ErrUnknownMeter for IDs outside the identifier set and with ErrStoreClosed
// after Close.
func (c *Cache) Get(id types.MeterID) (types.Series, error) {
	if c.closed {
		return nil, errors.ErrStoreClosed
	}
	if !c.ids.Contains(id) {
		return nil, errors.NewUnknownMeter(int64(id))
	}
	if s, ok := c.loads[id]; ok {
		return s, nil
	}
	return c.read(id)
}

// Set overwrites the overlay entry for id without touching the backing
// store. The value is not persisted; a later ForceRead restores the stored
// series.
func (c *Cache) Set(id types.MeterID, s types.Series) error {
	if !c.ids.Contains(id) {
		return errors.NewUnknownMeter(int64(id))
	}
	c.loads[id] = s
	return nil
}

// ForceRead re-reads id from the backing store, overwriting any overlay
// entry, and returns the fresh value. Use it to discard in-memory edits.
func (c *Cache) ForceRead(id types.MeterID) (types.Series, error) {
	if c.closed {
		return nil, errors.ErrStoreClosed
	}
	if !c.ids.Contains(id) {
		return nil, errors.NewUnknownMeter(int64(id))
	}
	return c.read(id)
}

// read pulls the series from the store and caches it. Callers have already
// validated id.
func (c *Cache) read(id types.MeterID) (types.Series, error) {
	s, err := c.store.ReadSeries(id)
	if err != nil {
		return nil, err
	}
	c.loads[id] = s
	return s, nil
}

// ReadAll eagerly materializes every identifier, overwriting any overlay
// entries. This reads the whole dataset and is intended for bulk work, not
// the default path.
func (c *Cache) ReadAll() error {
	if c.closed {
		return errors.ErrStoreClosed
	}
	for _, id := range c.ids.Sorted() {
		if _, err := c.read(id); err != nil {
			return errors.Wrapf(err, "read all: meter %d", id)
		}
	}
	return nil
}

// Pop removes and returns the overlay entry for id, materializing it first
// if absent. The identifier stays valid; the next access reads from the
// store again.
func (c *Cache) Pop(id types.MeterID) (types.Series, error) {
	if !c.ids.Contains(id) {
		return nil, errors.NewUnknownMeter(int64(id))
	}
	if _, ok := c.loads[id]; !ok {
		if c.closed {
			return nil, errors.ErrStoreClosed
		}
		if _, err := c.read(id); err != nil {
			return nil, err
		}
	}
	s := c.loads[id]
	delete(c.loads, id)
	return s, nil
}

// Contains reports whether id is a valid identifier in the store. It tests
// validity, not cache residency: a valid ID that was never accessed is a
// well-formed empty-cache key.
func (c *Cache) Contains(id types.MeterID) bool {
	return c.ids.Contains(id)
}

// MeterIDs returns the identifier set as a fresh copy.
func (c *Cache) MeterIDs() types.MeterSet {
	return c.ids.Clone()
}

// Cached returns the overlay itself, not a copy: mutating entries through
// the returned map mutates the cache's internal state.
func (c *Cache) Cached() map[types.MeterID]types.Series {
	return c.loads
}

// Len returns the number of valid identifiers, cached or not.
func (c *Cache) Len() int {
	return c.ids.Len()
}

// Path returns the backing store's container path.
func (c *Cache) Path() string {
	return c.store.Path()
}

// Close releases the backing store handle. Safe to call more than once;
// reads after the first Close fail with ErrStoreClosed.
func (c *Cache) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.store.Close()
}

// String renders a short summary of the cache state.
func (c *Cache) String() string {
	return fmt.Sprintf("loads.Cache{meters: %d, cached: %d, path: %s}",
		c.ids.Len(), len(c.loads), c.store.Path())
}
