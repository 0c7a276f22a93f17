package loads

import (
	"testing"

	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/store"
	"github.com/xtxerr/meterload/internal/storetest"
)

func openFixture(t *testing.T, sel store.Selector) *Cache {
	t.Helper()
	dir := storetest.Build(t,
		storetest.Meter{ID: 1, Experiment: true, Series: storetest.Hourly(storetest.Start, 1, 2, 3)},
		storetest.Meter{ID: 2, Experiment: true, Series: storetest.Hourly(storetest.Start, 10, 20, 30)},
		storetest.Meter{ID: 3, Experiment: false, Series: storetest.Hourly(storetest.Start, 5, 5, 5)},
	)
	c, err := Open(dir, sel)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetFirstReadMatchesStore(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := storetest.Hourly(storetest.Start, 1, 2, 3)
	if !got.Equal(want) {
		t.Errorf("first read mismatch:\n got %v\nwant %v", got, want)
	}

	// Second read returns the cached entry itself, not a copy.
	again, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	again[0].Value = 99
	third, _ := c.Get(1)
	if third[0].Value != 99 {
		t.Error("Get must return the cached value by identity")
	}
}

func TestSetOverlayVisibleAndNotPersisted(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	edited := storetest.Hourly(storetest.Start, 100, 200, 300)
	if err := c.Set(1, edited); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(edited) {
		t.Error("overlay write must be immediately visible")
	}

	// ForceRead discards the edit and restores the stored value.
	fresh, err := c.ForceRead(1)
	if err != nil {
		t.Fatalf("ForceRead: %v", err)
	}
	want := storetest.Hourly(storetest.Start, 1, 2, 3)
	if !fresh.Equal(want) {
		t.Errorf("ForceRead should restore stored value, got %v", fresh)
	}
	cached, _ := c.Get(1)
	if !cached.Equal(want) {
		t.Error("ForceRead should re-cache the stored value")
	}
}

func TestSetUnknownMeter(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if err := c.Set(4, storetest.Hourly(storetest.Start, 1)); !errors.Is(err, errors.ErrUnknownMeter) {
		t.Errorf("expected ErrUnknownMeter, got %v", err)
	}
}

func TestPop(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	// Pop on a never-accessed ID materializes first.
	got, err := c.Pop(2)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	want := storetest.Hourly(storetest.Start, 10, 20, 30)
	if !got.Equal(want) {
		t.Errorf("Pop value mismatch: got %v", got)
	}

	if _, ok := c.Cached()[2]; ok {
		t.Error("popped entry must be absent from the overlay")
	}
	if !c.Contains(2) {
		t.Error("popped ID must stay valid")
	}
	if !c.MeterIDs().Contains(2) {
		t.Error("popped ID must stay in the identifier set")
	}

	// Next access reads from the store again.
	again, err := c.Get(2)
	if err != nil {
		t.Fatalf("Get after Pop: %v", err)
	}
	if !again.Equal(want) {
		t.Errorf("re-read after Pop mismatch: got %v", again)
	}

	if _, err := c.Pop(42); !errors.Is(err, errors.ErrUnknownMeter) {
		t.Errorf("expected ErrUnknownMeter, got %v", err)
	}
}

func TestGetUnknownMeter(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if _, err := c.Get(4); !errors.Is(err, errors.ErrUnknownMeter) {
		t.Errorf("expected ErrUnknownMeter, got %v", err)
	}
}

func TestContainsTestsValidityNotResidency(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	// Nothing read yet, but all IDs are valid.
	if !c.Contains(1) || !c.Contains(2) || !c.Contains(3) {
		t.Error("valid IDs must be contained before any access")
	}
	if c.Contains(4) {
		t.Error("unknown ID must not be contained")
	}
	if len(c.Cached()) != 0 {
		t.Errorf("overlay should start empty, has %d entries", len(c.Cached()))
	}
}

func TestExperimentSelector(t *testing.T) {
	c := openFixture(t, store.SelectorExperiment)

	if c.Len() != 2 {
		t.Errorf("expected 2 experiment meters, got %d", c.Len())
	}
	if c.Contains(3) {
		t.Error("meter 3 is outside the experiment subset")
	}
	if _, err := c.Get(3); !errors.Is(err, errors.ErrUnknownMeter) {
		t.Errorf("expected ErrUnknownMeter for out-of-subset meter, got %v", err)
	}
}

func TestReadAll(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if err := c.ReadAll(); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(c.Cached()) != 3 {
		t.Errorf("expected 3 cached entries, got %d", len(c.Cached()))
	}

	// ReadAll overwrites overlay edits.
	c.Set(1, storetest.Hourly(storetest.Start, 0, 0, 0))
	if err := c.ReadAll(); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	got, _ := c.Get(1)
	if !got.Equal(storetest.Hourly(storetest.Start, 1, 2, 3)) {
		t.Error("ReadAll should overwrite overlay entries with stored values")
	}
}

func TestCachedIsLiveView(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if _, err := c.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}

	edited := storetest.Hourly(storetest.Start, 7, 7, 7)
	c.Cached()[1] = edited

	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(edited) {
		t.Error("mutations through Cached() must affect the cache directly")
	}
}

func TestClose(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if _, err := c.Get(1); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := c.Get(1); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Get after Close: expected ErrStoreClosed, got %v", err)
	}
	if _, err := c.ForceRead(1); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("ForceRead after Close: expected ErrStoreClosed, got %v", err)
	}
	if err := c.ReadAll(); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("ReadAll after Close: expected ErrStoreClosed, got %v", err)
	}
}

func TestLenAndPath(t *testing.T) {
	c := openFixture(t, store.SelectorAll)

	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
	if c.Path() == "" {
		t.Error("Path should report the container directory")
	}
	if c.String() == "" {
		t.Error("String should render a summary")
	}
}

func TestNewWithOwnStore(t *testing.T) {
	dir := storetest.Build(t,
		storetest.Meter{ID: 1, Experiment: false, Series: storetest.Hourly(storetest.Start, 1)},
	)
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	c, err := New(st, store.SelectorAll)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("expected 1 point, got %d", got.Len())
	}

	// Cache owns the handle: closing the cache closes the store.
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := st.ReadSeries(1); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed from underlying store, got %v", err)
	}
}
