package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := doc{ID: "a", Name: "first", Count: 3, Active: true}
	require.NoError(t, s.Put(ctx, "things", "a", in))

	var out doc
	require.NoError(t, s.Get(ctx, "things", "a", &out))
	assert.Equal(t, in, out)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)

	var out doc
	err := s.Get(context.Background(), "things", "missing", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutOverwritesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a", Name: "v1"}))
	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a", Name: "v2"}))

	var out doc
	require.NoError(t, s.Get(ctx, "things", "a", &out))
	assert.Equal(t, "v2", out.Name)
}

func TestFindEqualityFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a", Name: "x", Count: 1, Active: true}))
	require.NoError(t, s.Put(ctx, "things", "b", doc{ID: "b", Name: "x", Count: 2, Active: false}))
	require.NoError(t, s.Put(ctx, "things", "c", doc{ID: "c", Name: "y", Count: 1, Active: true}))

	var byName []doc
	require.NoError(t, s.Find(ctx, "things", map[string]any{"name": "x"}, &byName))
	assert.Len(t, byName, 2)

	// Booleans are stored as JSON true/false but compared as 0/1.
	var active []doc
	require.NoError(t, s.Find(ctx, "things", map[string]any{"active": true}, &active))
	assert.Len(t, active, 2)

	var combined []doc
	require.NoError(t, s.Find(ctx, "things", map[string]any{"name": "x", "active": true}, &combined))
	require.Len(t, combined, 1)
	assert.Equal(t, "a", combined[0].ID)
}

func TestFindNoFilterReturnsAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a"}))
	require.NoError(t, s.Put(ctx, "things", "b", doc{ID: "b"}))
	require.NoError(t, s.Put(ctx, "other", "c", doc{ID: "c"}))

	var all []doc
	require.NoError(t, s.Find(ctx, "things", nil, &all))
	assert.Len(t, all, 2)
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Delete(context.Background(), "things", "missing"))
}

func TestUpdateFieldsMergesAndDeletes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users", "u1", map[string]any{
		"id":    "u1",
		"name":  "before",
		"admin": true,
	}))

	require.NoError(t, s.UpdateFields(ctx, "users", "u1", map[string]any{
		"name":    "after",
		"isAdmin": true,
		"admin":   DeleteField,
	}))

	raw, err := s.RawFields(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "after", raw["name"])
	assert.Equal(t, true, raw["isAdmin"])
	_, stillThere := raw["admin"]
	assert.False(t, stillThere)
}

func TestUpdateFieldsMissingDocument(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateFields(context.Background(), "users", "missing", map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMalformedDocumentReturnsDecodeError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A document whose shape disagrees with the target type must surface a
	// decode error, not silently nulled fields.
	require.NoError(t, s.Put(ctx, "things", "bad", map[string]any{"count": "not a number"}))

	var out doc
	err := s.Get(ctx, "things", "bad", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWatchSignalsOnWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ticks, cancel := s.Watch("things")
	defer cancel()

	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a"}))

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification after write")
	}

	// Writes to other collections never signal this watcher.
	require.NoError(t, s.Put(ctx, "other", "b", doc{ID: "b"}))
	select {
	case <-ticks:
		t.Fatal("notified for unrelated collection")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListenEmitsInitialAndUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "things", "a", doc{ID: "a"}))

	updates, stop := Listen(s, "things", func() ([]doc, bool) {
		var all []doc
		if err := s.Find(context.Background(), "things", nil, &all); err != nil {
			return nil, false
		}
		return all, true
	})
	defer stop()

	select {
	case first := <-updates:
		assert.Len(t, first, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial emission")
	}

	require.NoError(t, s.Put(ctx, "things", "b", doc{ID: "b"}))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case batch := <-updates:
			if len(batch) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("listener never delivered the second document")
		}
	}
}

func TestListenStopIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	_, stop := Listen(s, "things", func() (int, bool) { return 0, true })
	stop()
	stop()
}
