package panecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "panes"))
}

func TestLookupMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Lookup(Key{Slot: 0, Mode: ModeVSplit})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutThenLookup(t *testing.T) {
	store := newTestStore(t)
	key := Key{Slot: 3, Mode: ModeVSplit}

	require.NoError(t, store.Put(key, "%5"))

	id, ok, err := store.Lookup(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "%5", id)
}

func TestPutSupersedesSameKey(t *testing.T) {
	store := newTestStore(t)
	key := Key{Slot: 1, Mode: ModeHSplit}

	require.NoError(t, store.Put(key, "%2"))
	require.NoError(t, store.Put(key, "%7"))

	id, ok, err := store.Lookup(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "%7", id)

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1, "exactly one entry per key after any sequence of stores")
}

func TestKeysAreIndependent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(Key{Slot: 0, Mode: ModeVSplit}, "%1"))
	require.NoError(t, store.Put(Key{Slot: 0, Mode: ModeHSplit}, "%2"))
	require.NoError(t, store.Put(Key{Slot: 1, Mode: ModeVSplit}, "%3"))

	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	id, ok, err := store.Lookup(Key{Slot: 0, Mode: ModeHSplit})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "%2", id)
}

func TestGCDropsExactlyDeadEntries(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(Key{Slot: 0, Mode: ModeVSplit}, "%1"))
	require.NoError(t, store.Put(Key{Slot: 1, Mode: ModeVSplit}, "%2"))
	require.NoError(t, store.Put(Key{Slot: 2, Mode: ModeHSplit}, "%3"))

	require.NoError(t, store.GC(map[string]bool{"%1": true, "%3": true}))

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "%1", entries[0].PaneID)
	assert.Equal(t, "%3", entries[1].PaneID)
}

func TestGCOnEmptyStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.GC(map[string]bool{"%9": true}))
}

func TestStaleLookupAfterGC(t *testing.T) {
	// Cache holds 3:vsplit:%5. While %5 is live, lookup finds it; once
	// only %9 survives, the entry is purged and lookup comes back empty.
	dir := t.TempDir()
	path := filepath.Join(dir, "panes")
	require.NoError(t, os.WriteFile(path, []byte("3:vsplit:%5\n"), 0o644))
	store := New(path)

	key := Key{Slot: 3, Mode: ModeVSplit}

	id, ok, err := store.Lookup(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "%5", id)

	require.NoError(t, store.GC(map[string]bool{"%9": true}))

	_, ok, err = store.Lookup(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panes")
	content := "garbage\n2:vsplit:%4\n9:notamode:%5\nx:vsplit:%6\n1:hsplit:\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	store := New(path)

	entries, err := store.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Key{Slot: 2, Mode: ModeVSplit}, entries[0].Key)
}

func TestWriteIsAtomicOnDiskFormat(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(Key{Slot: 3, Mode: ModeVSplit}, "%5"))

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Equal(t, "3:vsplit:%5\n", string(data))

	_, err = os.Stat(store.path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not linger after a write")
}

func TestModeTagRoundTrip(t *testing.T) {
	for _, mode := range []SplitMode{ModeWindow, ModeVSplit, ModeHSplit} {
		parsed, ok := ParseMode(mode.Tag())
		assert.True(t, ok)
		assert.Equal(t, mode, parsed)
	}

	_, ok := ParseMode("diagonal")
	assert.False(t, ok)
}
