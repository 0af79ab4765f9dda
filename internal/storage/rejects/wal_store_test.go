package rejects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *WALStore {
	t.Helper()
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestWALStore_SaveAndRead(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	first := Reject{RunID: "run-a", Line: 2, Raw: "bogus", Reason: "missing required field", Time: now}
	second := Reject{RunID: "run-b", Line: 5, Raw: "refund,1,1,1", Reason: "unknown transaction kind", Time: now}
	third := Reject{RunID: "run-a", Line: 9, Raw: "deposit,1,1,x", Reason: "malformed number", Time: now}

	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))
	require.NoError(t, store.Save(third))
	assert.Equal(t, uint64(3), store.CurrentIndex())

	records, err := store.RejectsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint64(1), records[0].Index)
	assert.Equal(t, first.Raw, records[0].Reject.Raw)
	assert.True(t, first.Time.Equal(records[0].Reject.Time))

	tail, err := store.RejectsAfter(2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, 9, tail[0].Reject.Line)

	none, err := store.RejectsAfter(3)
	require.NoError(t, err)
	assert.Empty(t, none)

	runA, err := store.RunRejects("run-a")
	require.NoError(t, err)
	require.Len(t, runA, 2)
	assert.Equal(t, 2, runA[0].Reject.Line)
	assert.Equal(t, uint64(1), runA[0].Index)
	assert.Equal(t, 9, runA[1].Reject.Line)
	assert.Equal(t, uint64(3), runA[1].Index)
}

func TestWALStore_RequiresRunID(t *testing.T) {
	store := newTestStore(t)
	require.Error(t, store.Save(Reject{Line: 1}))
	assert.Equal(t, uint64(0), store.CurrentIndex())
}

func TestWALStore_NilStore(t *testing.T) {
	var store *WALStore
	require.Error(t, store.Save(Reject{RunID: "x"}))
	_, err := store.RejectsAfter(0)
	require.Error(t, err)
	assert.Equal(t, uint64(0), store.CurrentIndex())
	require.Error(t, store.Close())
}

func TestWALStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(Reject{RunID: "run-a", Line: 3, Raw: "x", Reason: "bad"}))
	require.NoError(t, store.Save(Reject{RunID: "run-a", Line: 4, Raw: "y", Reason: "bad"}))
	require.NoError(t, store.Close())

	store, err = NewWALStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, uint64(2), store.CurrentIndex())
	require.NoError(t, store.Save(Reject{RunID: "run-b", Line: 1, Raw: "z", Reason: "bad"}))

	records, err := store.RejectsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "x", records[0].Reject.Raw)
	assert.Equal(t, "run-b", records[2].Reject.RunID)
}

func TestWALStore_SkipsForeignKeys(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(Reject{RunID: "run-a", Line: 1}))
	require.NoError(t, store.wal.Write(store.CurrentIndex()+1, "other_1", []byte("{}")))
	require.NoError(t, store.Save(Reject{RunID: "run-a", Line: 2}))

	records, err := store.RejectsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Index)
	assert.Equal(t, uint64(3), records[1].Index)
}
