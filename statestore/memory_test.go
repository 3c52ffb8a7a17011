package statestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_IngestAndScan(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()

	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("3")},
	}))

	entries, err := m.Scan(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Ascending regardless of ingest order.
	assert.Equal(t, []byte("a"), entries[0].Key)
	assert.Equal(t, []byte("b"), entries[1].Key)
	assert.Equal(t, []byte("c"), entries[2].Key)
}

func TestMemoryStateStore_ScanPrefixAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()

	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: []byte("x/1"), Value: []byte("a")},
		{Key: []byte("x/2"), Value: []byte("b")},
		{Key: []byte("y/1"), Value: []byte("c")},
	}))

	entries, err := m.Scan(ctx, []byte("x/"), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte("x/1"), entries[0].Key)

	entries, err = m.Scan(ctx, []byte("x/"), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = m.Scan(ctx, []byte("z/"), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStateStore_TombstoneDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()

	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}))
	// nil value = tombstone; empty non-nil value = upsert.
	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: []byte("a"), Value: nil},
		{Key: []byte("b"), Value: []byte{}},
	}))

	entries, err := m.Scan(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("b"), entries[0].Key)
	assert.Empty(t, entries[0].Value)
}

func TestMemoryStateStore_FailNext(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()
	boom := errors.New("disk on fire")

	m.FailNext(boom)
	_, err := m.Scan(ctx, nil, 0)
	assert.ErrorIs(t, err, boom)

	// The fault is one-shot.
	_, err = m.Scan(ctx, nil, 0)
	assert.NoError(t, err)

	m.FailNext(boom)
	err = m.IngestBatch(ctx, []Write{{Key: []byte("a"), Value: []byte("1")}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStateStore_Close(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()
	require.NoError(t, m.Close())

	_, err := m.Scan(ctx, nil, 0)
	assert.ErrorIs(t, err, ErrClosed)
	err = m.IngestBatch(ctx, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestKeyspace_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()

	ks1 := Root(m, 1)
	ks2 := Root(m, 2)

	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: ks1.PrefixedKey([]byte("k")), Value: []byte("one")},
		{Key: ks2.PrefixedKey([]byte("k")), Value: []byte("two")},
	}))

	entries, err := ks1.Scan(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// Keys come back with the keyspace prefix stripped.
	assert.Equal(t, []byte("k"), entries[0].Key)
	assert.Equal(t, []byte("one"), entries[0].Value)
}

func TestKeyspace_ScanSub(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStateStore()
	ks := Root(m, 7)

	require.NoError(t, m.IngestBatch(ctx, []Write{
		{Key: ks.PrefixedKey([]byte("a1")), Value: []byte("x")},
		{Key: ks.PrefixedKey([]byte("a2")), Value: []byte("y")},
		{Key: ks.PrefixedKey([]byte("b1")), Value: []byte("z")},
	}))

	entries, err := ks.ScanSub(ctx, []byte("a"), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte("a1"), entries[0].Key)
	assert.Equal(t, []byte("a2"), entries[1].Key)
}
