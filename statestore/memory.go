package statestore

import (
	"bytes"
	"context"
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStateStore is an in-memory StateStore backed by a sorted B-tree.
// It is the reference implementation for tests and small embedded callers.
// Thread-safe; batches are applied under one lock acquisition, so a
// concurrent scan sees either the whole batch or none of it.
type MemoryStateStore struct {
	mu      sync.RWMutex
	entries *btree.BTreeG[Entry]
	nextErr error
	closed  bool
}

// NewMemoryStateStore creates an empty in-memory store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: btree.NewBTreeG(func(a, b Entry) bool {
			return bytes.Compare(a.Key, b.Key) < 0
		}),
	}
}

// FailNext makes the next Scan or IngestBatch return err, then clears the
// fault. Used to exercise store-outage paths in tests.
func (m *MemoryStateStore) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextErr = err
}

// Close marks the store closed; further operations return ErrClosed.
func (m *MemoryStateStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of physical entries, for tests.
func (m *MemoryStateStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.Len()
}

// Scan returns entries with the given key prefix in ascending order.
func (m *MemoryStateStore) Scan(_ context.Context, prefix []byte, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return nil, err
	}

	var out []Entry
	m.entries.Ascend(Entry{Key: prefix}, func(e Entry) bool {
		if !bytes.HasPrefix(e.Key, prefix) {
			return false
		}
		out = append(out, Entry{
			Key:   append([]byte(nil), e.Key...),
			Value: append([]byte(nil), e.Value...),
		})
		return limit <= 0 || len(out) < limit
	})
	return out, nil
}

// IngestBatch applies the writes atomically: tombstones delete, the rest
// upsert.
func (m *MemoryStateStore) IngestBatch(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}

	for _, w := range writes {
		key := append([]byte(nil), w.Key...)
		if w.Value == nil {
			m.entries.Delete(Entry{Key: key})
			continue
		}
		m.entries.Set(Entry{
			Key:   key,
			Value: append([]byte(nil), w.Value...),
		})
	}
	return nil
}

// takeFault must be called with the write lock held.
func (m *MemoryStateStore) takeFault() error {
	if m.closed {
		return ErrClosed
	}
	if err := m.nextErr; err != nil {
		m.nextErr = nil
		return err
	}
	return nil
}
