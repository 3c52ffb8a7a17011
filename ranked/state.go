// Package ranked implements the managed state of a continuously updated
// ranked window: the live ORDER BY ... LIMIT/OFFSET slice of an unbounded
// stream of row inserts and deletes.
//
// Rows inside the window may migrate across its edges as neighbors arrive
// and leave, so State caches both ends of the logical key range in two
// bounded sorted maps and keeps the middle only in the persistent store.
// Pending changes accumulate in a delta tracker and become durable in one
// atomic batch when the owning executor flushes at a checkpoint barrier.
//
// State performs no internal locking: the executor's single-owner-per-
// partition model guarantees one operation in flight at a time.
package ranked

import (
	"context"
	"fmt"
	"time"

	"github.com/xiaoyong-z/streamstate"
	"github.com/xiaoyong-z/streamstate/sortkey"
	"github.com/xiaoyong-z/streamstate/statestore"
	"github.com/xiaoyong-z/streamstate/value"
)

// State is the managed ranked-window state of one stream partition.
type State struct {
	cache   *dualCache
	tracker *deltaTracker

	// totalCount is the number of logical rows across cache and storage,
	// the single source of truth for whether the window is empty.
	totalCount uint64

	keyspace statestore.Keyspace
	schema   []value.Type
	keyCodec *sortkey.Codec

	logger  *streamstate.Logger
	metrics Observer
}

// New constructs the state for one stream partition. The schema lists the
// row's column types (for decoding the cell-based storage format) and
// keyCodec reflects the window's per-column sort directions.
func New(ks statestore.Keyspace, schema []value.Type, keyCodec *sortkey.Codec, opts ...Option) *State {
	o := options{
		logger:  streamstate.NoopLogger(),
		metrics: &NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &State{
		cache:      newDualCache(o.bottomCapacity, o.topCapacity),
		tracker:    newDeltaTracker(),
		totalCount: o.recoveredCount,
		keyspace:   ks,
		schema:     schema,
		keyCodec:   keyCodec,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

// TotalCount returns the number of logical rows across cache and storage.
func (s *State) TotalCount() uint64 { return s.totalCount }

// IsDirty reports whether unflushed deltas exist.
func (s *State) IsDirty() bool { return s.tracker.len() > 0 }

// CachedLen returns the number of cached entries, for tests and
// introspection.
func (s *State) CachedLen() int { return s.cache.len() }

// Insert records a new row for the given key. The key must not currently
// exist in the window.
func (s *State) Insert(key sortkey.Key, row value.Row) error {
	if err := row.Validate(s.schema); err != nil {
		return fmt.Errorf("ranked: insert: %w", err)
	}
	encoded, err := s.keyCodec.Encode(key)
	if err != nil {
		return fmt.Errorf("ranked: insert: %w", err)
	}
	s.cache.insert(cacheEntry{key: encoded, el: Element{Key: key, Row: row}})
	s.tracker.recordInsert(encoded, row)
	s.totalCount++
	return nil
}

// Delete removes the row under the given key and returns it. Deleting a
// key that is neither cached, pending, nor stored is a contract violation
// and panics: continuing would silently corrupt TotalCount.
//
// If the deletion drains both caches while rows remain in storage, the
// caches are rebuilt synchronously before returning, which is the only
// storage I/O this method can perform.
func (s *State) Delete(ctx context.Context, key sortkey.Key) (value.Row, error) {
	if s.totalCount == 0 {
		panic(fmt.Sprintf("ranked: delete of key %v from an empty window", key))
	}
	encoded, err := s.keyCodec.Encode(key)
	if err != nil {
		return nil, fmt.Errorf("ranked: delete: %w", err)
	}
	prior, err := s.takeRow(ctx, encoded, key)
	if err != nil {
		return nil, err
	}
	s.tracker.recordDelete(encoded)
	s.totalCount--
	if s.cache.len() == 0 && s.totalCount > 0 {
		if err := s.reconcile(ctx); err != nil {
			return nil, err
		}
	}
	return prior, nil
}

// takeRow locates the row being deleted: in a cache, as a pending insert,
// or in storage (a row that was evicted into the uncached middle).
func (s *State) takeRow(ctx context.Context, encoded []byte, key sortkey.Key) (value.Row, error) {
	if el, ok := s.cache.remove(encoded); ok {
		return el.Row, nil
	}
	if d, ok := s.tracker.get(encoded); ok {
		if row, present := d.row(); present {
			return row, nil
		}
		panic(fmt.Sprintf("ranked: delete of already-deleted key %v", key))
	}
	row, found, err := s.lookupFromStorage(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("ranked: delete: %w", err)
	}
	if !found {
		panic(fmt.Sprintf("ranked: delete of key %v absent from cache, buffer and storage", key))
	}
	return row, nil
}

// PeekTop returns the largest element of the window without removing it.
func (s *State) PeekTop() (Element, bool) {
	if s.totalCount == 0 {
		return Element{}, false
	}
	e, ok := s.cache.peekTop()
	return e.el, ok
}

// PeekBottom returns the smallest element of the window without removing
// it.
func (s *State) PeekBottom() (Element, bool) {
	if s.totalCount == 0 {
		return Element{}, false
	}
	e, ok := s.cache.peekBottom()
	return e.el, ok
}

// PopTop removes and returns the largest element. ok is false when the
// window is empty.
func (s *State) PopTop(ctx context.Context) (Element, bool, error) {
	return s.pop(ctx, s.cache.peekTop)
}

// PopBottom removes and returns the smallest element. ok is false when the
// window is empty.
func (s *State) PopBottom(ctx context.Context) (Element, bool, error) {
	return s.pop(ctx, s.cache.peekBottom)
}

func (s *State) pop(ctx context.Context, peek func() (cacheEntry, bool)) (Element, bool, error) {
	if s.totalCount == 0 {
		return Element{}, false, nil
	}
	e, ok := peek()
	if !ok {
		panic("ranked: pop with empty caches but non-zero total count; FillInCache was never called")
	}
	row, err := s.Delete(ctx, e.el.Key)
	if err != nil {
		return Element{}, false, err
	}
	return Element{Key: e.el.Key, Row: row}, true, nil
}

// RetainCaches trims both cache sides to their configured capacities,
// evicting the entries closest to the middle of the key space. Typically
// called by the executor after a flush.
func (s *State) RetainCaches() {
	s.cache.retainBoth()
}

// Flush makes all pending deltas durable in one atomic batch and clears
// the tracker. A clean state is a no-op. On store failure the tracker is
// left untouched, so a retried flush is safe.
//
// Caches are not touched: they already reflect the latest in-memory
// values.
func (s *State) Flush(ctx context.Context) error {
	if !s.IsDirty() {
		return nil
	}
	deltas := s.tracker.len()
	start := time.Now()
	err := s.keyspace.Store().IngestBatch(ctx, s.buildWriteBatch())
	s.metrics.OnFlush(time.Since(start), deltas, err)
	s.logger.LogFlush(ctx, deltas, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("ranked: flush: %w", err)
	}
	s.tracker.clear()
	return nil
}

// FillInCache rebuilds both caches from storage, trusting it as ground
// truth. Valid only in the clean state: calling it while dirty is a
// contract violation and panics, since a dirty tracker means storage is
// stale relative to memory.
//
// Both halves are rebuilt in full regardless of capacities (all-or-nothing
// policy); use RetainCaches to trim afterwards if desired.
func (s *State) FillInCache(ctx context.Context) error {
	if s.IsDirty() {
		panic("ranked: FillInCache on dirty state")
	}
	entries, err := s.scanFromStorage(ctx, 0)
	if err != nil {
		s.logger.LogRefill(ctx, 0, err)
		return fmt.Errorf("ranked: fill in cache: %w", err)
	}
	for i, e := range entries {
		if i < len(entries)/2 {
			s.cache.bottom.Set(e)
		} else {
			s.cache.top.Set(e)
		}
	}
	s.logger.LogRefill(ctx, len(entries), nil)
	return nil
}

// reconcile runs the scan-and-merge rebuild after a deletion drained both
// caches.
func (s *State) reconcile(ctx context.Context) error {
	start := time.Now()
	err := s.scanAndMerge(ctx)
	rows := s.cache.len()
	s.metrics.OnReconcile(time.Since(start), rows, err)
	s.logger.LogReconcile(ctx, rows, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("ranked: reconcile: %w", err)
	}
	return nil
}
