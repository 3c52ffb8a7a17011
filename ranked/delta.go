package ranked

import (
	"bytes"

	"github.com/tidwall/btree"

	"github.com/xiaoyong-z/streamstate/value"
)

// DeltaKind tags the net pending effect on one key since the last flush.
type DeltaKind uint8

const (
	// DeltaInsert adds a row that storage has never seen.
	DeltaInsert DeltaKind = iota + 1
	// DeltaDelete removes the durable row.
	DeltaDelete
	// DeltaUpsert replaces the durable row (a delete followed by an
	// insert; must overwrite rather than merely add).
	DeltaUpsert
)

// Delta is the net pending write for one key. Row is set for DeltaInsert
// and DeltaUpsert only.
type Delta struct {
	Kind DeltaKind
	Row  value.Row
}

// row returns the buffered row, nil for DeltaDelete. Mirrors the delta's
// effect during reconciliation.
func (d Delta) row() (value.Row, bool) {
	if d.Kind == DeltaDelete {
		return nil, false
	}
	return d.Row, true
}

type deltaEntry struct {
	key   []byte // order-preserving encoded key
	delta Delta
}

// deltaTracker accumulates pending writes per key, collapsing each burst of
// inserts and deletes into the minimal net operation:
//
//	previous  × insert         × delete
//	none      → Insert(row)    → Delete
//	Insert    → Insert(row)    → removed (cancels out)
//	Delete    → Upsert(row)    → Delete
//	Upsert    → Upsert(row)    → Delete
//
// Pure in-memory bookkeeping; iteration yields entries in key order as the
// reconciliation merge requires.
type deltaTracker struct {
	entries *btree.BTreeG[deltaEntry]
}

func newDeltaTracker() *deltaTracker {
	return &deltaTracker{
		entries: btree.NewBTreeG(func(a, b deltaEntry) bool {
			return bytes.Compare(a.key, b.key) < 0
		}),
	}
}

func (t *deltaTracker) len() int { return t.entries.Len() }

func (t *deltaTracker) get(key []byte) (Delta, bool) {
	e, ok := t.entries.Get(deltaEntry{key: key})
	return e.delta, ok
}

func (t *deltaTracker) recordInsert(key []byte, row value.Row) {
	prev, ok := t.entries.Get(deltaEntry{key: key})
	kind := DeltaInsert
	if ok && prev.delta.Kind != DeltaInsert {
		kind = DeltaUpsert
	}
	t.entries.Set(deltaEntry{key: key, delta: Delta{Kind: kind, Row: row}})
}

func (t *deltaTracker) recordDelete(key []byte) {
	prev, ok := t.entries.Get(deltaEntry{key: key})
	if ok && prev.delta.Kind == DeltaInsert {
		// The row was never durable; the insert and delete cancel.
		t.entries.Delete(deltaEntry{key: key})
		return
	}
	t.entries.Set(deltaEntry{key: key, delta: Delta{Kind: DeltaDelete}})
}

// ascend yields entries in ascending key order while fn returns true.
func (t *deltaTracker) ascend(fn func(deltaEntry) bool) {
	t.entries.Scan(fn)
}

// sorted returns all entries in ascending key order.
func (t *deltaTracker) sorted() []deltaEntry {
	out := make([]deltaEntry, 0, t.entries.Len())
	t.entries.Scan(func(e deltaEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

func (t *deltaTracker) clear() {
	t.entries.Clear()
}
