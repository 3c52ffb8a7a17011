package ranked

import (
	"bytes"
	"context"
	"fmt"
)

// deltaCursor is a lookahead cursor over the sorted delta entries, one half
// of the reconciliation merge-join.
type deltaCursor struct {
	entries []deltaEntry
	pos     int
}

func (c *deltaCursor) peek() (deltaEntry, bool) {
	if c.pos >= len(c.entries) {
		return deltaEntry{}, false
	}
	return c.entries[c.pos], true
}

func (c *deltaCursor) next() { c.pos++ }

// mergeWithDeltas walks the ascending storage rows and the sorted delta
// tracker in one forward pass, producing the reconstructed logical view:
//   - a pending delete suppresses the stored row,
//   - a pending insert or upsert replaces it with the buffered row,
//   - stored rows with no pending change pass through,
//   - deltas whose keys never appear in storage (pure in-memory inserts)
//     are spliced in, preserving order.
//
// Both inputs are sorted, so the output is sorted and needs no re-sort.
func (s *State) mergeWithDeltas(stored []cacheEntry) ([]cacheEntry, error) {
	cur := &deltaCursor{entries: s.tracker.sorted()}
	merged := make([]cacheEntry, 0, len(stored)+len(cur.entries))

	appendDelta := func(e deltaEntry) error {
		row, present := e.delta.row()
		if !present {
			// A pending delete with no stored counterpart: the row was
			// also never cached (the merge only runs with empty caches),
			// so there is nothing to suppress.
			return nil
		}
		key, err := s.keyCodec.Decode(e.key)
		if err != nil {
			return fmt.Errorf("ranked: decode buffered key: %w", err)
		}
		merged = append(merged, cacheEntry{key: e.key, el: Element{Key: key, Row: row}})
		return nil
	}

	for _, se := range stored {
		for {
			de, ok := cur.peek()
			if !ok || bytes.Compare(de.key, se.key) >= 0 {
				break
			}
			if err := appendDelta(de); err != nil {
				return nil, err
			}
			cur.next()
		}
		de, ok := cur.peek()
		if ok && bytes.Equal(de.key, se.key) {
			cur.next()
			row, present := de.delta.row()
			if present {
				merged = append(merged, cacheEntry{key: se.key, el: Element{Key: se.el.Key, Row: row}})
			}
			continue
		}
		merged = append(merged, se)
	}
	for {
		de, ok := cur.peek()
		if !ok {
			break
		}
		if err := appendDelta(de); err != nil {
			return nil, err
		}
		cur.next()
	}
	return merged, nil
}

// scanAndMerge rebuilds both cache halves from a full storage scan merged
// with the pending deltas, splitting the reconstructed view at its
// midpoint: first half into the bottom cache, second half into the top.
// Capacities are deliberately ignored here; the all-or-nothing policy
// leaves trimming to an explicit RetainCaches pass.
func (s *State) scanAndMerge(ctx context.Context) error {
	stored, err := s.scanFromStorage(ctx, 0)
	if err != nil {
		return err
	}
	merged, err := s.mergeWithDeltas(stored)
	if err != nil {
		return err
	}
	for i, e := range merged {
		if i < len(merged)/2 {
			s.cache.bottom.Set(e)
		} else {
			s.cache.top.Set(e)
		}
	}
	return nil
}
