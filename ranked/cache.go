package ranked

import (
	"bytes"

	"github.com/tidwall/btree"

	"github.com/xiaoyong-z/streamstate/sortkey"
	"github.com/xiaoyong-z/streamstate/value"
)

// Element is one cached window row: its ordered key and payload.
type Element struct {
	Key sortkey.Key
	Row value.Row
}

type cacheEntry struct {
	key []byte // order-preserving encoded key
	el  Element
}

func newCacheTree() *btree.BTreeG[cacheEntry] {
	return btree.NewBTreeG(func(a, b cacheEntry) bool {
		return bytes.Compare(a.key, b.key) < 0
	})
}

// dualCache holds the two extremal, non-overlapping windows of the logical
// key order: bottom covers a contiguous prefix starting at the global
// minimum, top a contiguous suffix ending at the global maximum. Keys in
// neither tree live only in storage, strictly between the cached ranges.
//
// Invariant: if both trees are non-empty, max(bottom) < min(top).
type dualCache struct {
	bottom *btree.BTreeG[cacheEntry]
	top    *btree.BTreeG[cacheEntry]

	// Entries to retain per side after an explicit retain pass; <= 0
	// leaves the side unbounded.
	bottomCapacity int
	topCapacity    int
}

func newDualCache(bottomCapacity, topCapacity int) *dualCache {
	return &dualCache{
		bottom:         newCacheTree(),
		top:            newCacheTree(),
		bottomCapacity: bottomCapacity,
		topCapacity:    topCapacity,
	}
}

func (c *dualCache) len() int { return c.bottom.Len() + c.top.Len() }

// insert places the entry on whichever side keeps the caches balanced
// without violating the non-overlap invariant: prefer the smaller tree,
// but never put a key on the wrong side of the existing boundary.
func (c *dualCache) insert(e cacheEntry) {
	var dst *btree.BTreeG[cacheEntry]
	if c.top.Len() > c.bottom.Len() {
		topMin, _ := c.top.Min()
		if bytes.Compare(topMin.key, e.key) < 0 {
			dst = c.top
		} else {
			dst = c.bottom
		}
	} else if bottomMax, ok := c.bottom.Max(); !ok || bytes.Compare(bottomMax.key, e.key) <= 0 {
		dst = c.top
	} else {
		dst = c.bottom
	}
	dst.Set(e)
}

// remove evicts the key from whichever side holds it.
func (c *dualCache) remove(key []byte) (Element, bool) {
	if e, ok := c.bottom.Delete(cacheEntry{key: key}); ok {
		return e.el, true
	}
	if e, ok := c.top.Delete(cacheEntry{key: key}); ok {
		return e.el, true
	}
	return Element{}, false
}

// retainBottom evicts the bottom tree's own maximum, the entry closest to
// the middle of the key space, until at most n entries remain.
func (c *dualCache) retainBottom(n int) {
	for c.bottom.Len() > n {
		c.bottom.PopMax()
	}
}

// retainTop evicts the top tree's own minimum until at most n entries
// remain.
func (c *dualCache) retainTop(n int) {
	for c.top.Len() > n {
		c.top.PopMin()
	}
}

// retainBoth trims both sides to their configured capacities, preserving
// the cached-extremes, uncached-middle shape.
func (c *dualCache) retainBoth() {
	if c.bottomCapacity > 0 {
		c.retainBottom(c.bottomCapacity)
	}
	if c.topCapacity > 0 {
		c.retainTop(c.topCapacity)
	}
}

// peekTop returns the largest cached entry. When the top tree has drained
// it falls back to the bottom tree, which under the all-or-nothing refill
// policy is then known to hold the global maximum too.
func (c *dualCache) peekTop() (cacheEntry, bool) {
	if e, ok := c.top.Max(); ok {
		return e, true
	}
	return c.bottom.Max()
}

// peekBottom returns the smallest cached entry, with the symmetric
// fallback.
func (c *dualCache) peekBottom() (cacheEntry, bool) {
	if e, ok := c.bottom.Min(); ok {
		return e, true
	}
	return c.top.Min()
}
