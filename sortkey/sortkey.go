// Package sortkey defines the ordered key of a ranked window: an immutable
// composite of column values with a per-column sort direction, and an
// order-preserving byte codec for it.
//
// The codec guarantees that for any two keys a and b of the same shape,
// Compare(a, b) < 0 exactly when bytes.Compare(Encode(a), Encode(b)) < 0,
// so the persistent store's lexicographic scan order is the logical order.
package sortkey

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xiaoyong-z/streamstate/value"
)

// Direction is the sort direction of one key column.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// String returns "ASC" or "DESC".
func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ErrCorruptKey is returned when encoded key bytes cannot be decoded.
var ErrCorruptKey = errors.New("sortkey: corrupt key bytes")

// Key is an immutable tuple of typed column values paired with per-column
// directions. Keys are constructed through a Codec so that the directions
// always match the codec that will encode them.
type Key struct {
	datums []value.Datum
	dirs   []Direction
}

// Arity returns the number of key columns.
func (k Key) Arity() int { return len(k.datums) }

// Datum returns key column i.
func (k Key) Datum(i int) value.Datum { return k.datums[i] }

// Equal reports whether all component values, types and directions match.
func (k Key) Equal(o Key) bool {
	if len(k.datums) != len(o.datums) {
		return false
	}
	for i := range k.datums {
		if k.dirs[i] != o.dirs[i] || !k.datums[i].Equal(o.datums[i]) {
			return false
		}
	}
	return true
}

// Compare defines the strict total order of keys. NULL sorts before any
// value in an ascending column; a descending column reverses its column's
// order. Keys of different shapes must not be compared.
func (k Key) Compare(o Key) int {
	for i := range k.datums {
		c := compareDatum(k.datums[i], o.datums[i])
		if k.dirs[i] == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// String implements fmt.Stringer for test output.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, d := range k.datums {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func compareDatum(a, b value.Datum) int {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			return -1
		default:
			return 1
		}
	}
	switch a.Type() {
	case value.TypeInt64:
		av, _ := a.AsInt64()
		bv, _ := b.AsInt64()
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case value.TypeFloat64:
		av, _ := a.AsFloat64()
		bv, _ := b.AsFloat64()
		// Total order over the encoded IEEE form; callers needing NaN or
		// Infinity semantics supply their own comparator upstream.
		ab, bb := orderedFloatBits(av), orderedFloatBits(bv)
		switch {
		case ab < bb:
			return -1
		case ab > bb:
			return 1
		}
		return 0
	case value.TypeBool:
		av, _ := a.AsBool()
		bv, _ := b.AsBool()
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
		return 0
	case value.TypeUtf8:
		av, _ := a.AsUtf8()
		bv, _ := b.AsUtf8()
		return strings.Compare(av, bv)
	}
	panic(fmt.Sprintf("sortkey: compare of invalid datum type %v", a.Type()))
}

// orderedFloatBits maps float64 bits to a uint64 whose unsigned order equals
// the numeric order: flip the sign bit for positives, complement everything
// for negatives.
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}
