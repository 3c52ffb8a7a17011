// Package value defines the typed cell values and rows flowing through the
// materialization layer, together with their per-cell byte encoding.
//
// A Row is a fixed-arity sequence of nullable Datums. The schema (one Type
// per column) is never embedded in the encoded bytes; it must be supplied
// externally to decode, matching the cell-based storage format where each
// column of a row occupies one physical key-value entry.
package value

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Type identifies the logical type of one column.
type Type uint8

const (
	TypeInt64 Type = iota + 1
	TypeFloat64
	TypeBool
	TypeUtf8
)

// String returns the SQL-ish name of the type.
func (t Type) String() string {
	switch t {
	case TypeInt64:
		return "bigint"
	case TypeFloat64:
		return "double"
	case TypeBool:
		return "boolean"
	case TypeUtf8:
		return "varchar"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

var (
	// ErrTypeMismatch is returned when a Datum is decoded or accessed as a
	// type it does not hold.
	ErrTypeMismatch = errors.New("value: type mismatch")

	// ErrCorruptCell is returned when encoded cell bytes cannot be decoded.
	ErrCorruptCell = errors.New("value: corrupt cell bytes")
)

// Datum is one nullable typed cell value. The zero Datum is invalid; use the
// constructors.
type Datum struct {
	typ  Type
	null bool
	i    int64
	f    float64
	b    bool
	s    string
}

// Int64 returns a non-null bigint datum.
func Int64(v int64) Datum { return Datum{typ: TypeInt64, i: v} }

// Float64 returns a non-null double datum.
func Float64(v float64) Datum { return Datum{typ: TypeFloat64, f: v} }

// Bool returns a non-null boolean datum.
func Bool(v bool) Datum { return Datum{typ: TypeBool, b: v} }

// Utf8 returns a non-null varchar datum.
func Utf8(s string) Datum { return Datum{typ: TypeUtf8, s: s} }

// Null returns a null datum of the given type.
func Null(t Type) Datum { return Datum{typ: t, null: true} }

// Type returns the datum's logical type.
func (d Datum) Type() Type { return d.typ }

// IsNull reports whether the datum is NULL.
func (d Datum) IsNull() bool { return d.null }

// AsInt64 returns the bigint value; ok is false for NULL.
func (d Datum) AsInt64() (int64, bool) { return d.i, d.typ == TypeInt64 && !d.null }

// AsFloat64 returns the double value; ok is false for NULL.
func (d Datum) AsFloat64() (float64, bool) { return d.f, d.typ == TypeFloat64 && !d.null }

// AsBool returns the boolean value; ok is false for NULL.
func (d Datum) AsBool() (bool, bool) { return d.b, d.typ == TypeBool && !d.null }

// AsUtf8 returns the varchar value; ok is false for NULL.
func (d Datum) AsUtf8() (string, bool) { return d.s, d.typ == TypeUtf8 && !d.null }

// Equal reports whether two datums have the same type, nullness and value.
func (d Datum) Equal(o Datum) bool {
	if d.typ != o.typ || d.null != o.null {
		return false
	}
	if d.null {
		return true
	}
	switch d.typ {
	case TypeInt64:
		return d.i == o.i
	case TypeFloat64:
		return d.f == o.f
	case TypeBool:
		return d.b == o.b
	case TypeUtf8:
		return d.s == o.s
	}
	return false
}

// String implements fmt.Stringer for test output.
func (d Datum) String() string {
	if d.null {
		return "NULL"
	}
	switch d.typ {
	case TypeInt64:
		return fmt.Sprintf("%d", d.i)
	case TypeFloat64:
		return fmt.Sprintf("%g", d.f)
	case TypeBool:
		return fmt.Sprintf("%t", d.b)
	case TypeUtf8:
		return fmt.Sprintf("%q", d.s)
	}
	return "invalid"
}

// Cell value layout: one null byte (0x00 NULL, 0x01 present) followed by the
// value bytes. Fixed-width values are big-endian; varchar is raw bytes. This
// encoding is not order-preserving; ordering lives in package sortkey.
const (
	cellNull    = 0x00
	cellPresent = 0x01
)

// EncodeDatum encodes a single cell value as stored in one physical entry.
func EncodeDatum(d Datum) []byte {
	if d.null {
		return []byte{cellNull}
	}
	switch d.typ {
	case TypeInt64:
		buf := make([]byte, 9)
		buf[0] = cellPresent
		binary.BigEndian.PutUint64(buf[1:], uint64(d.i))
		return buf
	case TypeFloat64:
		buf := make([]byte, 9)
		buf[0] = cellPresent
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(d.f))
		return buf
	case TypeBool:
		if d.b {
			return []byte{cellPresent, 1}
		}
		return []byte{cellPresent, 0}
	case TypeUtf8:
		buf := make([]byte, 1+len(d.s))
		buf[0] = cellPresent
		copy(buf[1:], d.s)
		return buf
	}
	panic(fmt.Sprintf("value: encode of invalid datum type %d", d.typ))
}

// DecodeDatum decodes a single cell value of the given type.
func DecodeDatum(t Type, b []byte) (Datum, error) {
	if len(b) == 0 {
		return Datum{}, fmt.Errorf("%w: empty cell", ErrCorruptCell)
	}
	if b[0] == cellNull {
		if len(b) != 1 {
			return Datum{}, fmt.Errorf("%w: trailing bytes after null flag", ErrCorruptCell)
		}
		return Null(t), nil
	}
	if b[0] != cellPresent {
		return Datum{}, fmt.Errorf("%w: bad null flag %#02x", ErrCorruptCell, b[0])
	}
	payload := b[1:]
	switch t {
	case TypeInt64:
		if len(payload) != 8 {
			return Datum{}, fmt.Errorf("%w: bigint cell has %d payload bytes", ErrCorruptCell, len(payload))
		}
		return Int64(int64(binary.BigEndian.Uint64(payload))), nil
	case TypeFloat64:
		if len(payload) != 8 {
			return Datum{}, fmt.Errorf("%w: double cell has %d payload bytes", ErrCorruptCell, len(payload))
		}
		return Float64(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	case TypeBool:
		if len(payload) != 1 || payload[0] > 1 {
			return Datum{}, fmt.Errorf("%w: bad boolean cell", ErrCorruptCell)
		}
		return Bool(payload[0] == 1), nil
	case TypeUtf8:
		return Utf8(string(payload)), nil
	}
	return Datum{}, fmt.Errorf("%w: type %v", ErrTypeMismatch, t)
}
