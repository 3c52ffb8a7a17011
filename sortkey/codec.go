package sortkey

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xiaoyong-z/streamstate/value"
)

// Key byte layout, per column in the ascending form:
//
//	null flag (0x00 NULL, 0x01 present) ++ value bytes
//
// int64 is sign-flipped big-endian; float64 uses orderedFloatBits; bool is
// one byte; utf8 escapes interior 0x00 as 0x00 0xFF and terminates with
// 0x00 0x01 so that prefixes sort first. A descending column is the bitwise
// complement of its ascending form.
const (
	keyNull    = 0x00
	keyPresent = 0x01

	utf8Esc  = 0x00
	utf8Pad  = 0xFF // follows an escaped interior 0x00
	utf8Term = 0x01 // follows the terminating 0x00
)

// Codec encodes and decodes Keys for one key shape (schema + directions).
type Codec struct {
	schema []value.Type
	dirs   []Direction
}

// NewCodec builds a codec for the given key shape. It panics if the shapes
// disagree, since a codec with mismatched arity can never be used.
func NewCodec(schema []value.Type, dirs []Direction) *Codec {
	if len(schema) != len(dirs) {
		panic(fmt.Sprintf("sortkey: %d types but %d directions", len(schema), len(dirs)))
	}
	return &Codec{schema: schema, dirs: dirs}
}

// Arity returns the number of key columns.
func (c *Codec) Arity() int { return len(c.schema) }

// NewKey wraps datums into a Key carrying this codec's directions.
func (c *Codec) NewKey(datums ...value.Datum) (Key, error) {
	if err := value.Row(datums).Validate(c.schema); err != nil {
		return Key{}, fmt.Errorf("sortkey: %w", err)
	}
	return Key{datums: datums, dirs: c.dirs}, nil
}

// KeyFromRow derives a key from the leading columns of a row whose prefix
// matches the key schema.
func (c *Codec) KeyFromRow(row value.Row) (Key, error) {
	if row.Arity() < len(c.schema) {
		return Key{}, fmt.Errorf("sortkey: row arity %d below key arity %d", row.Arity(), len(c.schema))
	}
	return c.NewKey(row[:len(c.schema)]...)
}

// Encode serializes the key into its order-preserving byte form.
func (c *Codec) Encode(k Key) ([]byte, error) {
	if err := value.Row(k.datums).Validate(c.schema); err != nil {
		return nil, fmt.Errorf("sortkey: %w", err)
	}
	var buf []byte
	for i, d := range k.datums {
		var mask byte
		if c.dirs[i] == Descending {
			mask = 0xFF
		}
		buf = appendDatum(buf, d, mask)
	}
	return buf, nil
}

// Decode reconstructs a key from its encoded byte form.
func (c *Codec) Decode(b []byte) (Key, error) {
	datums := make([]value.Datum, len(c.schema))
	pos := 0
	for i, t := range c.schema {
		var mask byte
		if c.dirs[i] == Descending {
			mask = 0xFF
		}
		d, n, err := decodeDatum(b[pos:], t, mask)
		if err != nil {
			return Key{}, fmt.Errorf("column %d: %w", i, err)
		}
		datums[i] = d
		pos += n
	}
	if pos != len(b) {
		return Key{}, fmt.Errorf("%w: %d trailing bytes", ErrCorruptKey, len(b)-pos)
	}
	return Key{datums: datums, dirs: c.dirs}, nil
}

func appendDatum(buf []byte, d value.Datum, mask byte) []byte {
	if d.IsNull() {
		return append(buf, keyNull^mask)
	}
	buf = append(buf, keyPresent^mask)
	switch d.Type() {
	case value.TypeInt64:
		v, _ := d.AsInt64()
		var w [8]byte
		binary.BigEndian.PutUint64(w[:], uint64(v)^(1<<63))
		for _, b := range w {
			buf = append(buf, b^mask)
		}
	case value.TypeFloat64:
		v, _ := d.AsFloat64()
		var w [8]byte
		binary.BigEndian.PutUint64(w[:], orderedFloatBits(v))
		for _, b := range w {
			buf = append(buf, b^mask)
		}
	case value.TypeBool:
		v, _ := d.AsBool()
		var b byte
		if v {
			b = 1
		}
		buf = append(buf, b^mask)
	case value.TypeUtf8:
		s, _ := d.AsUtf8()
		for i := 0; i < len(s); i++ {
			if s[i] == utf8Esc {
				buf = append(buf, utf8Esc^mask, utf8Pad^mask)
			} else {
				buf = append(buf, s[i]^mask)
			}
		}
		buf = append(buf, utf8Esc^mask, utf8Term^mask)
	}
	return buf
}

// decodeDatum returns the datum and the number of encoded bytes consumed.
func decodeDatum(b []byte, t value.Type, mask byte) (value.Datum, int, error) {
	if len(b) == 0 {
		return value.Datum{}, 0, fmt.Errorf("%w: truncated null flag", ErrCorruptKey)
	}
	switch b[0] ^ mask {
	case keyNull:
		return value.Null(t), 1, nil
	case keyPresent:
	default:
		return value.Datum{}, 0, fmt.Errorf("%w: bad null flag %#02x", ErrCorruptKey, b[0]^mask)
	}
	b = b[1:]
	switch t {
	case value.TypeInt64:
		if len(b) < 8 {
			return value.Datum{}, 0, fmt.Errorf("%w: truncated bigint", ErrCorruptKey)
		}
		var w [8]byte
		for i := range w {
			w[i] = b[i] ^ mask
		}
		u := binary.BigEndian.Uint64(w[:]) ^ (1 << 63)
		return value.Int64(int64(u)), 9, nil
	case value.TypeFloat64:
		if len(b) < 8 {
			return value.Datum{}, 0, fmt.Errorf("%w: truncated double", ErrCorruptKey)
		}
		var w [8]byte
		for i := range w {
			w[i] = b[i] ^ mask
		}
		return value.Float64(floatFromOrderedBits(binary.BigEndian.Uint64(w[:]))), 9, nil
	case value.TypeBool:
		if len(b) < 1 {
			return value.Datum{}, 0, fmt.Errorf("%w: truncated boolean", ErrCorruptKey)
		}
		v := b[0] ^ mask
		if v > 1 {
			return value.Datum{}, 0, fmt.Errorf("%w: bad boolean byte %#02x", ErrCorruptKey, v)
		}
		return value.Bool(v == 1), 2, nil
	case value.TypeUtf8:
		var out []byte
		i := 0
		for {
			if i >= len(b) {
				return value.Datum{}, 0, fmt.Errorf("%w: unterminated varchar", ErrCorruptKey)
			}
			c := b[i] ^ mask
			if c != utf8Esc {
				out = append(out, c)
				i++
				continue
			}
			if i+1 >= len(b) {
				return value.Datum{}, 0, fmt.Errorf("%w: truncated varchar escape", ErrCorruptKey)
			}
			switch b[i+1] ^ mask {
			case utf8Term:
				return value.Utf8(string(out)), 1 + i + 2, nil
			case utf8Pad:
				out = append(out, 0x00)
				i += 2
			default:
				return value.Datum{}, 0, fmt.Errorf("%w: bad varchar escape %#02x", ErrCorruptKey, b[i+1]^mask)
			}
		}
	}
	return value.Datum{}, 0, fmt.Errorf("%w: unsupported key type %v", ErrCorruptKey, t)
}

// floatFromOrderedBits inverts orderedFloatBits.
func floatFromOrderedBits(u uint64) float64 {
	if u&(1<<63) != 0 {
		return math.Float64frombits(u &^ (1 << 63))
	}
	return math.Float64frombits(^u)
}
