package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatum_Constructors(t *testing.T) {
	d := Int64(42)
	v, ok := d.AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)
	assert.False(t, d.IsNull())

	n := Null(TypeUtf8)
	assert.True(t, n.IsNull())
	_, ok = n.AsUtf8()
	assert.False(t, ok)
	assert.Equal(t, TypeUtf8, n.Type())
}

func TestDatum_EncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		datum Datum
	}{
		{"int64", Int64(-7)},
		{"int64 max", Int64(math.MaxInt64)},
		{"float64", Float64(3.25)},
		{"float64 negative", Float64(-0.5)},
		{"bool true", Bool(true)},
		{"bool false", Bool(false)},
		{"utf8", Utf8("hello")},
		{"utf8 empty", Utf8("")},
		{"utf8 with zero byte", Utf8("a\x00b")},
		{"null int64", Null(TypeInt64)},
		{"null utf8", Null(TypeUtf8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDatum(tt.datum.Type(), EncodeDatum(tt.datum))
			require.NoError(t, err)
			assert.True(t, tt.datum.Equal(got), "want %v, got %v", tt.datum, got)
		})
	}
}

func TestDatum_DecodeCorrupt(t *testing.T) {
	_, err := DecodeDatum(TypeInt64, nil)
	assert.ErrorIs(t, err, ErrCorruptCell)

	_, err = DecodeDatum(TypeInt64, []byte{0x01, 0x00})
	assert.ErrorIs(t, err, ErrCorruptCell)

	_, err = DecodeDatum(TypeBool, []byte{0x01, 0x07})
	assert.ErrorIs(t, err, ErrCorruptCell)

	// Trailing bytes after a null flag.
	_, err = DecodeDatum(TypeUtf8, []byte{0x00, 'x'})
	assert.ErrorIs(t, err, ErrCorruptCell)
}

func TestRow_EncodeDecodeCells(t *testing.T) {
	schema := []Type{TypeUtf8, TypeInt64}
	row := NewRow(Utf8("ab"), Int64(4))
	require.NoError(t, row.Validate(schema))

	cells := make([][]byte, row.Arity())
	for i := range cells {
		cells[i] = row.EncodeCell(i)
	}

	got, err := DecodeRow(schema, cells)
	require.NoError(t, err)
	assert.True(t, row.Equal(got))
}

func TestRow_DecodeArityMismatch(t *testing.T) {
	schema := []Type{TypeUtf8, TypeInt64}
	_, err := DecodeRow(schema, [][]byte{EncodeDatum(Utf8("a"))})
	assert.ErrorIs(t, err, ErrCorruptCell)
}

func TestRow_Validate(t *testing.T) {
	schema := []Type{TypeUtf8, TypeInt64}

	assert.NoError(t, NewRow(Null(TypeUtf8), Int64(1)).Validate(schema))
	assert.ErrorIs(t, NewRow(Int64(1), Int64(1)).Validate(schema), ErrTypeMismatch)
	assert.ErrorIs(t, NewRow(Utf8("a")).Validate(schema), ErrTypeMismatch)
}
