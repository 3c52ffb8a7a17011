package value

import "fmt"

// Row is an ordered, fixed-arity sequence of nullable cell values.
type Row []Datum

// NewRow builds a row from datums.
func NewRow(datums ...Datum) Row { return Row(datums) }

// Arity returns the number of columns.
func (r Row) Arity() int { return len(r) }

// Equal reports column-wise equality.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// EncodeCell encodes column i's value as stored in one physical entry.
func (r Row) EncodeCell(i int) []byte { return EncodeDatum(r[i]) }

// Validate checks the row against a schema.
func (r Row) Validate(schema []Type) error {
	if len(r) != len(schema) {
		return fmt.Errorf("%w: row has %d columns, schema has %d", ErrTypeMismatch, len(r), len(schema))
	}
	for i, d := range r {
		if d.typ != schema[i] {
			return fmt.Errorf("%w: column %d is %v, schema wants %v", ErrTypeMismatch, i, d.typ, schema[i])
		}
	}
	return nil
}

// DecodeRow reassembles a logical row from its per-column cell bytes. The
// cells must be exactly one per schema column, in column order.
func DecodeRow(schema []Type, cells [][]byte) (Row, error) {
	if len(cells) != len(schema) {
		return nil, fmt.Errorf("%w: got %d cells for %d columns", ErrCorruptCell, len(cells), len(schema))
	}
	row := make(Row, len(schema))
	for i, cell := range cells {
		d, err := DecodeDatum(schema[i], cell)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = d
	}
	return row, nil
}
