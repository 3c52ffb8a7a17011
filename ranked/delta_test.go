package ranked

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoyong-z/streamstate/value"
)

var (
	rowA = value.NewRow(value.Utf8("a"), value.Int64(1))
	rowB = value.NewRow(value.Utf8("b"), value.Int64(2))
)

// Every previous-state × operation combination of the collapse table.
func TestDeltaTracker_CollapseTable(t *testing.T) {
	key := []byte("k")

	seed := map[string]func(*deltaTracker){
		"none":   func(tr *deltaTracker) {},
		"insert": func(tr *deltaTracker) { tr.recordInsert(key, rowA) },
		"delete": func(tr *deltaTracker) { tr.recordDelete(key) },
		"upsert": func(tr *deltaTracker) {
			tr.recordDelete(key)
			tr.recordInsert(key, rowA)
		},
	}

	t.Run("seed states", func(t *testing.T) {
		for state, want := range map[string]DeltaKind{
			"insert": DeltaInsert,
			"delete": DeltaDelete,
			"upsert": DeltaUpsert,
		} {
			tr := newDeltaTracker()
			seed[state](tr)
			d, ok := tr.get(key)
			require.True(t, ok, state)
			assert.Equal(t, want, d.Kind, state)
		}
	})

	type expect struct {
		removed bool
		kind    DeltaKind
		row     value.Row
	}
	tests := []struct {
		prev string
		op   string
		want expect
	}{
		{"none", "insert", expect{kind: DeltaInsert, row: rowB}},
		{"none", "delete", expect{kind: DeltaDelete}},
		{"insert", "insert", expect{kind: DeltaInsert, row: rowB}},
		{"insert", "delete", expect{removed: true}},
		{"delete", "insert", expect{kind: DeltaUpsert, row: rowB}},
		{"delete", "delete", expect{kind: DeltaDelete}},
		{"upsert", "insert", expect{kind: DeltaUpsert, row: rowB}},
		{"upsert", "delete", expect{kind: DeltaDelete}},
	}
	for _, tt := range tests {
		t.Run(tt.prev+"_x_"+tt.op, func(t *testing.T) {
			tr := newDeltaTracker()
			seed[tt.prev](tr)
			if tt.op == "insert" {
				tr.recordInsert(key, rowB)
			} else {
				tr.recordDelete(key)
			}

			d, ok := tr.get(key)
			if tt.want.removed {
				assert.False(t, ok, "insert followed by delete must cancel out")
				assert.Zero(t, tr.len())
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want.kind, d.Kind)
			if tt.want.row != nil {
				assert.True(t, tt.want.row.Equal(d.Row))
			}
		})
	}
}

func TestDeltaTracker_SortedIteration(t *testing.T) {
	tr := newDeltaTracker()
	tr.recordInsert([]byte("c"), rowA)
	tr.recordInsert([]byte("a"), rowA)
	tr.recordDelete([]byte("b"))

	var keys []string
	tr.ascend(func(e deltaEntry) bool {
		keys = append(keys, string(e.key))
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	sorted := tr.sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a", string(sorted[0].key))
	assert.Equal(t, DeltaDelete, sorted[1].delta.Kind)
}

func TestDeltaTracker_Clear(t *testing.T) {
	tr := newDeltaTracker()
	tr.recordInsert([]byte("a"), rowA)
	tr.recordDelete([]byte("b"))
	require.Equal(t, 2, tr.len())

	tr.clear()
	assert.Zero(t, tr.len())
	_, ok := tr.get([]byte("a"))
	assert.False(t, ok)
}

// row() mirrors the delta's effect during reconciliation: deletes suppress,
// inserts and upserts carry the buffered row.
func TestDelta_Row(t *testing.T) {
	r, ok := (Delta{Kind: DeltaInsert, Row: rowA}).row()
	assert.True(t, ok)
	assert.True(t, rowA.Equal(r))

	r, ok = (Delta{Kind: DeltaUpsert, Row: rowB}).row()
	assert.True(t, ok)
	assert.True(t, rowB.Equal(r))

	_, ok = (Delta{Kind: DeltaDelete}).row()
	assert.False(t, ok)
}
