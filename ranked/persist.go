package ranked

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/xiaoyong-z/streamstate/statestore"
	"github.com/xiaoyong-z/streamstate/value"
)

// Cell-based storage format: a row of C columns occupies C physically
// adjacent entries keyed
//
//	keyspace prefix ++ encoded ordered key ++ big-endian cell index (4B)
//
// with the serialized cell value as the entry value and no self-describing
// envelope.
const cellIndexLen = 4

func cellKey(encodedKey []byte, cellIdx uint32) []byte {
	out := make([]byte, len(encodedKey)+cellIndexLen)
	copy(out, encodedKey)
	binary.BigEndian.PutUint32(out[len(encodedKey):], cellIdx)
	return out
}

// scanFromStorage reads up to rowLimit logical rows (0 = all) from the
// keyspace in ascending key order, regrouping cell entries into rows. A
// group of entries that is not an exact multiple of the column count, or a
// cell index out of step, is storage corruption and panics.
func (s *State) scanFromStorage(ctx context.Context, rowLimit int) ([]cacheEntry, error) {
	arity := len(s.schema)
	limit := 0
	if rowLimit > 0 {
		// The entry limit is in physical cell units; request whole rows.
		limit = rowLimit * arity
	}
	raw, err := s.keyspace.Scan(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.assembleRows(raw)
}

// lookupFromStorage reads the single row stored under the encoded key, if
// any.
func (s *State) lookupFromStorage(ctx context.Context, encodedKey []byte) (value.Row, bool, error) {
	raw, err := s.keyspace.ScanSub(ctx, encodedKey, len(s.schema))
	if err != nil {
		return nil, false, err
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	entries, err := s.assembleRows(raw)
	if err != nil {
		return nil, false, err
	}
	return entries[0].el.Row, true, nil
}

func (s *State) assembleRows(raw []statestore.Entry) ([]cacheEntry, error) {
	arity := len(s.schema)
	if len(raw)%arity != 0 {
		panic(fmt.Sprintf("ranked: scan returned %d cells, not a multiple of %d columns", len(raw), arity))
	}
	out := make([]cacheEntry, 0, len(raw)/arity)
	cells := make([][]byte, 0, arity)
	for i := 0; i < len(raw); i += arity {
		group := raw[i : i+arity]
		first := group[0].Key
		if len(first) < cellIndexLen {
			panic(fmt.Sprintf("ranked: cell key of %d bytes is shorter than the cell index", len(first)))
		}
		encodedKey := first[:len(first)-cellIndexLen]
		cells = cells[:0]
		for j, e := range group {
			idx := binary.BigEndian.Uint32(e.Key[len(e.Key)-cellIndexLen:])
			if int(idx) != j {
				panic(fmt.Sprintf("ranked: cell index %d where %d expected", idx, j))
			}
			cells = append(cells, e.Value)
		}
		row, err := value.DecodeRow(s.schema, cells)
		if err != nil {
			return nil, fmt.Errorf("ranked: decode row: %w", err)
		}
		key, err := s.keyCodec.Decode(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("ranked: decode ordered key: %w", err)
		}
		out = append(out, cacheEntry{
			key: append([]byte(nil), encodedKey...),
			el:  Element{Key: key, Row: row},
		})
	}
	return out, nil
}

// buildWriteBatch expands every tracked delta into its per-cell writes:
// tombstones for a delete, the row's cell values for an insert or upsert.
func (s *State) buildWriteBatch() []statestore.Write {
	arity := len(s.schema)
	writes := make([]statestore.Write, 0, s.tracker.len()*arity)
	s.tracker.ascend(func(e deltaEntry) bool {
		row, present := e.delta.row()
		for idx := 0; idx < arity; idx++ {
			key := s.keyspace.PrefixedKey(cellKey(e.key, uint32(idx)))
			w := statestore.Write{Key: key}
			if present {
				w.Value = row.EncodeCell(idx)
			}
			writes = append(writes, w)
		}
		return true
	})
	return writes
}
