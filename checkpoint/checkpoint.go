// Package checkpoint holds the metadata an executor records at each
// checkpoint barrier: the logical row count of every managed state it
// owns. The count is what a state must be re-constructed with after a
// restart, before its caches are refilled from storage.
//
// Codec selection is a breaking-change boundary: a manifest written by one
// codec may not decode under another, so the codec name travels with the
// caller's checkpoint layout, not inside the manifest bytes.
package checkpoint

import (
	"fmt"
)

// Manifest is the per-barrier record of managed-state row counts, keyed by
// operator ID.
type Manifest struct {
	// Epoch is the checkpoint barrier's epoch.
	Epoch uint64 `json:"epoch"`

	// RowCounts maps operator ID to the state's total row count at the
	// barrier, taken after its flush succeeded.
	RowCounts map[uint64]uint64 `json:"row_counts"`
}

// NewManifest creates an empty manifest for the given epoch.
func NewManifest(epoch uint64) *Manifest {
	return &Manifest{
		Epoch:     epoch,
		RowCounts: make(map[uint64]uint64),
	}
}

// Record sets the row count of one operator's state.
func (m *Manifest) Record(operatorID, rowCount uint64) {
	m.RowCounts[operatorID] = rowCount
}

// RowCount returns the recorded count for an operator.
func (m *Manifest) RowCount(operatorID uint64) (uint64, bool) {
	n, ok := m.RowCounts[operatorID]
	return n, ok
}

// Encode serializes the manifest with the given codec (nil = Default).
func (m *Manifest) Encode(c Codec) ([]byte, error) {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: encode manifest: %w", err)
	}
	return b, nil
}

// Decode deserializes a manifest with the given codec (nil = Default).
func Decode(c Codec, data []byte) (*Manifest, error) {
	if c == nil {
		c = Default
	}
	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("checkpoint: decode manifest: %w", err)
	}
	if m.RowCounts == nil {
		m.RowCounts = make(map[uint64]uint64)
	}
	return &m, nil
}
