// Package statestore defines the narrow capability this layer consumes from
// the persistent sorted key-value store, plus an in-memory implementation
// used by tests and embeddable callers.
//
// The store's own engine (durability, replication, transactions) is out of
// scope here; everything goes through Scan and IngestBatch.
package statestore

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("statestore: closed")
)

// Entry is one physical key-value cell returned by a scan.
type Entry struct {
	Key   []byte
	Value []byte
}

// Write is one element of an atomic batch. A nil Value is a tombstone
// delete; a non-nil Value (possibly empty) is an upsert.
type Write struct {
	Key   []byte
	Value []byte
}

// StateStore is the scan/ingest contract of the persistent sorted store.
//
// Implementations must scan in ascending lexicographic key order and apply
// batches atomically: either every write in the batch becomes visible or
// none does.
type StateStore interface {
	// Scan returns entries whose keys start with prefix, ascending. A
	// limit <= 0 means unlimited. The limit counts physical cell entries;
	// callers reading cell-encoded rows must request a multiple of the
	// column count to avoid partial rows.
	Scan(ctx context.Context, prefix []byte, limit int) ([]Entry, error)

	// IngestBatch applies writes atomically.
	IngestBatch(ctx context.Context, writes []Write) error
}
