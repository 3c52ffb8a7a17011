package statestore

import (
	"context"
	"encoding/binary"
	"fmt"
)

// Keyspace scopes a StateStore to one operator's key range by prefixing
// every key with the operator's identity. It is immutable and cheap to copy.
type Keyspace struct {
	store  StateStore
	prefix []byte
}

// Root returns the keyspace of one stream operator: prefix 'e' followed by
// the big-endian operator ID.
func Root(store StateStore, operatorID uint64) Keyspace {
	prefix := make([]byte, 9)
	prefix[0] = 'e'
	binary.BigEndian.PutUint64(prefix[1:], operatorID)
	return Keyspace{store: store, prefix: prefix}
}

// Store returns the underlying StateStore.
func (k Keyspace) Store() StateStore { return k.store }

// Prefix returns a copy of the keyspace prefix.
func (k Keyspace) Prefix() []byte { return append([]byte(nil), k.prefix...) }

// PrefixedKey returns prefix ++ key as a fresh slice.
func (k Keyspace) PrefixedKey(key []byte) []byte {
	out := make([]byte, 0, len(k.prefix)+len(key))
	out = append(out, k.prefix...)
	return append(out, key...)
}

// Scan scans the whole keyspace ascending, stripping the prefix from the
// returned keys. A limit <= 0 means unlimited.
func (k Keyspace) Scan(ctx context.Context, limit int) ([]Entry, error) {
	return k.ScanSub(ctx, nil, limit)
}

// ScanSub scans the sub-range prefix ++ sub ascending, stripping only the
// keyspace prefix from the returned keys.
func (k Keyspace) ScanSub(ctx context.Context, sub []byte, limit int) ([]Entry, error) {
	entries, err := k.store.Scan(ctx, k.PrefixedKey(sub), limit)
	if err != nil {
		return nil, fmt.Errorf("statestore: scan: %w", err)
	}
	for i := range entries {
		entries[i].Key = entries[i].Key[len(k.prefix):]
	}
	return entries, nil
}
