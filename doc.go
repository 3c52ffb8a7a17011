// Package streamstate provides the incremental materialization layer of a
// streaming SQL engine: managed operator state that keeps the live result of
// a continuously updated ranked window (ORDER BY ... LIMIT/OFFSET) over an
// unbounded stream of row inserts and deletes.
//
// The core component is ranked.State, which caches the two extremes of the
// window in bounded in-memory sorted maps and leaves the middle to a
// persistent sorted key-value store, consumed through the narrow
// statestore.StateStore capability.
//
// # Quick Start
//
//	store := statestore.NewMemoryStateStore()
//	ks := statestore.Root(store, 0x2333)
//
//	schema := []value.Type{value.TypeUtf8, value.TypeInt64}
//	codec := sortkey.NewCodec(schema, []sortkey.Direction{sortkey.Descending, sortkey.Ascending})
//
//	st := ranked.New(ks, schema, codec, ranked.WithCacheCapacity(64))
//	st.Insert(codec.KeyFromRow(row), row)
//	st.Flush(ctx) // on checkpoint barrier
//
// The surrounding executor owns sequencing: one operation in flight per
// partition, Flush on every checkpoint barrier, FillInCache once at operator
// startup (or after a flush for an eager re-warm).
package streamstate
