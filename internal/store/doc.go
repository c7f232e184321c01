// Package store implements the transactional relational store every
// reducer runs against (spec.md §3, §5, §6): a set of named tables with a
// primary key, accessed inside a serializable transaction that commits or
// rolls back atomically, including any timer-table inserts and outbox
// appends made during it.
//
// # Architecture
//
//	┌─────────────────────────────────────────┐
//	│                Engine                    │
//	│   (bbolt.DB on disk, or an in-memory      │
//	│    reference engine for tests)            │
//	├─────────────────────────────────────────┤
//	│  Begin(writable) → Tx                    │
//	│    Tx.Bucket(table) → Bucket             │
//	│      Bucket.Get/Put/Delete/ForEach       │
//	│    Tx.Commit() / Tx.Rollback()           │
//	└─────────────────────────────────────────┘
//
// Table[T] layers typed, JSON-encoded row access on top of a Bucket, so
// callers work with Go struct values (LocationState, ClaimTileState, ...)
// rather than raw bytes, while the underlying engine only ever sees
// byte-keyed, byte-valued buckets — the same separation of concerns the
// teacher's storage.Store interface draws between the abstract API and
// MemoryStore's concrete implementation, generalized from a flat
// key-value map to the named-table, serializable-transaction model the
// reducer runtime requires.
package store
