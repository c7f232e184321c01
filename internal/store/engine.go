package store

import "errors"

// ErrKeyNotFound is returned by Bucket.Get when the requested key has no
// row, mirroring the teacher's storage.ErrKeyNotFound convention so
// callers can distinguish "missing" from a real storage failure.
var ErrKeyNotFound = errors.New("store: key not found")

// ErrReadOnlyTx is returned when a mutating operation is attempted on a
// transaction opened with writable=false.
var ErrReadOnlyTx = errors.New("store: transaction is read-only")

// Engine is the minimal contract a backing store must satisfy: open
// transactions that expose named buckets. Two implementations exist in
// this package: BoltEngine (go.etcd.io/bbolt, used by the server
// binaries) and MemoryEngine (an in-memory reference implementation used
// by unit tests that don't need a file on disk).
type Engine interface {
	// Begin opens a new transaction. Only one writable transaction may be
	// open at a time per engine; readers may run concurrently with each
	// other and with the single writer (serializable isolation, per §5).
	Begin(writable bool) (Tx, error)

	// Close releases any resources (file handles) held by the engine.
	Close() error
}

// Tx is an open transaction. All table access within a reducer invocation
// goes through a single Tx for the duration of that reducer, so that a
// non-Ok return can roll back every write, timer insert, and outbox
// append made since Begin (§4.1, §5).
type Tx interface {
	// Bucket returns the named bucket, creating it if this is a writable
	// transaction and it doesn't yet exist. On a read-only transaction, a
	// missing bucket yields a Bucket that behaves as empty rather than an
	// error, so read paths don't need to special-case "table never
	// written to yet".
	Bucket(name string) (Bucket, error)

	// Writable reports whether this transaction may mutate buckets.
	Writable() bool

	// Commit persists every write made through this transaction. Commit
	// or Rollback must be called exactly once.
	Commit() error

	// Rollback discards every write made through this transaction.
	Rollback() error
}

// Bucket is a single named table's byte-keyed, byte-valued storage.
type Bucket interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error

	// ForEach iterates every row in stable key-ascending order — the
	// runtime's defined iteration order that makes agent loops replay
	// identically (§5 Determinism). Returning an error from fn stops
	// iteration and propagates the error.
	ForEach(fn func(key, value []byte) error) error

	// NextSequence returns a bucket-scoped monotonically increasing
	// integer, the primitive behind every #[auto_inc] primary key
	// (timer tables, action-log rows, any table whose idempotence
	// strategy is "distinct rows the agent loop tolerates" per §4.1).
	NextSequence() (uint64, error)
}
