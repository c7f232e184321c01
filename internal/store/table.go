package store

import "encoding/json"

// Table provides typed, JSON-encoded access to one named bucket. Row
// values are plain Go structs with no pointers between rows — every
// cross-row reference is an entity ID (internal/eid), never a Go pointer,
// matching spec.md §3's "rows are value types" invariant.
type Table[T any] struct {
	Name string
}

// NewTable declares a table by name. Declaring a Table does not touch the
// engine; the bucket is created lazily on first write.
func NewTable[T any](name string) Table[T] {
	return Table[T]{Name: name}
}

// Get decodes the row stored at key, if any.
func (t Table[T]) Get(tx Tx, key []byte) (T, bool, error) {
	var zero T
	bucket, err := tx.Bucket(t.Name)
	if err != nil {
		return zero, false, err
	}
	raw, err := bucket.Get(key)
	if err == ErrKeyNotFound {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Put encodes and stores value at key, overwriting any existing row.
func (t Table[T]) Put(tx Tx, key []byte, value T) error {
	bucket, err := tx.Bucket(t.Name)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return bucket.Put(key, raw)
}

// Delete removes the row at key. Idempotent: deleting an absent key is
// not an error.
func (t Table[T]) Delete(tx Tx, key []byte) error {
	bucket, err := tx.Bucket(t.Name)
	if err != nil {
		return err
	}
	return bucket.Delete(key)
}

// Iterate visits every row in the table in stable key order, decoding
// each into T before calling fn.
func (t Table[T]) Iterate(tx Tx, fn func(key []byte, value T) error) error {
	bucket, err := tx.Bucket(t.Name)
	if err != nil {
		return err
	}
	return bucket.ForEach(func(key, raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		return fn(key, v)
	})
}

// Count returns the number of rows currently in the table.
func (t Table[T]) Count(tx Tx) (int, error) {
	n := 0
	err := t.Iterate(tx, func([]byte, T) error {
		n++
		return nil
	})
	return n, err
}

// NextSequence allocates the next #[auto_inc] primary key value for this
// table.
func (t Table[T]) NextSequence(tx Tx) (uint64, error) {
	bucket, err := tx.Bucket(t.Name)
	if err != nil {
		return 0, err
	}
	return bucket.NextSequence()
}
