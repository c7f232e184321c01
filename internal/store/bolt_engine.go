package store

import (
	"go.etcd.io/bbolt"
)

// BoltEngine is the on-disk Engine backed by go.etcd.io/bbolt. A region
// shard and the global shard each own exactly one BoltEngine, opened
// against their own data file at server startup (cmd/region-server,
// cmd/global-server).
type BoltEngine struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt-backed engine at path.
func OpenBolt(path string) (*BoltEngine, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	return &BoltEngine{db: db}, nil
}

func (e *BoltEngine) Begin(writable bool) (Tx, error) {
	tx, err := e.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &boltTx{tx: tx, writable: writable}, nil
}

func (e *BoltEngine) Close() error {
	return e.db.Close()
}

type boltTx struct {
	tx       *bbolt.Tx
	writable bool
}

func (t *boltTx) Writable() bool { return t.writable }

func (t *boltTx) Bucket(name string) (Bucket, error) {
	if t.writable {
		b, err := t.tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return nil, err
		}
		return &boltBucket{b: b}, nil
	}
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		return emptyReadOnlyBucket{}, nil
	}
	return &boltBucket{b: b}, nil
}

func (t *boltTx) Commit() error   { return t.tx.Commit() }
func (t *boltTx) Rollback() error { return t.tx.Rollback() }

type boltBucket struct {
	b *bbolt.Bucket
}

func (b *boltBucket) Get(key []byte) ([]byte, error) {
	v := b.b.Get(key)
	if v == nil {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *boltBucket) Put(key, value []byte) error {
	return b.b.Put(key, value)
}

func (b *boltBucket) Delete(key []byte) error {
	return b.b.Delete(key)
}

func (b *boltBucket) ForEach(fn func(key, value []byte) error) error {
	return b.b.ForEach(fn)
}

func (b *boltBucket) NextSequence() (uint64, error) {
	return b.b.NextSequence()
}

// emptyReadOnlyBucket stands in for a bucket that was never written to,
// on a read-only transaction (which cannot create it).
type emptyReadOnlyBucket struct{}

func (emptyReadOnlyBucket) Get([]byte) ([]byte, error)              { return nil, ErrKeyNotFound }
func (emptyReadOnlyBucket) Put([]byte, []byte) error                { return ErrReadOnlyTx }
func (emptyReadOnlyBucket) Delete([]byte) error                     { return ErrReadOnlyTx }
func (emptyReadOnlyBucket) ForEach(func([]byte, []byte) error) error { return nil }
func (emptyReadOnlyBucket) NextSequence() (uint64, error)            { return 0, ErrReadOnlyTx }
