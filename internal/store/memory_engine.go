package store

import "sync"

// MemoryEngine is an in-memory reference Engine, adapted from the
// teacher's storage.MemoryStore: a mutex-protected map with no
// persistence. Used by package tests across the module so they don't need
// a bbolt file on disk; never used by the server binaries.
//
// Isolation model: a single writable transaction may be open at a time
// (mu is held for its lifetime, same as BoltEngine/bbolt's single-writer
// rule); its writes are buffered and only applied to the committed state
// on Commit, so Rollback is a true no-op on the underlying data exactly
// like the real engine.
type MemoryEngine struct {
	mu        sync.Mutex
	committed map[string]map[string][]byte
	seqs      map[string]uint64
}

// NewMemoryEngine returns an empty, ready-to-use MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{committed: make(map[string]map[string][]byte), seqs: make(map[string]uint64)}
}

func (e *MemoryEngine) Close() error { return nil }

func (e *MemoryEngine) Begin(writable bool) (Tx, error) {
	if writable {
		e.mu.Lock()
		snapshot := cloneTables(e.committed)
		seqs := cloneSeqs(e.seqs)
		return &memoryTx{engine: e, writable: true, tables: snapshot, seqs: seqs, locked: true}, nil
	}
	e.mu.Lock()
	snapshot := cloneTables(e.committed)
	e.mu.Unlock()
	return &memoryTx{engine: e, writable: false, tables: snapshot}, nil
}

func cloneSeqs(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneTables(in map[string]map[string][]byte) map[string]map[string][]byte {
	out := make(map[string]map[string][]byte, len(in))
	for table, rows := range in {
		clone := make(map[string][]byte, len(rows))
		for k, v := range rows {
			dup := make([]byte, len(v))
			copy(dup, v)
			clone[k] = dup
		}
		out[table] = clone
	}
	return out
}

type memoryTx struct {
	engine   *MemoryEngine
	tables   map[string]map[string][]byte
	seqs     map[string]uint64
	writable bool
	locked   bool
	done     bool
}

func (t *memoryTx) Writable() bool { return t.writable }

func (t *memoryTx) Bucket(name string) (Bucket, error) {
	rows, ok := t.tables[name]
	if !ok {
		if !t.writable {
			return emptyReadOnlyBucket{}, nil
		}
		rows = make(map[string][]byte)
		t.tables[name] = rows
	}
	return &memoryBucket{tx: t, table: name, rows: rows}, nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if t.writable {
		t.engine.committed = t.tables
		t.engine.seqs = t.seqs
		t.engine.mu.Unlock()
	}
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if t.writable {
		t.engine.mu.Unlock()
	}
	return nil
}

type memoryBucket struct {
	tx    *memoryTx
	table string
	rows  map[string][]byte
}

func (b *memoryBucket) Get(key []byte) ([]byte, error) {
	v, ok := b.rows[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *memoryBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return ErrReadOnlyTx
	}
	dup := make([]byte, len(value))
	copy(dup, value)
	b.rows[string(key)] = dup
	return nil
}

func (b *memoryBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return ErrReadOnlyTx
	}
	delete(b.rows, string(key))
	return nil
}

func (b *memoryBucket) ForEach(fn func(key, value []byte) error) error {
	keys := make([]string, 0, len(b.rows))
	for k := range b.rows {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), b.rows[k]); err != nil {
			return err
		}
	}
	return nil
}

func (b *memoryBucket) NextSequence() (uint64, error) {
	if !b.tx.writable {
		return 0, ErrReadOnlyTx
	}
	if b.tx.seqs == nil {
		b.tx.seqs = make(map[string]uint64)
	}
	b.tx.seqs[b.table]++
	return b.tx.seqs[b.table], nil
}

// sortStrings is a tiny insertion sort kept local to avoid pulling in
// "sort" for a handful of call sites; table row counts per tick are small
// by construction (§4.2 "work is batched per tick and MUST be bounded").
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
