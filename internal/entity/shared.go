package entity

import (
	"encoding/json"

	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// Shared wraps a store.Table with the §4.7 "shared_table" contract: every
// insert/update/delete on the owning shard is published to mirrors via a
// mesh replication message, and mirrors may only write through the
// replication handler this type registers for itself — never through the
// underlying Table directly.
//
// IsOwner reports whether the calling shard owns Name (so regional code
// can share one Shared value across both an owning and a mirroring
// deployment of the same binary, branching on IsOwner at call time rather
// than needing two separate types).
type Shared[T any] struct {
	table   store.Table[T]
	isOwner func() bool
	mirrors func() mesh.Destination
}

// replicatedWrite is the wire payload for a Shared table's replication
// message: either a Put (Deleted == false) or a Delete.
type replicatedWrite struct {
	Key     []byte
	Value   json.RawMessage
	Deleted bool
}

// NewShared declares a shared table. isOwner and mirrorDest are resolved
// lazily (not at declaration time) so the same package-level Shared value
// works identically whether this process boots as the owning shard or a
// mirror — only the region/global server's own configured role changes
// which branch fires.
func NewShared[T any](name string, isOwner func() bool, mirrorDest func() mesh.Destination) *Shared[T] {
	s := &Shared[T]{
		table:   store.NewTable[T](name),
		isOwner: isOwner,
		mirrors: mirrorDest,
	}
	mesh.RegisterHandler("shared:"+name, func(ctx *reducer.Ctx, raw json.RawMessage) *reducer.Error {
		var w replicatedWrite
		if err := json.Unmarshal(raw, &w); err != nil {
			return reducer.InternalError("entity: decode replicated write for %s: %v", name, err)
		}
		if w.Deleted {
			return reducer.Wrap(s.table.Delete(ctx.Tx, w.Key))
		}
		var v T
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return reducer.InternalError("entity: decode replicated value for %s: %v", name, err)
		}
		return reducer.Wrap(s.table.Put(ctx.Tx, w.Key, v))
	})
	mesh.RegisterSenderResultHandler("shared:"+name, func(ctx *reducer.Ctx, raw json.RawMessage, errMsg *string) *reducer.Error {
		if errMsg != nil {
			return reducer.InternalError("entity: shared table %s replication rejected: %s", name, *errMsg)
		}
		return nil
	})
	return s
}

// Put writes locally (owner only) and emits a replication message to
// every mirror. Calling Put on a non-owning shard is rejected per §4.7:
// "direct writes are rejected" — mirrors must route through the
// replication handler registered above instead.
func (s *Shared[T]) Put(ctx *reducer.Ctx, key []byte, value T) *reducer.Error {
	if !s.isOwner() {
		return reducer.InternalError("entity: write to mirrored shared table %s rejected on non-owning shard", s.table.Name)
	}
	if err := s.table.Put(ctx.Tx, key, value); err != nil {
		return reducer.Wrap(err)
	}
	return s.replicate(ctx, key, value, false)
}

// Delete removes the row locally (owner only) and replicates the
// deletion.
func (s *Shared[T]) Delete(ctx *reducer.Ctx, key []byte) *reducer.Error {
	if !s.isOwner() {
		return reducer.InternalError("entity: delete on mirrored shared table %s rejected on non-owning shard", s.table.Name)
	}
	if err := s.table.Delete(ctx.Tx, key); err != nil {
		return reducer.Wrap(err)
	}
	var zero T
	return s.replicate(ctx, key, zero, true)
}

// Get reads locally regardless of ownership — mirrors are always
// readable, per §4.7 ("mirrors are read-only from the outside", not
// unreadable).
func (s *Shared[T]) Get(tx store.Tx, key []byte) (T, bool, *reducer.Error) {
	v, ok, err := s.table.Get(tx, key)
	return v, ok, reducer.Wrap(err)
}

// Iterate scans every row, owner or mirror.
func (s *Shared[T]) Iterate(tx store.Tx, fn func(key []byte, value T) error) *reducer.Error {
	return reducer.Wrap(s.table.Iterate(tx, fn))
}

func (s *Shared[T]) replicate(ctx *reducer.Ctx, key []byte, value T, deleted bool) *reducer.Error {
	raw, err := json.Marshal(value)
	if err != nil {
		return reducer.InternalError("entity: encode replicated value for %s: %v", s.table.Name, err)
	}
	payload := replicatedWrite{Key: key, Value: raw, Deleted: deleted}
	kind := "shared:" + s.table.Name
	dest := s.mirrors()
	if sendErr := mesh.Send(ctx, ctx.Sender.RegionIndex(), kind, payload, dest); sendErr != nil {
		return sendErr
	}
	return nil
}
