package main

import (
	"fmt"
	"time"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// withWriteTx opens storePath's bbolt engine, runs fn inside one writable
// transaction, and commits on success or rolls back and returns fn's
// error otherwise. Every admin_*/cheat_* subcommand goes through this so
// a failed reducer call never leaves a half-applied edit on disk.
func withWriteTx(fn func(tx store.Tx) *reducer.Error) error {
	engine, err := store.OpenBolt(storePath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", storePath, err)
	}
	defer engine.Close()

	tx, err := engine.Begin(true)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if rerr := fn(tx); rerr != nil {
		tx.Rollback()
		return fmt.Errorf("%s", rerr.Message)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// withReadTx is withWriteTx's read-only counterpart, for inspection
// commands that must not mutate the store.
func withReadTx(fn func(tx store.Tx) *reducer.Error) error {
	engine, err := store.OpenBolt(storePath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", storePath, err)
	}
	defer engine.Close()

	tx, err := engine.Begin(false)
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	if rerr := fn(tx); rerr != nil {
		return fmt.Errorf("%s", rerr.Message)
	}
	return nil
}

// adminCtx builds a reducer.Ctx authorized as RoleAdmin for worldctl's
// own synthetic operator identity, since every admin_* reducer gates on
// role rather than on a specific known EID.
func adminCtx(tx store.Tx) *reducer.Ctx {
	now := time.Now().UTC()
	return reducer.NewCtx(tx, eid.None, false, reducer.RoleAdmin, now, uint64(now.UnixNano()))
}
