package entity

import (
	"sort"
	"sync"

	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// DeleteHook removes any row a package keeps keyed by id. Hooks must be
// idempotent: deleting an id with no row in that package's table is not
// an error.
type DeleteHook func(tx store.Tx, id eid.ID) *reducer.Error

var (
	hookMu sync.Mutex
	hooks  = map[string]DeleteHook{}
)

// RegisterDeleteHook extends DeleteEntity's fixed sweep with a table kept
// outside this package. §9's design note calls out that "the delete
// helper for an entity must know every table that references it; if a
// new table is introduced, this helper is the single point to extend" —
// packages outside entity that key rows by entity ID (claim, session)
// register their own hooks from an init() function rather than entity.go
// importing each of those packages directly, which would be a cycle
// (claim imports entity for the location tables). name is the key for
// duplicate-registration panics and also the sort key that fixes the
// order hooks run in; registered names are dotted "package.table"
// strings such as "claim.tile".
func RegisterDeleteHook(name string, hook DeleteHook) {
	hookMu.Lock()
	defer hookMu.Unlock()
	if _, exists := hooks[name]; exists {
		panic("entity: delete hook already registered for " + name)
	}
	hooks[name] = hook
}

// orderedHookNames returns registered hook names in a stable, sorted
// order so DeleteEntity's sweep is deterministic (§5 Determinism) instead
// of depending on Go's randomized map iteration.
func orderedHookNames() []string {
	hookMu.Lock()
	defer hookMu.Unlock()
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteEntity removes id's row from every table keyed by entity ID,
// including LocationState/MobileEntityState and every table registered
// via RegisterDeleteHook. Per §3's lifecycle note, callers must cancel
// any timers referencing the entity themselves, before calling
// DeleteEntity — this sweep only touches storage rows, not scheduled
// work, since the scheduler package has no notion of "entity" to search
// by.
func DeleteEntity(tx store.Tx, id eid.ID) *reducer.Error {
	if err := RemoveLocation(tx, id); err != nil {
		return err
	}
	for _, name := range orderedHookNames() {
		hookMu.Lock()
		hook := hooks[name]
		hookMu.Unlock()
		if err := hook(tx, id); err != nil {
			return err
		}
	}
	return nil
}
