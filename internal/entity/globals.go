package entity

import (
	"github.com/dreamware/worldshard/internal/eid"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
)

// globalsKey is the Globals singleton's fixed primary key — "the only
// module-global", per §9's design note, and the sole row any EID or
// DimensionID allocation ever touches.
var globalsKey = []byte("globals:0")

// Globals is the singleton row backing every EID and DimensionID
// allocation on a region. version is always 0; it exists as an explicit
// field (rather than relying on the fixed key alone) so a decoded row is
// self-describing in admin tooling dumps.
type Globals struct {
	Version         int
	NextEIDCounter  uint64
	NextDimensionID uint32
}

// GlobalsTable is the Globals table. Exactly one row exists per region,
// at globalsKey.
var GlobalsTable = store.NewTable[Globals]("globals")

// loadGlobals returns the region's Globals row, initializing it in place
// if this is the first allocation the region has ever performed.
// DimensionID 1 (OverworldDimension) is pre-reserved so the first call to
// AllocateDimension returns 2.
func loadGlobals(tx store.Tx) (Globals, *reducer.Error) {
	g, ok, err := GlobalsTable.Get(tx, globalsKey)
	if err != nil {
		return Globals{}, reducer.Wrap(err)
	}
	if !ok {
		g = Globals{Version: 0, NextEIDCounter: 1, NextDimensionID: uint32(eid.OverworldDimension) + 1}
	}
	return g, nil
}

// AllocateEID performs the read-modify-write on Globals that implements
// §3's EID allocation: "a read-modify-write on that row inside a
// transaction". regionIndex is the calling region's own index, packed
// into the EID's upper 8 bits.
func AllocateEID(tx store.Tx, regionIndex uint8) (eid.ID, *reducer.Error) {
	g, err := loadGlobals(tx)
	if err != nil {
		return eid.None, err
	}
	counter := g.NextEIDCounter
	g.NextEIDCounter++
	if werr := GlobalsTable.Put(tx, globalsKey, g); werr != nil {
		return eid.None, reducer.Wrap(werr)
	}
	return eid.New(regionIndex, counter), nil
}

// AllocateDimension allocates the next instanced-interior DimensionID.
func AllocateDimension(tx store.Tx) (eid.DimensionID, *reducer.Error) {
	g, err := loadGlobals(tx)
	if err != nil {
		return 0, err
	}
	id := g.NextDimensionID
	g.NextDimensionID++
	if werr := GlobalsTable.Put(tx, globalsKey, g); werr != nil {
		return 0, reducer.Wrap(werr)
	}
	return eid.DimensionID(id), nil
}

// CreateEntity allocates a fresh EID on regionIndex. Callers insert their
// typed row(s) keyed by the returned EID immediately afterward, inside
// the same transaction, per §3's "create_entity(ctx) (EID alloc) followed
// by inserting typed rows" lifecycle.
func CreateEntity(tx store.Tx, regionIndex uint8) (eid.ID, *reducer.Error) {
	return AllocateEID(tx, regionIndex)
}
