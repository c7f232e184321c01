package coordinates

import "fmt"

// SmallHexTile is the player-granularity hex tile, the unit every location
// table (LocationState, MobileEntityState, ClaimTileState) is keyed by.
// Y is never stored; it is always derived as -X-Z.
type SmallHexTile struct {
	X   int32
	Z   int32
	Dim uint32
}

// Y returns the cube-coordinate Y implied by X and Z.
func (t SmallHexTile) Y() int32 { return -t.X - t.Z }

func (t SmallHexTile) String() string {
	return fmt.Sprintf("SmallHexTile(%d, %d, dim=%d)", t.X, t.Z, t.Dim)
}

// Distance returns the hex (cube) distance between two small tiles in the
// same dimension. Tiles in different dimensions have no meaningful
// distance; callers must check Dim equality themselves (the simulation
// never compares across dimensions).
func (t SmallHexTile) Distance(other SmallHexTile) int32 {
	return cubeDistance(t.X, t.Z, other.X, other.Z)
}

// Neighbor returns the tile adjacent to t in the given direction, 0..5.
func (t SmallHexTile) Neighbor(direction int) SmallHexTile {
	x, z := hexNeighbor(t.X, t.Z, direction)
	return SmallHexTile{X: x, Z: z, Dim: t.Dim}
}

// Neighbors returns all six tiles adjacent to t, in stable clockwise order.
func (t SmallHexTile) Neighbors() [6]SmallHexTile {
	var out [6]SmallHexTile
	for i := 0; i < 6; i++ {
		out[i] = t.Neighbor(i)
	}
	return out
}

// Ring returns every tile at exact hex distance r from t, for r >= 0, in a
// stable order. Cardinality is 1 when r == 0, otherwise 6*r.
func Ring(center SmallHexTile, r int32) []SmallHexTile {
	offsets := hexRing(r)
	out := make([]SmallHexTile, len(offsets))
	for i, o := range offsets {
		out[i] = SmallHexTile{X: center.X + o[0], Z: center.Z + o[1], Dim: center.Dim}
	}
	return out
}

// InRadius returns every tile within hex distance r of center (inclusive),
// i.e. the union of Ring(center, 0..r).
func InRadius(center SmallHexTile, r int32) []SmallHexTile {
	out := make([]SmallHexTile, 0, 1+3*r*(r+1))
	for k := int32(0); k <= r; k++ {
		out = append(out, Ring(center, k)...)
	}
	return out
}

// OffsetCoordinatesSmall is the rectangular ("offset") form of a small hex
// tile, used by chunk indexing and anywhere a dense rectangular addressing
// scheme is more convenient than cube coordinates.
type OffsetCoordinatesSmall struct {
	X   int32
	Z   int32
	Dim uint32
}

// ToOffset converts t to its offset form. Integer conversions round-trip
// exactly: SmallHexTileFromOffset(t.ToOffset()) == t for all t.
func (t SmallHexTile) ToOffset() OffsetCoordinatesSmall {
	return OffsetCoordinatesSmall{X: t.X + t.Z/2, Z: t.Z, Dim: t.Dim}
}

// SmallHexTileFromOffset converts an offset-form small tile back to hex (cube) form.
func SmallHexTileFromOffset(o OffsetCoordinatesSmall) SmallHexTile {
	return SmallHexTile{X: o.X - o.Z/2, Z: o.Z, Dim: o.Dim}
}
