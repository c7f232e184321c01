package coordinates

// FloatCoordPrecisionMul is the fixed-point multiplier FloatHexTile uses to
// represent sub-tile positions in small-tile space. A value of 1 in
// FloatHexTile.X corresponds to 1/FloatCoordPrecisionMul of a small tile.
const FloatCoordPrecisionMul = 100

// cubeDistance is the shared cube-coordinate distance formula every
// concrete hex type's Distance method reduces to: (|dx|+|dy|+|dz|)/2 with
// y derived as -x-z.
func cubeDistance(x1, z1, x2, z2 int32) int32 {
	y1 := -x1 - z1
	y2 := -x2 - z2
	return (absI32(x1-x2) + absI32(y1-y2) + absI32(z1-z2)) / 2
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// hexDirections are the six cube-coordinate unit steps, in clockwise order
// starting from "east", used for neighbor traversal and ring construction.
var hexDirections = [6][2]int32{
	{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1},
}

// hexNeighbor returns the (x, z) of the tile adjacent to (x, z) in the
// given direction, 0..5.
func hexNeighbor(x, z int32, direction int) (int32, int32) {
	d := hexDirections[((direction%6)+6)%6]
	return x + d[0], z + d[1]
}

// hexRing enumerates the (x, z) offsets of every tile at exact cube
// distance r from the origin, in a stable order starting at the tile r
// steps from the origin in direction 4. r == 0 yields the single origin
// tile.
func hexRing(r int32) [][2]int32 {
	if r == 0 {
		return [][2]int32{{0, 0}}
	}
	out := make([][2]int32, 0, 6*r)
	// Start r steps in direction 4 ("south-west"), then walk r steps in
	// each of the six directions to trace the ring.
	x, z := hexNeighborN(0, 0, 4, r)
	for side := 0; side < 6; side++ {
		for step := int32(0); step < r; step++ {
			out = append(out, [2]int32{x, z})
			x, z = hexNeighbor(x, z, side)
		}
	}
	return out
}

func hexNeighborN(x, z int32, direction int, n int32) (int32, int32) {
	d := hexDirections[((direction%6)+6)%6]
	return x + d[0]*n, z + d[1]*n
}
