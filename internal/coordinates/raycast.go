package coordinates

// Raycast marches the small tiles on the line from a to b (inclusive of
// both endpoints) and reports whether predicate holds for every one of
// them. It short-circuits on the first tile that fails predicate.
//
// The march uses cube-coordinate linear interpolation rounded to the
// nearest tile at each of the N = Distance(a, b) steps, the standard way
// to walk a line through a hex grid without missing or double-visiting a
// tile.
func Raycast(a, b SmallHexTile, predicate func(SmallHexTile) bool) bool {
	n := a.Distance(b)
	if n == 0 {
		return predicate(a)
	}
	for i := int32(0); i <= n; i++ {
		t := float64(i) / float64(n)
		tile := hexLerp(a, b, t)
		if !predicate(tile) {
			return false
		}
	}
	return true
}

func hexLerp(a, b SmallHexTile, t float64) SmallHexTile {
	ax, ay, az := float64(a.X), float64(a.Y()), float64(a.Z)
	bx, by, bz := float64(b.X), float64(b.Y()), float64(b.Z)
	x := ax + (bx-ax)*t
	y := ay + (by-ay)*t
	z := az + (bz-az)*t
	return cubeRound(x, y, z, a.Dim)
}

// cubeRound snaps a fractional cube coordinate to the nearest valid hex
// tile, fixing up whichever axis drifted most from its rounded value so
// that x+y+z == 0 still holds exactly.
func cubeRound(x, y, z float64, dim uint32) SmallHexTile {
	rx, ry, rz := roundF(x), roundF(y), roundF(z)

	dx := abs(rx - x)
	dy := abs(ry - y)
	dz := abs(rz - z)

	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}

	return SmallHexTile{X: int32(rx), Z: int32(rz), Dim: dim}
}

func roundF(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return -float64(int64(-f + 0.5))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
