package coordinates

// ChunkWidth is the number of small tiles along one edge of a chunk (a
// 32x32 rectangle of small tiles, per §3).
const ChunkWidth = 32

// ChunkCoordinates addresses a 32x32 small-tile region. Index is a dense
// integer suitable for use as a map/table key without re-deriving X/Z.
type ChunkCoordinates struct {
	X   int32
	Z   int32
	Dim uint32
}

// Index computes the dense chunk_index per §3:
//
//	chunk_index = (dim-1)*1_000_000 + z*1000 + x + 1
//
// with a zero-offset fast path for dimension 1 (the overworld), which
// skips the (dim-1)*1_000_000 term entirely.
func (c ChunkCoordinates) Index() int64 {
	if c.Dim == 1 {
		return int64(c.Z)*1000 + int64(c.X) + 1
	}
	return int64(c.Dim-1)*1_000_000 + int64(c.Z)*1000 + int64(c.X) + 1
}

// ChunkCoordinatesFromIndex is the inverse of Index.
func ChunkCoordinatesFromIndex(index int64) ChunkCoordinates {
	rel := index - 1
	dim := uint32(rel/1_000_000) + 1
	rel %= 1_000_000
	z := int32(rel / 1000)
	x := int32(rel % 1000)
	return ChunkCoordinates{X: x, Z: z, Dim: dim}
}

// ChunkCoordinatesFromSmall returns the chunk containing a small tile.
// Small tiles index into the chunk grid via floor division by ChunkWidth;
// Go's integer division truncates toward zero, so negative coordinates are
// floor-divided explicitly.
func ChunkCoordinatesFromSmall(s SmallHexTile) ChunkCoordinates {
	return ChunkCoordinates{X: floorDiv(s.X, ChunkWidth), Z: floorDiv(s.Z, ChunkWidth), Dim: s.Dim}
}

// ChunkCoordinatesFromLarge returns the chunk containing a large tile's
// center.
func ChunkCoordinatesFromLarge(l LargeHexTile) ChunkCoordinates {
	return ChunkCoordinatesFromSmall(l.Center())
}

// ChunkCoordinatesFromFloat returns the chunk containing a float tile.
func ChunkCoordinatesFromFloat(f FloatHexTile) ChunkCoordinates {
	return ChunkCoordinatesFromSmall(f.ToSmall())
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ChunkIndexesNear returns the AABB of chunk indexes whose 32x32 area
// intersects the radius-neighborhood hex ring around origin, clipped to
// [0, regionWidthChunks) on both axes of the chunk grid within the
// region. Implementations of spatial range queries use this to bound the
// set of chunks they must scan before falling back to per-tile filtering.
func ChunkIndexesNear(origin SmallHexTile, radius int32, regionWidthChunks int32) []ChunkCoordinates {
	center := ChunkCoordinatesFromSmall(origin)
	// A hex ring of small-tile radius r reaches at most ceil(r/ChunkWidth)
	// chunks from the center chunk in every direction; floor(r/ChunkWidth)+1
	// is never smaller than that.
	chunkRadius := radius/ChunkWidth + 1

	var out []ChunkCoordinates
	for dz := -chunkRadius; dz <= chunkRadius; dz++ {
		for dx := -chunkRadius; dx <= chunkRadius; dx++ {
			cx := center.X + dx
			cz := center.Z + dz
			if regionWidthChunks > 0 {
				if cx < 0 || cx >= regionWidthChunks || cz < 0 || cz >= regionWidthChunks {
					continue
				}
			}
			out = append(out, ChunkCoordinates{X: cx, Z: cz, Dim: origin.Dim})
		}
	}
	return out
}
