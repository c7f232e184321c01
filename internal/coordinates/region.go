package coordinates

// RegionCoordinates identifies a region's cell in the region grid.
// Region indices are 1-based; index 0 is reserved for the global shard
// (§4.3).
type RegionCoordinates struct {
	X uint8
	Z uint8
}

// RegionCoordinatesFromIndex converts a 1-based region index to its grid
// cell, given the region grid's side length (region_count_sqrt).
func RegionCoordinatesFromIndex(regionIndex uint8, regionCountSqrt uint8) RegionCoordinates {
	rel := regionIndex - 1
	return RegionCoordinates{X: rel % regionCountSqrt, Z: rel / regionCountSqrt}
}

// ToIndex is the inverse of RegionCoordinatesFromIndex.
func (r RegionCoordinates) ToIndex(regionCountSqrt uint8) uint8 {
	return r.Z*regionCountSqrt + r.X + 1
}

// RegionIndexFromChunk derives which region a chunk belongs to, given the
// region's width in chunks.
func RegionIndexFromChunk(c ChunkCoordinates, regionWidthChunks uint16, regionCountSqrt uint8) uint8 {
	x := uint8(uint16(c.X) / regionWidthChunks)
	z := uint8(uint16(c.Z) / regionWidthChunks)
	return RegionCoordinates{X: x, Z: z}.ToIndex(regionCountSqrt)
}
