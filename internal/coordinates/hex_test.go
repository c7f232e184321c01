package coordinates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSmallHexTileOffsetRoundTrip covers spec Testable Property 2: for
// every small hex tile with |x|,|z| <= 1000, dim in {1,2}, the
// offset<->hex round trip is an identity.
func TestSmallHexTileOffsetRoundTrip(t *testing.T) {
	for _, dim := range []uint32{1, 2} {
		for x := int32(-1000); x <= 1000; x++ {
			for z := int32(-1000); z <= 1000; z++ {
				tile := SmallHexTile{X: x, Z: z, Dim: dim}
				offset := tile.ToOffset()
				back := SmallHexTileFromOffset(offset)
				require.Equal(t, tile, back, "round trip mismatch for (%d,%d,%d)", x, z, dim)
			}
		}
	}
}

func TestFloatHexTileSmallRoundTrip(t *testing.T) {
	small := SmallHexTile{X: 12, Z: -7, Dim: 1}
	f := FloatHexTileFromSmall(small)
	assert.Equal(t, small, f.ToSmall())
}

// TestRingCardinality covers spec Testable Property 3.
func TestRingCardinality(t *testing.T) {
	center := SmallHexTile{X: 0, Z: 0, Dim: 1}
	for r := int32(0); r <= 16; r++ {
		ring := Ring(center, r)
		want := int(6 * r)
		if r == 0 {
			want = 1
		}
		assert.Len(t, ring, want, "ring radius %d", r)
		for _, tile := range ring {
			assert.Equal(t, r, tile.Distance(center), "tile %v not at distance %d", tile, r)
		}
	}
}

func TestInRadiusIncludesAllRings(t *testing.T) {
	center := SmallHexTile{X: 3, Z: -2, Dim: 1}
	disk := InRadius(center, 4)
	assert.Len(t, disk, 1+3*4*5)
	seen := map[SmallHexTile]bool{}
	for _, tile := range disk {
		assert.False(t, seen[tile], "duplicate tile %v", tile)
		seen[tile] = true
		assert.LessOrEqual(t, int(tile.Distance(center)), 4)
	}
}

func TestNeighborsAreDistanceOne(t *testing.T) {
	center := SmallHexTile{X: 5, Z: 5, Dim: 1}
	for _, n := range center.Neighbors() {
		assert.Equal(t, int32(1), center.Distance(n))
	}
}

func TestChunkIndexRoundTrip(t *testing.T) {
	cases := []ChunkCoordinates{
		{X: 0, Z: 0, Dim: 1},
		{X: 5, Z: 3, Dim: 1},
		{X: 999, Z: 999, Dim: 1},
		{X: 1, Z: 1, Dim: 2},
	}
	for _, c := range cases {
		idx := c.Index()
		back := ChunkCoordinatesFromIndex(idx)
		assert.Equal(t, c, back, "chunk index round trip for %+v", c)
	}
}

func TestChunkIndexDim1FastPath(t *testing.T) {
	c := ChunkCoordinates{X: 4, Z: 2, Dim: 1}
	assert.Equal(t, int64(2*1000+4+1), c.Index())
}

func TestLargeHexTileSmallTilesRoundTrip(t *testing.T) {
	for lx := int32(-5); lx <= 5; lx++ {
		for lz := int32(-5); lz <= 5; lz++ {
			large := LargeHexTile{X: lx, Z: lz, Dim: 1}
			for _, small := range large.SmallTiles() {
				got := LargeHexTileFromSmall(small)
				assert.Equal(t, large, got, "small tile %+v of large %+v mapped back to %+v", small, large, got)
			}
		}
	}
}

func TestRaycastStraightLineStaysOnPredicate(t *testing.T) {
	a := SmallHexTile{X: 0, Z: 0, Dim: 1}
	b := SmallHexTile{X: 5, Z: 0, Dim: 1}
	ok := Raycast(a, b, func(SmallHexTile) bool { return true })
	assert.True(t, ok)

	blocked := SmallHexTile{X: 2, Z: 0, Dim: 1}
	ok = Raycast(a, b, func(tile SmallHexTile) bool { return tile != blocked })
	assert.False(t, ok)
}

func TestRegionCoordinatesRoundTrip(t *testing.T) {
	const sqrtN = 4
	for idx := uint8(1); idx <= sqrtN*sqrtN; idx++ {
		rc := RegionCoordinatesFromIndex(idx, sqrtN)
		assert.Equal(t, idx, rc.ToIndex(sqrtN))
	}
}
