// Package coordinates implements the hexagonal tile hierarchy the rest of
// the simulation addresses entities by: small tiles (the player-facing
// unit), large tiles (a 7-tile group), float tiles (small-tile space at
// fixed-point precision, used for continuous motion), chunks (32x32 small
// tile rectangles), and regions (the shard grid cell a chunk belongs to).
//
// # Overview
//
// Every concrete coordinate type carries its own dimension ID, so two tiles
// at the same (x, z) in different dimensions never compare equal. All of
// the hex math below uses the cube-coordinate identity y = -x-z and is
// closed under exactly two operations the rest of the simulation depends
// on: neighbor traversal and distance.
//
// # Hierarchy
//
//	RegionCoordinates
//	        ▲
//	        │ region_width_chunks
//	ChunkCoordinates  (32x32 small tiles)
//	        ▲
//	        │ 7 small tiles per group
//	LargeHexTile
//	        ▲
//	        │ FLOAT_COORD_PRECISION_MUL
//	SmallHexTile ◄──────────────► FloatHexTile
//
// # Conversions
//
// Conversions between hex and "offset" (rectangular) forms are pure and
// round-trip exactly for integer types. FloatHexTile.ToSmall divides the
// fixed-point coordinates with roundHalfEvenDiv, which rounds to the
// nearest small tile and breaks exact ties toward the even one.
package coordinates
