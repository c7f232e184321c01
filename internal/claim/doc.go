// Package claim implements §4.4's claim, tile, and permission graph: the
// per-tile and per-entity authorization substrate every building,
// resource, and deployable reducer in the simulation checks before it
// mutates shared state.
//
// ClaimTileState rows carry their own small hex tile, and TileAt finds the
// row for a tile by scanning the tile table for a matching Tile field.
// Permission precedence (§4.4, lowest to highest) is evaluated by
// EffectivePermission.
package claim
