// Package entity implements §3's entity lifecycle and the two location
// tables every spatial entity lives in exactly one of: LocationState
// (static) and MobileEntityState (moving, with client interpolation
// hints). It also owns the Globals singleton that allocates EIDs and
// DimensionIDs, and the §4.7 shared-table replication contract that
// every cross-shard-mirrored table goes through.
//
// Deletion is the fixed sweep described in §3's lifecycle note: the set
// of tables that key rows by entity ID is known at compile time, so
// DeleteEntity is the single place that sweep is extended whenever a new
// keyed table is introduced elsewhere in the tree.
package entity
