// Package eid implements the entity ID and dimension ID allocation scheme
// described in spec.md §3: a 64-bit EID whose upper 8 bits encode the
// originating region and whose lower 56 bits are a monotonically
// increasing per-region counter, plus the matching 32-bit dimension ID
// counter. Both counters live in the single "Globals" row a region's
// transactional store holds (see internal/store and internal/entity),
// so allocation here is pure arithmetic over a caller-supplied counter
// value — the read-modify-write on the Globals row itself happens inside
// the reducer transaction that calls entity.AllocateEID, per §9 "Global mutable
// state".
package eid
