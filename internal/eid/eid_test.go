package eid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacksRegionAndCounter(t *testing.T) {
	id := New(3, 42)
	assert.Equal(t, uint8(3), id.RegionIndex())
	assert.Equal(t, uint64(42), id.Counter())
}

func TestNewPanicsOnOversizedCounter(t *testing.T) {
	assert.Panics(t, func() {
		New(1, uint64(1)<<56)
	})
}

func TestNoneIsZeroAndRecognized(t *testing.T) {
	assert.True(t, None.IsNone())
	assert.False(t, New(1, 1).IsNone())
}

// TestAllocationUniqueness covers spec Testable Property 1: running 10000
// allocations in a single region yields 10000 distinct EIDs whose upper 8
// bits equal the region index.
func TestAllocationUniqueness(t *testing.T) {
	const region = uint8(5)
	seen := make(map[ID]bool, 10000)
	var counter uint64
	for i := 0; i < 10000; i++ {
		counter++
		id := New(region, counter)
		require.False(t, seen[id], "duplicate id %v at iteration %d", id, i)
		seen[id] = true
		require.Equal(t, region, id.RegionIndex())
	}
	assert.Len(t, seen, 10000)
}
