package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupRingObserve(t *testing.T) {
	r := NewDedupRing(50)

	assert.False(t, r.Observe(1), "first sighting is fresh")
	assert.True(t, r.Observe(1), "second sighting is a duplicate")
	assert.Equal(t, 1, r.Len())
}

func TestDedupRingEvictsOldestAtCapacity(t *testing.T) {
	r := NewDedupRing(50)
	for id := uint(1); id <= 50; id++ {
		r.Observe(id)
	}
	assert.Equal(t, 50, r.Len())

	// 51st id evicts id 1, the oldest
	assert.False(t, r.Observe(51))
	assert.Equal(t, 50, r.Len())
	assert.False(t, r.Observe(1), "evicted id reads as fresh again")
	assert.True(t, r.Observe(51), "recent ids are still held")
}

func TestDedupRingMinimumCapacity(t *testing.T) {
	r := NewDedupRing(0)
	assert.False(t, r.Observe(1))
	assert.False(t, r.Observe(2))
	assert.True(t, r.Observe(2))
}
