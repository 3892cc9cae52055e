package peach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheBuildRangeAdvancesProgress(t *testing.T) {
	var phash [32]byte
	c := NewCache(phash)

	c.BuildRange(0, 10)
	assert.Equal(t, uint32(10), c.Progress())
	assert.False(t, c.Ready())

	tile := c.Tile(3)
	assert.Len(t, tile, TileSize)
}

func TestCacheTileLazyGenerationMatchesEagerBuild(t *testing.T) {
	var phash [32]byte
	phash[0] = 0x42

	lazy := NewCache(phash)
	lazyTile := lazy.Tile(17)

	eager := NewCache(phash)
	eager.BuildRange(17, 18)
	eagerTile := eager.Tile(17)

	assert.Equal(t, eagerTile, lazyTile)
}

func TestCacheTileMasksOutOfRangeIndex(t *testing.T) {
	var phash [32]byte
	c := NewCache(phash)

	a := c.Tile(5)
	b := c.Tile(5 + TileCount)
	assert.Equal(t, a, b, "indices congruent mod TileCount must resolve to the same tile")
}
