package peach

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// TileCount is PEACHCACHELEN: the number of tiles in the Peach cache,
// and the mask width used everywhere a tile index must be clamped.
const TileCount = 1 << 20 // 1,048,576

// CacheMask is PEACHCACHELEN-1, the mask applied to keep a running
// tile index inside the cache.
const CacheMask = uint32(TileCount - 1)

// CacheSize is the full byte size of a fully built Peach cache (1 GiB).
const CacheSize = TileCount * TileSize

// Cache is the Peach "MAP": a phash-derived, index-addressable set of
// tiles. Tiles are generated lazily and memoized on first access, so a
// Cache never has to hold the full 1 GiB up front for callers that
// only touch a handful of indices (a CPU recheck of one share, or a
// test); BuildRange/Build populate eagerly for the device orchestrator,
// which requires MAP fully built before leaving INIT.
//
// A Cache is immutable once built for its phash: a phash change always
// means constructing a new Cache, never mutating this one.
type Cache struct {
	phash    [32]byte
	mu       sync.RWMutex
	tiles    map[uint32][TileSize]byte
	progress uint32 // atomically updated tile count built so far
}

// NewCache returns a Cache for phash with no tiles yet generated.
// Reads still work without calling Build first — they just generate
// and memoize on demand — but the orchestrator's INIT->IDLE transition
// requires Progress() == TileCount, which only Build/BuildRange advance.
func NewCache(phash [32]byte) *Cache {
	return &Cache{
		phash: phash,
		tiles: make(map[uint32][TileSize]byte),
	}
}

// Phash returns the previous-block hash this cache was built for.
func (c *Cache) Phash() [32]byte { return c.phash }

// Progress returns the number of tiles built so far via Build or
// BuildRange (on-demand Tile() reads do not advance this counter),
// mirroring the orchestrator's INIT-state build-progress counter in
// §3/§4.5.
func (c *Cache) Progress() uint32 {
	return atomic.LoadUint32(&c.progress)
}

// Ready reports whether every tile has been eagerly built.
func (c *Cache) Ready() bool {
	return c.Progress() == TileCount
}

// Build eagerly generates every tile. For incremental progress
// reporting (as the device orchestrator's INIT state requires), use
// BuildRange in a loop instead.
func (c *Cache) Build() {
	c.BuildRange(0, TileCount)
}

// BuildRange eagerly generates tiles [start, end) and advances the
// progress counter accordingly. Tiles may be built in any order or
// split across goroutines, since each tile depends only on
// (phash, index).
func (c *Cache) BuildRange(start, end uint32) {
	for i := start; i < end; i++ {
		c.store(i, GenerateTile(c.phash, i))
		atomic.AddUint32(&c.progress, 1)
	}
}

func (c *Cache) store(i uint32, tile [TileSize]byte) {
	c.mu.Lock()
	c.tiles[i] = tile
	c.mu.Unlock()
}

// Tile returns the 1024-byte tile for index i, generating and
// memoizing it first if this is the first access. i is masked to
// CacheMask first, matching every call site's own masking discipline.
func (c *Cache) Tile(i uint32) []byte {
	i &= CacheMask

	c.mu.RLock()
	tile, ok := c.tiles[i]
	c.mu.RUnlock()
	if ok {
		out := tile
		return out[:]
	}

	tile = GenerateTile(c.phash, i)
	c.store(i, tile)
	out := tile
	return out[:]
}

func (c *Cache) String() string {
	return fmt.Sprintf("peach.Cache{phash=%x, progress=%d/%d}", c.phash[:4], c.Progress(), TileCount)
}
