package peach

import (
	"encoding/binary"

	"github.com/peachpow/gominer/pkg/nighthash"
)

// TileSize is the byte length of a single Peach cache tile.
const TileSize = 1024

// windowStep is the chaining stride through the tile in step 3 of
// GenerateTile: 32 bytes, i.e. 4 u64 words.
const windowStep = 32

// GenerateTile deterministically derives the tile at index i for a
// given previous-block hash, per §4.3. The result is reproducible
// bit-for-bit for a given (phash, i) pair on any conforming
// implementation: every step is a plain byte-level Nighthash
// invocation with no platform-dependent state.
func GenerateTile(phash [32]byte, i uint32) [TileSize]byte {
	var tile [TileSize]byte

	// Step 1: seed header is (u32 i, phash).
	binary.LittleEndian.PutUint32(tile[0:4], i)
	copy(tile[4:36], phash[:])

	// Step 2: Nighthash the 36-byte header into the 32 bytes following
	// the index stamp, memory transform enabled over the whole header.
	// The memory transform mutates its input, so it runs on a copy and
	// the index stamp itself (tile[0:4]) is left untouched.
	header := make([]byte, 36)
	copy(header, tile[0:36])
	digest := nighthash.Hash(header, i, 36)
	copy(tile[4:36], digest[:])

	// Step 3: chain forward in 32-byte strides, starting one stride in so
	// step 2's digest is kept. Each window re-stamps the tile index into
	// the 4 bytes following the window start, then Nighthashes the
	// 36-byte window (no memory transform — txlen=0, so dflops still runs
	// over the window but never writes back) and writes the 32-byte
	// digest into tile[j+4:j+36]. The last window starts at j=960 and
	// writes up to byte 996; bytes 996..1023 are not written and stay zero.
	for j := windowStep; j+36 <= TileSize; j += windowStep {
		binary.LittleEndian.PutUint32(tile[j+4:j+8], i)
		window := make([]byte, 36)
		copy(window, tile[j:j+36])
		d := nighthash.Hash(window, i, 0)
		copy(tile[j+4:j+36], d[:32])
	}

	return tile
}
