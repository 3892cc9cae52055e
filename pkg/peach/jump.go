package peach

import (
	"encoding/binary"

	"github.com/peachpow/gominer/pkg/nighthash"
)

// JumpSeedSize is PEACHJUMPLEN: the 1060-byte seed consumed by each
// cache jump (32-byte nonce, 4-byte running index, 1024-byte tile).
const JumpSeedSize = 32 + 4 + TileSize

// jump performs one round of the cache "jump" walk (§4.4's
// cl_peach_jump): it builds the 1060-byte seed from the current
// nonce, running index, and the tile the index currently points at,
// Nighthashes the seed with no memory transform, and folds the
// resulting digest's eight 32-bit words into the next index.
func jump(index uint32, nonce [32]byte, tile []byte) uint32 {
	var seed [JumpSeedSize]byte
	copy(seed[0:32], nonce[:])
	binary.LittleEndian.PutUint32(seed[32:36], index)
	copy(seed[36:36+TileSize], tile)

	digest := nighthash.Hash(seed[:], index, 0)

	var sum uint32
	for w := 0; w < 8; w++ {
		sum += binary.LittleEndian.Uint32(digest[w*4 : w*4+4])
	}
	return sum & CacheMask
}
