package peach

import (
	"encoding/binary"
	"math/bits"
)

// MeetsDifficulty runs the coarse/fine check from §4.4 step 8 against
// a 32-byte digest: the digest is read as eight big-endian u32 words
// (the source's byte_perm-based swap to big-endian for leading-zero
// counting), diff>>5 whole words must be zero, and the next word must
// have at least diff&31 leading zero bits.
func MeetsDifficulty(hash [32]byte, diff byte) bool {
	coarse := int(diff >> 5)
	fine := uint(diff & 31)

	for k := 0; k < coarse; k++ {
		if binary.BigEndian.Uint32(hash[k*4:k*4+4]) != 0 {
			return false
		}
	}
	if coarse >= 8 {
		return true
	}
	word := binary.BigEndian.Uint32(hash[coarse*4 : coarse*4+4])
	return bits.LeadingZeros32(word) >= int(fine)
}
