package nighthash

import "encoding/binary"

// keccakRate256 is the sponge rate in bytes for a 256-bit-capacity/256-bit
// output Keccak instance (1600 - 2*256 = 1088 bits = 136 bytes).
const keccakRate256 = 136

var keccakRC = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

var keccakRotc = [24]uint{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

var keccakPiln = [24]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

// keccakF1600 applies the 24-round Keccak-f[1600] permutation in place.
func keccakF1600(a *[25]uint64) {
	var bc [5]uint64
	for round := 0; round < 24; round++ {
		// theta
		for i := 0; i < 5; i++ {
			bc[i] = a[i] ^ a[i+5] ^ a[i+10] ^ a[i+15] ^ a[i+20]
		}
		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ rotl64(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				a[j+i] ^= t
			}
		}

		// rho + pi
		t := a[1]
		for i := 0; i < 24; i++ {
			j := keccakPiln[i]
			bc[0] = a[j]
			a[j] = rotl64(t, keccakRotc[i])
			t = bc[0]
		}

		// chi
		for j := 0; j < 25; j += 5 {
			for i := 0; i < 5; i++ {
				bc[i] = a[j+i]
			}
			for i := 0; i < 5; i++ {
				a[j+i] ^= (^bc[(i+1)%5]) & bc[(i+2)%5]
			}
		}

		// iota
		a[0] ^= keccakRC[round]
	}
}

func rotl64(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}

// keccakSponge absorbs data with the given domain-separation suffix byte
// (0x06 for SHA-3, 0x01 for "Keccak-final"/legacy Keccak) and squeezes a
// 32-byte digest.
func keccakSponge(data []byte, domain byte) [32]byte {
	var a [25]uint64

	rate := keccakRate256
	// Absorb full rate-sized blocks.
	for len(data) >= rate {
		for i := 0; i < rate/8; i++ {
			a[i] ^= binary.LittleEndian.Uint64(data[i*8:])
		}
		keccakF1600(&a)
		data = data[rate:]
	}

	// Final (possibly empty) partial block with padding.
	var block [keccakRate256]byte
	copy(block[:], data)
	block[len(data)] = domain
	block[rate-1] ^= 0x80
	for i := 0; i < rate/8; i++ {
		a[i] ^= binary.LittleEndian.Uint64(block[i*8:])
	}
	keccakF1600(&a)

	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], a[i])
	}
	return out
}

// SHA3 computes the NIST FIPS 202 SHA3-256 digest (domain byte 0x06).
func SHA3(data []byte) [32]byte {
	return keccakSponge(data, 0x06)
}

// KeccakFinal computes the original (pre-NIST) Keccak-256 digest, using
// the legacy 0x01 domain-separation byte instead of SHA-3's 0x06.
func KeccakFinal(data []byte) [32]byte {
	return keccakSponge(data, 0x01)
}
