package nighthash

import "encoding/binary"

var sha1IV = [5]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476, 0xC3D2E1F0}

// SHA1 computes the standard FIPS 180-4 SHA-1 digest of data, zero-extended
// from 160 to 256 bits by the caller when used as a Nighthash arm.
func SHA1(data []byte) [20]byte {
	h := sha1IV
	msg := sha256Pad(data) // identical padding scheme (0x80, zeros, 64-bit BE length)

	var w [80]uint32
	for off := 0; off < len(msg); off += 64 {
		block := msg[off : off+64]
		for i := 0; i < 16; i++ {
			w[i] = binary.BigEndian.Uint32(block[i*4:])
		}
		for i := 16; i < 80; i++ {
			w[i] = rotl32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
		}

		a, b, c, d, e := h[0], h[1], h[2], h[3], h[4]
		for i := 0; i < 80; i++ {
			var f, k uint32
			switch {
			case i < 20:
				f = (b & c) | (^b & d)
				k = 0x5A827999
			case i < 40:
				f = b ^ c ^ d
				k = 0x6ED9EBA1
			case i < 60:
				f = (b & c) | (b & d) | (c & d)
				k = 0x8F1BBCDC
			default:
				f = b ^ c ^ d
				k = 0xCA62C1D6
			}
			temp := rotl32(a, 5) + f + e + k + w[i]
			e = d
			d = c
			c = rotl32(b, 30)
			b = a
			a = temp
		}

		h[0] += a
		h[1] += b
		h[2] += c
		h[3] += d
		h[4] += e
	}

	var out [20]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}
