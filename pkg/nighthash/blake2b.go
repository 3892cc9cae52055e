package nighthash

import "encoding/binary"

var blake2bIV = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

var blake2bSigma = [12][16]byte{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
}

// blake2bCompress runs the Blake2b compression function (all 12 rounds)
// over a single 128-byte message block, per RFC 7693 §3.2.
func blake2bCompress(h *[8]uint64, block []byte, t uint64, final bool) {
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(block[i*8:])
	}

	v := [16]uint64{
		h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7],
		blake2bIV[0], blake2bIV[1], blake2bIV[2], blake2bIV[3],
		blake2bIV[4] ^ t, blake2bIV[5], blake2bIV[6], blake2bIV[7],
	}
	if final {
		v[14] = ^v[14]
	}

	g := func(a, b, c, d, x, y int) {
		v[a] = v[a] + v[b] + m[x]
		v[d] = rotr64(v[d]^v[a], 32)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 24)
		v[a] = v[a] + v[b] + m[y]
		v[d] = rotr64(v[d]^v[a], 16)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 63)
	}

	for round := 0; round < 12; round++ {
		s := blake2bSigma[round]
		g(0, 4, 8, 12, int(s[0]), int(s[1]))
		g(1, 5, 9, 13, int(s[2]), int(s[3]))
		g(2, 6, 10, 14, int(s[4]), int(s[5]))
		g(3, 7, 11, 15, int(s[6]), int(s[7]))
		g(0, 5, 10, 15, int(s[8]), int(s[9]))
		g(1, 6, 11, 12, int(s[10]), int(s[11]))
		g(2, 7, 8, 13, int(s[12]), int(s[13]))
		g(3, 4, 9, 14, int(s[14]), int(s[15]))
	}

	for i := 0; i < 8; i++ {
		h[i] ^= v[i] ^ v[i+8]
	}
}

func rotr64(x uint64, n uint) uint64 {
	return (x >> n) | (x << (64 - n))
}

// blake2bParamIV builds the initial chaining value for an unsalted,
// unpersonalized Blake2b instance producing a 32-byte digest, keyed with
// a key of length keyLen bytes (XORed into IV per RFC 7693 §2.5).
func blake2bParamIV(keyLen int) [8]uint64 {
	h := blake2bIV
	h[0] ^= 0x01010000 ^ uint64(keyLen)<<8 ^ 32
	return h
}

// blake2bKeySetup runs the keyed fast-path setup: it compresses the
// zero-padded key block once and caches the resulting chaining value, so
// every subsequent hash with the same key length resumes from this
// precomputed state instead of repeating the key-block compression.
func blake2bKeySetup(keyLen int) [8]uint64 {
	h := blake2bParamIV(keyLen)
	var block [128]byte // all-zero key material, zero-padded to a full block
	blake2bCompress(&h, block[:], 128, false)
	return h
}

// blake2bKey32 and blake2bKey64 are the precomputed fast-path chaining
// values for keylen-32 and keylen-64 keyed Blake2b, computed once at
// package init instead of being repeated on every call.
var (
	blake2bKey32 = blake2bKeySetup(32)
	blake2bKey64 = blake2bKeySetup(64)
)

// blake2bKeyed hashes data starting from a precomputed keyed chaining
// value, producing a 32-byte digest. For empty data the key block is
// itself the final block, so the precomputed state cannot be used and
// the key block is compressed from the parameter IV with the final flag.
func blake2bKeyed(precomputed [8]uint64, keyLen int, data []byte) [32]byte {
	h := precomputed
	t := uint64(128) // key block already consumed

	if len(data) == 0 {
		h = blake2bParamIV(keyLen)
		var block [128]byte // all-zero key material, zero-padded to a full block
		blake2bCompress(&h, block[:], t, true)
	} else {
		for len(data) > 128 {
			t += 128
			blake2bCompress(&h, data[:128], t, false)
			data = data[128:]
		}
		var block [128]byte
		copy(block[:], data)
		t += uint64(len(data))
		blake2bCompress(&h, block[:], t, true)
	}

	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], h[i])
	}
	return out
}

// Blake2b32 computes 256-bit Blake2b keyed with a 32-byte (all-zero) key,
// resuming from the precomputed keylen-32 fast-path state.
func Blake2b32(data []byte) [32]byte {
	return blake2bKeyed(blake2bKey32, 32, data)
}

// Blake2b64 computes 256-bit Blake2b keyed with a 64-byte (all-zero) key,
// resuming from the precomputed keylen-64 fast-path state.
func Blake2b64(data []byte) [32]byte {
	return blake2bKeyed(blake2bKey64, 64, data)
}
