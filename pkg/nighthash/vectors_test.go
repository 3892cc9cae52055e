package nighthash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, c := range cases {
		got := SHA256([]byte(c.in))
		assert.Equal(t, c.want, hex.EncodeToString(got[:]), "SHA256(%q)", c.in)
	}
}

func TestSHA1KnownVectors(t *testing.T) {
	got := SHA1([]byte(""))
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", hex.EncodeToString(got[:]))

	got = SHA1([]byte("abc"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hex.EncodeToString(got[:]))
}

func TestMD5KnownVectors(t *testing.T) {
	got := MD5([]byte(""))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex.EncodeToString(got[:]))

	got = MD5([]byte("abc"))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", hex.EncodeToString(got[:]))
}

func TestSHA3KnownVectors(t *testing.T) {
	got := SHA3([]byte(""))
	assert.Equal(t, "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a", hex.EncodeToString(got[:]))
}

func TestKeccakFinalKnownVectors(t *testing.T) {
	// Legacy (pre-NIST) Keccak-256, domain byte 0x01 — the value widely
	// published as Keccak256("") in Ethereum-ecosystem references.
	got := KeccakFinal([]byte(""))
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(got[:]))
}

func TestMD2KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "8350e5a3e24c153df2275c9f80692773"},
		{"abc", "da853b0d3f88d99b30283a69e6ded6bb"},
		{"message digest", "ab4f496bfb2a530b219ff33031fe06b0"},
	}
	for _, c := range cases {
		got := MD2([]byte(c.in))
		assert.Equal(t, c.want, hex.EncodeToString(got[:]), "MD2(%q)", c.in)
	}
}

func TestMD2SBoxIsAPermutation(t *testing.T) {
	seen := make(map[byte]bool)
	for _, b := range md2SBox {
		assert.False(t, seen[b], "duplicate S-box entry %d", b)
		seen[b] = true
	}
	assert.Len(t, seen, 256)
}

func TestBlake2bKeyedFastPathDeterministic(t *testing.T) {
	a := Blake2b32([]byte("peach"))
	b := Blake2b32([]byte("peach"))
	assert.Equal(t, a, b)

	c := Blake2b64([]byte("peach"))
	assert.NotEqual(t, a, c, "keylen-32 and keylen-64 fast paths must diverge")
}
