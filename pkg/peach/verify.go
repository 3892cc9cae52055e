package peach

import "github.com/peachpow/gominer/pkg/trailer"

// VerifyShare recomputes the full solve pipeline on the CPU for a
// trailer and a previously-emitted nonce, independent of whatever
// device produced it. It is the spec's CPU fallback hash checker: the
// authority a pool (or test) uses to confirm a submitted share, and
// the soundness property from §8 ("re-running the full pipeline on
// CPU must produce a digest with >= diff leading zero bits").
func VerifyShare(t *trailer.Trailer, cache *Cache, diff byte, nonce [32]byte) (hash [32]byte, ok bool) {
	_, hash, ok = attemptWithNonce(t, cache, diff, nonce)
	return hash, ok
}
