package peach

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/peachpow/gominer/pkg/nighthash"
	"github.com/peachpow/gominer/pkg/trailer"
)

// SolveSlot is the single shared write target for a solve launch. It
// replaces the source's "CAS on the low 32 bits, then non-atomic
// 32-byte store" with a dedicated claim word guarding one full
// 32-byte publish, per the Design Notes in §9: the claim is CAS'd from
// 0 to a thread id, and only the CAS winner writes the nonce.
type SolveSlot struct {
	claim uint32
	nonce [32]byte
	mu    chan struct{} // 1-buffered: acts as a publish-visibility fence
}

// NewSolveSlot returns an empty, unclaimed slot.
func NewSolveSlot() *SolveSlot {
	s := &SolveSlot{mu: make(chan struct{}, 1)}
	s.mu <- struct{}{}
	return s
}

// Reset clears the slot, discarding any previously published nonce.
// The device orchestrator calls it on a phash change, after each cache
// build, and when a published nonce fails re-verification.
func (s *SolveSlot) Reset() {
	<-s.mu
	atomic.StoreUint32(&s.claim, 0)
	s.nonce = [32]byte{}
	s.mu <- struct{}{}
}

// tryPublish attempts to claim the slot for threadID and, on success,
// writes nonce. Returns true if this call's nonce is the one that was
// published; false means another thread already won this round.
func (s *SolveSlot) tryPublish(threadID uint32, nonce [32]byte) bool {
	if threadID == 0 {
		threadID = 1 // 0 is reserved as "unclaimed"
	}
	if !atomic.CompareAndSwapUint32(&s.claim, 0, threadID) {
		return false
	}
	<-s.mu
	s.nonce = nonce
	s.mu <- struct{}{}
	return true
}

// Winner returns the published nonce and whether the slot holds one.
func (s *SolveSlot) Winner() ([32]byte, bool) {
	if atomic.LoadUint32(&s.claim) == 0 {
		return [32]byte{}, false
	}
	<-s.mu
	n := s.nonce
	s.mu <- struct{}{}
	return n, true
}

// candidateNonce builds one full 32-byte nonce from the trailer's
// existing lower 16 bytes and a PRNG-derived haiku-packed upper half,
// per §4.4 steps 1-3.
func candidateNonce(t *trailer.Trailer, prng *PRNG) [32]byte {
	var n [32]byte
	copy(n[0:16], t.Nonce[0:16])

	seed := prng.Next()
	n2, n3 := PackNonce(seed)
	binary.LittleEndian.PutUint64(n[16:24], n2)
	binary.LittleEndian.PutUint64(n[24:32], n3)
	return n
}

// Attempt runs one full solve pipeline for a single candidate nonce:
// SHA-256 the trailer header with the nonce, derive the initial
// cache index, walk eight jumps, SHA-256 the result against the final
// tile, and report whether it clears diff. It returns the nonce tried
// and the final digest regardless of outcome, so callers can log or
// verify either way.
func Attempt(t *trailer.Trailer, cache *Cache, diff byte, prng *PRNG) (nonce [32]byte, hash [32]byte, ok bool) {
	nonce = candidateNonce(t, prng)
	return attemptWithNonce(t, cache, diff, nonce)
}

// attemptWithNonce runs the pipeline for an already-built nonce,
// shared by Attempt (fresh PRNG-packed nonce) and VerifyShare (a
// nonce supplied by the caller for recheck).
func attemptWithNonce(t *trailer.Trailer, cache *Cache, diff byte, nonce [32]byte) (outNonce [32]byte, hash [32]byte, ok bool) {
	var seed [trailer.HashInputSize]byte // 92-byte prefix + 32-byte nonce
	head := t.Encode()
	copy(seed[0:92], head[0:92])
	copy(seed[92:124], nonce[:])
	hash = nighthash.SHA256(seed[:])

	mario := uint32(hash[0])
	for i := 1; i < 32; i++ {
		mario = mario * uint32(hash[i])
	}
	mario &= CacheMask

	for r := 0; r < 8; r++ {
		mario = jump(mario, nonce, cache.Tile(mario))
	}

	final := make([]byte, 32+TileSize)
	copy(final[0:32], hash[:])
	copy(final[32:], cache.Tile(mario))
	hash = nighthash.SHA256(final)

	ok = MeetsDifficulty(hash, diff)
	return nonce, hash, ok
}

// EffectiveDifficulty applies §6's device/solver contract: a nonzero
// supplied diff overrides the trailer's own difficulty byte only when
// it is strictly lower (i.e. a harder supplied value never replaces an
// easier trailer value).
func EffectiveDifficulty(supplied, trailerDiff byte) byte {
	if supplied != 0 && supplied < trailerDiff {
		return supplied
	}
	return trailerDiff
}

// RunWorkItem repeatedly attempts nonces for up to budget tries,
// publishing the first qualifying nonce into slot and returning
// immediately. It returns the number of attempts actually made.
func RunWorkItem(t *trailer.Trailer, cache *Cache, diff byte, prng *PRNG, threadID uint32, slot *SolveSlot, budget int) int {
	for i := 0; i < budget; i++ {
		if atomic.LoadUint32(&slot.claim) != 0 {
			return i
		}
		nonce, _, ok := Attempt(t, cache, diff, prng)
		if ok {
			slot.tryPublish(threadID, nonce)
			return i + 1
		}
	}
	return budget
}
