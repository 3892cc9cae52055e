// Package trailer implements the 160-byte Peach block trailer (BT): the
// wire/hash format shared between the pool's Stratum job payloads and
// the solver's SHA-256 input.
package trailer

import "encoding/binary"

// Size is the fixed wire length of a block trailer in bytes.
const Size = 160

// Field byte offsets within the trailer, fixed for wire/hash compatibility.
const (
	OffPhash      = 0
	OffBnum       = 32
	OffMfee       = 40
	OffTcount     = 48
	OffTime0      = 52
	OffDifficulty = 56
	OffMroot      = 60
	OffNonce      = 92
	OffStime      = 124
	OffBhash      = 128

	// HashInputSize is the length of the SHA-256 seed for the solver:
	// the 92-byte prefix (phash..mroot) plus the 32-byte nonce.
	HashInputSize = OffNonce + 32
)

// Trailer is the in-memory representation of a 160-byte block trailer.
type Trailer struct {
	Phash      [32]byte
	Bnum       uint64
	Mfee       uint64
	Tcount     uint32
	Time0      uint32
	Difficulty [4]byte // only byte 0 is consumed by PoW
	Mroot      [32]byte
	Nonce      [32]byte
	Stime      uint32
	Bhash      [32]byte
}

// Diff returns the single difficulty byte consumed by the PoW evaluator.
func (t *Trailer) Diff() byte {
	return t.Difficulty[0]
}

// Decode parses a 160-byte wire trailer into t.
func Decode(buf []byte) (*Trailer, error) {
	if len(buf) != Size {
		return nil, errTrailerSize(len(buf))
	}
	t := &Trailer{}
	copy(t.Phash[:], buf[OffPhash:OffPhash+32])
	t.Bnum = binary.LittleEndian.Uint64(buf[OffBnum:])
	t.Mfee = binary.LittleEndian.Uint64(buf[OffMfee:])
	t.Tcount = binary.LittleEndian.Uint32(buf[OffTcount:])
	t.Time0 = binary.LittleEndian.Uint32(buf[OffTime0:])
	copy(t.Difficulty[:], buf[OffDifficulty:OffDifficulty+4])
	copy(t.Mroot[:], buf[OffMroot:OffMroot+32])
	copy(t.Nonce[:], buf[OffNonce:OffNonce+32])
	t.Stime = binary.LittleEndian.Uint32(buf[OffStime:])
	copy(t.Bhash[:], buf[OffBhash:OffBhash+32])
	return t, nil
}

// Encode serializes t into its 160-byte wire form.
func (t *Trailer) Encode() []byte {
	buf := make([]byte, Size)
	copy(buf[OffPhash:], t.Phash[:])
	binary.LittleEndian.PutUint64(buf[OffBnum:], t.Bnum)
	binary.LittleEndian.PutUint64(buf[OffMfee:], t.Mfee)
	binary.LittleEndian.PutUint32(buf[OffTcount:], t.Tcount)
	binary.LittleEndian.PutUint32(buf[OffTime0:], t.Time0)
	copy(buf[OffDifficulty:], t.Difficulty[:])
	copy(buf[OffMroot:], t.Mroot[:])
	copy(buf[OffNonce:], t.Nonce[:])
	binary.LittleEndian.PutUint32(buf[OffStime:], t.Stime)
	copy(buf[OffBhash:], t.Bhash[:])
	return buf
}

// HashInput returns the 124-byte SHA-256 seed: the 92-byte prefix
// (phash..mroot) concatenated with the 32-byte nonce.
func (t *Trailer) HashInput() [HashInputSize]byte {
	var out [HashInputSize]byte
	buf := t.Encode()
	copy(out[:], buf[:HashInputSize])
	return out
}

type errTrailerSize int

func (e errTrailerSize) Error() string {
	return "trailer: wire buffer must be exactly 160 bytes, got " + itoa(int(e))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
