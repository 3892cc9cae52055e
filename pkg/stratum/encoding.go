package stratum

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// decodeHash32 decodes a 64-character hex string into a 32-byte array.
func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// parseNumeric accepts a 0x-prefixed hex string, a plain decimal
// string, or bare hex with no prefix at all (e.g. the wire's "1c"
// meaning 28) — pools are inconsistent about marking the base, so a
// string that isn't valid decimal is retried as hex before failing.
func parseNumeric(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	return strconv.ParseUint(s, 16, 64)
}

// encodeHex lowercases a byte slice to a hex string, used for the
// nonce/hash fields in mining.submit.
func encodeHex(b []byte) string {
	return hex.EncodeToString(b)
}
