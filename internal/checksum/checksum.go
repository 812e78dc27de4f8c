package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first 16 hex characters of the SHA-256 digest of data.
// Used for deterministic derived-entity ids: the same input always maps to
// the same id.
func Short(data []byte) string {
	return Sum(data)[:16]
}
