package tome

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies a document's exact byte image.
type Fingerprint [blake2b.Size256]byte

// Sum returns the BLAKE2b-256 fingerprint of data.
func Sum(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}

// String returns the hex-encoded fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether f was never set.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}
