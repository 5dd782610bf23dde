// Package sha256 provides SHA-256 hashing utilities.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// shortLen is the fingerprint length used for feed item IDs. 16 hex chars
// (64 bits) is plenty at a few hundred disclosures per day.
const shortLen = 16

// Hasher implements feed.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a full hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Short returns a truncated digest suitable for item fingerprints.
func (h *Hasher) Short(data []byte) (string, error) {
	full, err := h.Hash(data)
	if err != nil {
		return "", err
	}
	return full[:shortLen], nil
}
