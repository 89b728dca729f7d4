package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// ResultFingerprint identifies one attribution computation's output.
// Identical inputs must produce identical fingerprints.
type ResultFingerprint Hash

func (f ResultFingerprint) String() string { return Hash(f).String() }
