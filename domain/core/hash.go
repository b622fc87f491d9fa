package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	AnalysisFingerprint Hash
	BatchFingerprint    Hash
)

// Constructors
func NewAnalysisFingerprint(data []byte) AnalysisFingerprint {
	return AnalysisFingerprint(NewHash(data))
}
func NewBatchFingerprint(data []byte) BatchFingerprint { return BatchFingerprint(NewHash(data)) }

// String conversions
func (h AnalysisFingerprint) String() string { return Hash(h).String() }
func (h BatchFingerprint) String() string    { return Hash(h).String() }

// Empty checks
func (h AnalysisFingerprint) IsEmpty() bool { return Hash(h).IsEmpty() }
func (h BatchFingerprint) IsEmpty() bool    { return Hash(h).IsEmpty() }

// ComputeFingerprint hashes an ordered list of canonical string parts.
// Callers own the canonicalization; identical parts always produce an
// identical fingerprint.
func ComputeFingerprint(parts ...string) Hash {
	return NewHash([]byte(strings.Join(parts, "|")))
}
