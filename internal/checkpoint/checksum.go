package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// newChecksum returns the hash used for the data section.
func newChecksum() hash.Hash {
	return sha256.New()
}

// ComputeChecksum returns the hex SHA-256 of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidateChecksum compares a computed checksum against the stored one.
// Returns ErrChecksumMismatch if they differ.
func ValidateChecksum(computed, stored string) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
