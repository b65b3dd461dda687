package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key builds a cache key of the form namespace:sha256(content).
func Key(namespace string, content []byte) string {
	return namespace + ":" + Hash(content)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
