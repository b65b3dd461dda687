package tree

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh identifier on every call.
// A nil IDGenerator is treated as [NewID] by every function that accepts one.
type IDGenerator func() string

// NewID returns a random (version 4) UUID rendered as 32 lowercase hex
// characters without dashes.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
// The generator is not safe for concurrent use.
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func (g IDGenerator) next() string {
	if g == nil {
		return NewID()
	}
	return g()
}
