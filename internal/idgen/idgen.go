// Package idgen provides the identifier sources injected into the schema
// engine for field and select option ids.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/gridfields/pkg/types"
)

var (
	_ types.IDGenerator = UUID{}
	_ types.IDGenerator = (*Sequence)(nil)
)

// UUID generates UUID v7 identifiers.
type UUID struct{}

// NewID returns a new UUID v7, falling back to v4 if v7 generation fails.
func (UUID) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Sequence generates monotonically increasing ids with a fixed prefix.
// Unique within the lifetime of one Sequence; safe for concurrent use.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence returns a Sequence producing prefix-1, prefix-2, ...
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}
