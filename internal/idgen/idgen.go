// Package idgen produces identifiers for personas, chat messages and sessions.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type Generator interface {
	Next() string
}

// UUID hands out random v4 UUIDs.
type UUID struct{}

func (UUID) Next() string {
	return uuid.NewString()
}

// Sequence hands out prefix1, prefix2, ... and is safe for concurrent use.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) Next() string {
	return s.prefix + strconv.FormatUint(s.n.Add(1), 10)
}
