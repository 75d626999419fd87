package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields sequential "<prefix>-<n>" identifiers so tests can name
// the rows they expect up front.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator constructs a generator for the given prefix; an empty prefix
// defaults to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc adapts the generator to the func() string the services accept.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetCounter resets the sequence so the next identifier is counter+1.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.counter.Store(counter)
}
