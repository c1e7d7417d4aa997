// Package space implements action spaces which can be described,
// checked for membership, and sampled from using a caller-owned
// random number generator.
package space

import (
	"golang.org/x/exp/rand"
)

// Cardinality determines the cardinality of a space (discrete or
// continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Space is a space of actions of type A.
//
// Sample never creates its own source of randomness: all draws are
// taken from the generator passed in, so that sampling interleaves
// deterministically with any other consumer of that generator.
type Space[A any] interface {
	Sample(rng *rand.Rand) A
	Contains(a A) bool
	Describe() Description
}

// Description is the wire-level description of a Space. Enumerable
// spaces fill in N and Actions, continuous spaces fill in Low and
// High.
type Description struct {
	Cardinality Cardinality `json:"type"`
	Shape       []int       `json:"shape"`
	N           int         `json:"n,omitempty"`
	Actions     []any       `json:"actions,omitempty"`
	Low         []float64   `json:"low,omitempty"`
	High        []float64   `json:"high,omitempty"`
}
