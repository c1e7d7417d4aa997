package space

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/rlinterface/utils/floatutils"
)

// BoxSpace is a continuous space of real-valued action vectors, each
// dimension bounded by a closed interval. Actions are sampled
// uniformly over the box.
type BoxSpace struct {
	bounds []r1.Interval
}

// NewBox returns a new BoxSpace with the given bounds per dimension
func NewBox(bounds []r1.Interval) (*BoxSpace, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("newBox: %w", ErrEmpty)
	}
	for i, b := range bounds {
		if b.Min > b.Max {
			return nil, fmt.Errorf("newBox: dimension %v has min %v > max %v",
				i, b.Min, b.Max)
		}
	}

	return &BoxSpace{append([]r1.Interval(nil), bounds...)}, nil
}

// Sample draws an action uniformly from the box using rng
func (b *BoxSpace) Sample(rng *rand.Rand) []float64 {
	u := distmv.NewUniform(b.bounds, rng)
	return u.Rand(nil)
}

// Contains returns whether a lies within the box
func (b *BoxSpace) Contains(a []float64) bool {
	if len(a) != len(b.bounds) {
		return false
	}
	for i, v := range a {
		if !floatutils.Contains(v, b.bounds[i]) {
			return false
		}
	}
	return true
}

// Bounds returns a copy of the bounds of each dimension
func (b *BoxSpace) Bounds() []r1.Interval {
	return append([]r1.Interval(nil), b.bounds...)
}

// Describe returns the wire description of the space
func (b *BoxSpace) Describe() Description {
	low := make([]float64, len(b.bounds))
	high := make([]float64, len(b.bounds))
	for i, bound := range b.bounds {
		low[i], high[i] = bound.Min, bound.Max
	}

	return Description{
		Cardinality: Continuous,
		Shape:       []int{len(b.bounds)},
		Low:         low,
		High:        high,
	}
}
