package space

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrEmpty is returned when constructing a space with no elements
var ErrEmpty = errors.New("space has no elements")

// DiscreteSpace is a finite, enumerable set of actions. Actions are
// sampled from a categorical distribution over the set, which is
// uniform unless weights are given.
type DiscreteSpace[A comparable] struct {
	actions []A
	weights []float64
	index   map[A]int
}

// NewDiscrete returns a new DiscreteSpace over actions, sampled
// uniformly.
func NewDiscrete[A comparable](actions ...A) (*DiscreteSpace[A], error) {
	weights := make([]float64, len(actions))
	for i := range weights {
		weights[i] = 1.0 / float64(len(actions))
	}
	return NewWeighted(actions, weights)
}

// NewWeighted returns a new DiscreteSpace over actions where action i
// is sampled with probability proportional to weights[i].
func NewWeighted[A comparable](actions []A, weights []float64) (
	*DiscreteSpace[A], error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("newWeighted: %w", ErrEmpty)
	}
	if len(actions) != len(weights) {
		return nil, fmt.Errorf("newWeighted: number of weights %v must "+
			"match number of actions %v", len(weights), len(actions))
	}

	if floats.Sum(weights) <= 0 {
		return nil, fmt.Errorf("newWeighted: weights must have a positive sum")
	}

	index := make(map[A]int, len(actions))
	for i, a := range actions {
		if _, ok := index[a]; ok {
			return nil, fmt.Errorf("newWeighted: duplicate action %v", a)
		}
		if weights[i] < 0 {
			return nil, fmt.Errorf("newWeighted: negative weight %v for "+
				"action %v", weights[i], a)
		}
		index[a] = i
	}

	return &DiscreteSpace[A]{
		actions: append([]A(nil), actions...),
		weights: append([]float64(nil), weights...),
		index:   index,
	}, nil
}

// Range returns a uniform DiscreteSpace over the integers 0, 1, ..., n-1
func Range(n int) (*DiscreteSpace[int], error) {
	actions := make([]int, n)
	for i := range actions {
		actions[i] = i
	}
	return NewDiscrete(actions...)
}

// Sample draws an action using rng
func (d *DiscreteSpace[A]) Sample(rng *rand.Rand) A {
	c := distuv.NewCategorical(d.weights, rng)
	return d.actions[int(c.Rand())]
}

// Contains returns whether a is an element of the space
func (d *DiscreteSpace[A]) Contains(a A) bool {
	_, ok := d.index[a]
	return ok
}

// Len returns the number of actions in the space
func (d *DiscreteSpace[A]) Len() int {
	return len(d.actions)
}

// Actions returns a copy of the actions in the space
func (d *DiscreteSpace[A]) Actions() []A {
	return append([]A(nil), d.actions...)
}

// Describe returns the wire description of the space
func (d *DiscreteSpace[A]) Describe() Description {
	actions := make([]any, len(d.actions))
	for i := range d.actions {
		actions[i] = d.actions[i]
	}

	return Description{
		Cardinality: Discrete,
		Shape:       []int{1},
		N:           len(d.actions),
		Actions:     actions,
	}
}
