package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/rlinterface/environment"
	ts "github.com/samuelfneumann/rlinterface/timestep"
	"github.com/samuelfneumann/rlinterface/utils/tilecoder"
)

// TileCoding wraps an environment and replaces each observation with
// its tile-coded representation. All tile-coded representations
// contain a bias unit as the first unit.
//
// TileCoding itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type TileCoding[A any] struct {
	environment.Environment[A]
	coder *tilecoder.TileCoder
}

// NewTileCoding creates and returns a new TileCoding environment
// wrapping env. The bounds parameter holds the interval of each
// observation dimension which is tiled.
//
// The bins parameter specifies both how many tilings to use as well
// as the number of tiles per tiling. The length of the outer-slice is
// the number of tilings. The lengths of the inner-slices are the
// number of bins per dimension for that tiling.
//
// See tilecoder.TileCoder for more details.
func NewTileCoding[A any](env environment.Environment[A],
	bounds []r1.Interval, bins [][]int, seed uint64) (*TileCoding[A],
	error) {
	if env == nil {
		return nil, fmt.Errorf("newTileCoding: environment is nil")
	}

	shape, err := env.ObservationShape()
	if err != nil {
		return nil, fmt.Errorf("newTileCoding: %w", err)
	}
	if len(shape) != 1 || shape[0] != len(bounds) {
		return nil, fmt.Errorf("newTileCoding: cannot tile code "+
			"observations of shape %v with %d bounds", shape, len(bounds))
	}

	coder, err := tilecoder.New(bounds, bins, seed, true)
	if err != nil {
		return nil, fmt.Errorf("newTileCoding: %w", err)
	}
	return &TileCoding[A]{env, coder}, nil
}

// Reset resets the environment and tile codes the first observation
func (t *TileCoding[A]) Reset() (ts.TimeStep, error) {
	step, err := t.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}

	step.Observation, err = t.coder.Encode(step.Observation)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	return step, nil
}

// Step takes one environmental step given action a and tile codes the
// next observation
func (t *TileCoding[A]) Step(a A) (ts.TimeStep, bool, error) {
	step, last, err := t.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	step.Observation, err = t.coder.Encode(step.Observation)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	return step, last, nil
}

// ObservationShape returns the shape of tile-coded observations
func (t *TileCoding[A]) ObservationShape() ([]int, error) {
	return []int{t.coder.VecLength()}, nil
}

// String returns the string representation of the environment
func (t *TileCoding[A]) String() string {
	return fmt.Sprintf("TileCoding(%v): %v", t.coder, t.Environment)
}
