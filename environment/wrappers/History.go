// Package wrappers provides wrappers for environments
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rlinterface/environment"
	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// History wraps an environment and replaces each observation with the
// concatenation of the last K observations, oldest first. This turns
// a K-th order Markov process into a first order one from the point of
// view of an agent.
//
// On Reset, the history is filled with K copies of the initial
// observation. The observation shape of a History is [K, inner...]
// where inner is the observation shape of the wrapped environment.
//
// History itself implements the environment.Environment interface, and
// is therefore itself an Environment.
type History[A any] struct {
	environment.Environment[A]
	k       int
	history []*mat.VecDense
	length  int
}

// NewHistory returns a new History environment wrapper over env which
// keeps the last k observations
func NewHistory[A any](env environment.Environment[A], k int) (*History[A],
	error) {
	if env == nil {
		return nil, fmt.Errorf("newHistory: environment is nil")
	}
	if k < 1 {
		return nil, fmt.Errorf("newHistory: history length must be "+
			"positive, got %v", k)
	}

	shape, err := env.ObservationShape()
	if err != nil {
		return nil, fmt.Errorf("newHistory: %w", err)
	}
	length := 1
	for _, d := range shape {
		length *= d
	}

	return &History[A]{
		Environment: env,
		k:           k,
		history:     make([]*mat.VecDense, 0, k),
		length:      length,
	}, nil
}

// Reset resets the wrapped environment and fills the history with the
// initial observation
func (h *History[A]) Reset() (ts.TimeStep, error) {
	step, err := h.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}

	h.history = h.history[:0]
	for i := 0; i < h.k; i++ {
		h.history = append(h.history, step.Observation)
	}

	step.Observation, err = h.stack()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	return step, nil
}

// Step takes one environmental step given action a and pushes the next
// observation onto the history
func (h *History[A]) Step(a A) (ts.TimeStep, bool, error) {
	if len(h.history) == 0 {
		return ts.TimeStep{}, false, fmt.Errorf("step: history is empty, " +
			"Reset must be called before Step")
	}

	step, last, err := h.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	// Drop the oldest observation
	copy(h.history, h.history[1:])
	h.history[h.k-1] = step.Observation

	step.Observation, err = h.stack()
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	return step, last, nil
}

// ObservationShape returns the shape of stacked observations
func (h *History[A]) ObservationShape() ([]int, error) {
	inner, err := h.Environment.ObservationShape()
	if err != nil {
		return nil, err
	}
	return append([]int{h.k}, inner...), nil
}

// K returns the number of observations kept in the history
func (h *History[A]) K() int {
	return h.k
}

// stack concatenates the history into a single vector
func (h *History[A]) stack() (*mat.VecDense, error) {
	data := make([]float64, 0, h.k*h.length)
	for _, obs := range h.history {
		if obs.Len() != h.length {
			return nil, fmt.Errorf("stack: observation of length %v does "+
				"not match observation shape of length %v", obs.Len(),
				h.length)
		}
		data = append(data, obs.RawVector().Data...)
	}
	return mat.NewVecDense(len(data), data), nil
}

// String returns the string representation of the environment
func (h *History[A]) String() string {
	return fmt.Sprintf("History(%v): %v", h.k, h.Environment)
}
