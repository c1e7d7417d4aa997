// Package environment drives decision process models as reinforcement
// learning environments.
//
// An Env binds a model through an adapter.Adapter and owns the model's
// current state along with a single random number generator. Every
// operation needing randomness (Reset, Step, SampleAction) draws from
// that one generator, so two Envs constructed with the same model and
// seed produce identical trajectories for identical call sequences.
//
// Envs do not enforce episode boundaries. Stepping after a terminal
// TimeStep is delegated to the model; callers should Reset once they
// observe a Last TimeStep.
package environment

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rlinterface/adapter"
	"github.com/samuelfneumann/rlinterface/model"
	"github.com/samuelfneumann/rlinterface/space"
	ts "github.com/samuelfneumann/rlinterface/timestep"
	"github.com/samuelfneumann/rlinterface/vector"
)

// ErrNilAdapter is returned when constructing an Env without an adapter
var ErrNilAdapter = errors.New("adapter is nil")

// Environment is the stepping interface of an environment with actions
// of type A
type Environment[A any] interface {
	Reset() (ts.TimeStep, error)
	Step(action A) (ts.TimeStep, bool, error)
	SampleAction() A
	ActionSpace() space.Space[A]
	ObservationShape() ([]int, error)
}

// Phase is the lifecycle phase of an Env
type Phase int

const (
	// Uninitialized Envs have been constructed but never Reset
	Uninitialized Phase = iota

	// Ready Envs have been Reset at least once
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "Ready"
	}
	return "Uninitialized"
}

// Env is an Environment over a bound model with states of type S and
// actions of type A
type Env[S, A any] struct {
	adapter *adapter.Adapter[S, A]
	rng     *rand.Rand
	seed    uint64

	state       S
	phase       Phase
	currentStep ts.TimeStep
	shape       []int
}

// NewMDP binds a fully observable model and returns a new Env over it.
// States are converted to observation vectors using kind.
func NewMDP[S, A any](m model.Base[S, A], kind vector.Kind[S],
	seed uint64) (*Env[S, A], error) {
	a, err := adapter.BindMDP(m, kind)
	if err != nil {
		return nil, fmt.Errorf("newMDP: %w", err)
	}
	return New(a, seed)
}

// NewPOMDP binds a partially observable model and returns a new Env
// over it. Observations are converted to observation vectors using
// kind.
func NewPOMDP[S, A, O any](m model.POMDPBase[S, A, O], kind vector.Kind[O],
	seed uint64) (*Env[S, A], error) {
	a, err := adapter.BindPOMDP(m, kind)
	if err != nil {
		return nil, fmt.Errorf("newPOMDP: %w", err)
	}
	return New(a, seed)
}

// New returns a new Env over a bound model, with its random number
// generator seeded by seed. An initial state is sampled immediately so
// that the Env always holds a valid model state.
//
// The observation shape is computed here by probing the model with a
// scratch generator, so an observation which cannot be converted fails
// construction rather than the first Reset.
func New[S, A any](a *adapter.Adapter[S, A], seed uint64) (*Env[S, A],
	error) {
	if a == nil {
		return nil, fmt.Errorf("new: %w", ErrNilAdapter)
	}

	shape, err := probeShape(a, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not compute observation "+
			"shape: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	state, obs, err := a.Initial(rng)
	if err != nil {
		return nil, fmt.Errorf("new: could not sample initial state: %w",
			err)
	}

	return &Env[S, A]{
		adapter:     a,
		rng:         rng,
		seed:        seed,
		state:       state,
		phase:       Uninitialized,
		currentStep: ts.New(ts.First, 0, obs, nil, 0),
		shape:       shape,
	}, nil
}

// probeShape measures the observation shape on a disposable initial
// observation drawn with a generator private to the probe
func probeShape[S, A any](a *adapter.Adapter[S, A], seed uint64) ([]int,
	error) {
	scratch := rand.New(rand.NewSource(seed))
	_, obs, err := a.Initial(scratch)
	if err != nil {
		return nil, err
	}
	return a.Dims(obs), nil
}

// Reset samples a new initial state and returns the first TimeStep of
// a new episode
func (e *Env[S, A]) Reset() (ts.TimeStep, error) {
	state, obs, err := e.adapter.Initial(e.rng)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not sample initial "+
			"state: %w", err)
	}

	e.state = state
	e.phase = Ready
	e.currentStep = ts.New(ts.First, 0, obs, nil, 0)

	return e.currentStep, nil
}

// Step takes one environmental step given action a, returning the next
// TimeStep and whether the next state is terminal. If the model fails
// to generate a transition, the error is returned and the Env's state
// is left unchanged.
func (e *Env[S, A]) Step(a A) (ts.TimeStep, bool, error) {
	out, err := e.adapter.Advance(e.state, a, e.rng)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	terminal := e.adapter.Terminal(out.State)
	stepType := ts.Mid
	if terminal {
		stepType = ts.Last
	}

	e.state = out.State
	e.currentStep = ts.New(stepType, out.Reward, out.Observation, out.Info,
		e.currentStep.Number+1)

	return e.currentStep, terminal, nil
}

// SampleAction samples an action from the action space using the Env's
// own random number generator
func (e *Env[S, A]) SampleAction() A {
	return e.adapter.Actions().Sample(e.rng)
}

// ActionSpace returns the action space of the model
func (e *Env[S, A]) ActionSpace() space.Space[A] {
	return e.adapter.Actions()
}

// ObservationShape returns the shape of observations returned by the
// Env. Computing the shape does not touch the Env's state or random
// number generator.
func (e *Env[S, A]) ObservationShape() ([]int, error) {
	return append([]int(nil), e.shape...), nil
}

// State returns the current model state
func (e *Env[S, A]) State() S {
	return e.state
}

// CurrentTimeStep returns the most recent TimeStep
func (e *Env[S, A]) CurrentTimeStep() ts.TimeStep {
	return e.currentStep
}

// Phase returns the lifecycle phase of the Env
func (e *Env[S, A]) Phase() Phase {
	return e.phase
}

// Seed returns the seed the Env was constructed with
func (e *Env[S, A]) Seed() uint64 {
	return e.seed
}

// Variant returns whether the bound model is fully or partially
// observable
func (e *Env[S, A]) Variant() adapter.Variant {
	return e.adapter.Variant()
}

// HasInfo returns whether the bound model emits info values
func (e *Env[S, A]) HasInfo() bool {
	return e.adapter.HasInfo()
}

func (e *Env[S, A]) String() string {
	return fmt.Sprintf("%v Environment  |  Phase: %v  |  Step: %v",
		e.adapter.Variant(), e.phase, e.currentStep.Number)
}
