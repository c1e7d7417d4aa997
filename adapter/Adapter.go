// Package adapter binds decision process models so that they can be
// advanced uniformly, whether they are fully or partially observable
// and whether or not they emit an info value.
//
// A model is inspected exactly once, when it is bound. The generative
// routine matching the model's variant is selected then and stored on
// the Adapter, so advancing the model is a single indirect call which
// never branches on the model's capabilities.
package adapter

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rlinterface/model"
	"github.com/samuelfneumann/rlinterface/space"
	"github.com/samuelfneumann/rlinterface/vector"
)

var (
	// ErrNilModel is returned when binding a nil model
	ErrNilModel = errors.New("model is nil")

	// ErrNoGenerator is returned when binding a model which implements
	// none of the generative interfaces for its variant
	ErrNoGenerator = errors.New("model has no generative function")

	// ErrNoActionSpace is returned when binding a model with a nil
	// action space
	ErrNoActionSpace = errors.New("model has no action space")
)

// Variant determines whether a model is fully or partially observable
type Variant string

const (
	Observable          Variant = "MDP"
	PartiallyObservable Variant = "POMDP"
)

// Outcome is the result of advancing a model by one transition. The
// Observation is the next state (fully observable models) or the next
// observation (partially observable models) converted to a vector.
// Info is nil whenever the model has no info channel.
type Outcome[S any] struct {
	State       S
	Observation *mat.VecDense
	Reward      float64
	Info        any
}

// Adapter is a bound model
type Adapter[S, A any] struct {
	variant  Variant
	hasInfo  bool
	terminal func(S) bool
	actions  space.Space[A]
	dims     func(*mat.VecDense) []int

	initial func(*rand.Rand) (S, *mat.VecDense, error)
	advance func(S, A, *rand.Rand) (Outcome[S], error)
}

// BindMDP binds a fully observable model. States are converted to
// vectors using kind. The model must implement model.MDP or
// model.InfoMDP, with model.InfoMDP taking precedence.
func BindMDP[S, A any](m model.Base[S, A], kind vector.Kind[S]) (
	*Adapter[S, A], error) {
	if m == nil {
		return nil, fmt.Errorf("bindMDP: %w", ErrNilModel)
	}
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("bindMDP: invalid observation kind: %w", err)
	}

	a := &Adapter[S, A]{
		variant:  Observable,
		terminal: m.IsTerminal,
		actions:  m.Actions(),
		dims:     func(v *mat.VecDense) []int { return kind.Dims(v) },
	}
	if a.actions == nil {
		return nil, fmt.Errorf("bindMDP: %w", ErrNoActionSpace)
	}

	a.initial = func(rng *rand.Rand) (S, *mat.VecDense, error) {
		s, err := m.InitialState(rng)
		if err != nil {
			return s, nil, err
		}
		obs, err := kind.Convert(s)
		return s, obs, err
	}

	switch gen := m.(type) {
	case model.InfoMDP[S, A]:
		a.hasInfo = true
		a.advance = func(s S, act A, rng *rand.Rand) (Outcome[S], error) {
			next, r, info, err := gen.GenerateInfo(s, act, rng)
			if err != nil {
				return Outcome[S]{}, err
			}
			obs, err := kind.Convert(next)
			if err != nil {
				return Outcome[S]{}, err
			}
			return Outcome[S]{next, obs, r, info}, nil
		}

	case model.MDP[S, A]:
		a.advance = func(s S, act A, rng *rand.Rand) (Outcome[S], error) {
			next, r, err := gen.Generate(s, act, rng)
			if err != nil {
				return Outcome[S]{}, err
			}
			obs, err := kind.Convert(next)
			if err != nil {
				return Outcome[S]{}, err
			}
			return Outcome[S]{State: next, Observation: obs, Reward: r}, nil
		}

	default:
		return nil, fmt.Errorf("bindMDP: %w: %T implements neither "+
			"Generate nor GenerateInfo", ErrNoGenerator, m)
	}

	return a, nil
}

// BindPOMDP binds a partially observable model. Observations are
// converted to vectors using kind. The model must implement
// model.POMDP or model.InfoPOMDP, with model.InfoPOMDP taking
// precedence.
func BindPOMDP[S, A, O any](m model.POMDPBase[S, A, O],
	kind vector.Kind[O]) (*Adapter[S, A], error) {
	if m == nil {
		return nil, fmt.Errorf("bindPOMDP: %w", ErrNilModel)
	}
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("bindPOMDP: invalid observation kind: %w", err)
	}

	a := &Adapter[S, A]{
		variant:  PartiallyObservable,
		terminal: m.IsTerminal,
		actions:  m.Actions(),
		dims:     func(v *mat.VecDense) []int { return kind.Dims(v) },
	}
	if a.actions == nil {
		return nil, fmt.Errorf("bindPOMDP: %w", ErrNoActionSpace)
	}

	a.initial = func(rng *rand.Rand) (S, *mat.VecDense, error) {
		s, err := m.InitialState(rng)
		if err != nil {
			return s, nil, err
		}
		o, err := m.InitialObservation(s, rng)
		if err != nil {
			return s, nil, err
		}
		obs, err := kind.Convert(o)
		return s, obs, err
	}

	switch gen := m.(type) {
	case model.InfoPOMDP[S, A, O]:
		a.hasInfo = true
		a.advance = func(s S, act A, rng *rand.Rand) (Outcome[S], error) {
			next, o, r, info, err := gen.GenerateInfo(s, act, rng)
			if err != nil {
				return Outcome[S]{}, err
			}
			obs, err := kind.Convert(o)
			if err != nil {
				return Outcome[S]{}, err
			}
			return Outcome[S]{next, obs, r, info}, nil
		}

	case model.POMDP[S, A, O]:
		a.advance = func(s S, act A, rng *rand.Rand) (Outcome[S], error) {
			next, o, r, err := gen.Generate(s, act, rng)
			if err != nil {
				return Outcome[S]{}, err
			}
			obs, err := kind.Convert(o)
			if err != nil {
				return Outcome[S]{}, err
			}
			return Outcome[S]{State: next, Observation: obs, Reward: r}, nil
		}

	default:
		return nil, fmt.Errorf("bindPOMDP: %w: %T implements neither "+
			"Generate nor GenerateInfo", ErrNoGenerator, m)
	}

	return a, nil
}

// Initial samples an initial state and returns it along with its
// vector observation
func (a *Adapter[S, A]) Initial(rng *rand.Rand) (S, *mat.VecDense, error) {
	return a.initial(rng)
}

// Advance advances the bound model from state s with action act. Errors
// returned by the model are returned unchanged.
func (a *Adapter[S, A]) Advance(s S, act A, rng *rand.Rand) (Outcome[S],
	error) {
	return a.advance(s, act, rng)
}

// Terminal returns whether s is a terminal state of the bound model
func (a *Adapter[S, A]) Terminal(s S) bool {
	return a.terminal(s)
}

// Actions returns the action space of the bound model
func (a *Adapter[S, A]) Actions() space.Space[A] {
	return a.actions
}

// Dims returns the shape of a vector observation v produced by the
// Adapter
func (a *Adapter[S, A]) Dims(v *mat.VecDense) []int {
	return a.dims(v)
}

// Variant returns whether the bound model is fully or partially
// observable
func (a *Adapter[S, A]) Variant() Variant {
	return a.variant
}

// HasInfo returns whether the bound model has an info channel
func (a *Adapter[S, A]) HasInfo() bool {
	return a.hasInfo
}
