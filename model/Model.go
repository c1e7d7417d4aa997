// Package model outlines the decision process models which can be
// driven as environments. A model is never owned by an environment:
// it only defines the states, actions, observations and generative
// functions, while all randomness is supplied by the caller.
//
// A model must implement exactly one of the generative interfaces for
// its variant. Fully observable models implement MDP or InfoMDP, and
// partially observable models implement POMDP or InfoPOMDP. The Info
// variants return an auxiliary info value alongside each transition.
package model

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rlinterface/space"
)

// Base is the part of a model common to all variants
type Base[S, A any] interface {
	// InitialState samples a starting state
	InitialState(rng *rand.Rand) (S, error)

	// IsTerminal returns whether s is a terminal state
	IsTerminal(s S) bool

	// Actions returns the action space of the model
	Actions() space.Space[A]
}

// MDP is a fully observable model without an info channel
type MDP[S, A any] interface {
	Base[S, A]

	// Generate samples the next state and reward of taking action a
	// in state s
	Generate(s S, a A, rng *rand.Rand) (S, float64, error)
}

// InfoMDP is a fully observable model with an info channel
type InfoMDP[S, A any] interface {
	Base[S, A]
	GenerateInfo(s S, a A, rng *rand.Rand) (S, float64, any, error)
}

// POMDPBase is the part of a partially observable model common to both
// POMDP variants
type POMDPBase[S, A, O any] interface {
	Base[S, A]

	// InitialObservation samples the observation of the starting
	// state s
	InitialObservation(s S, rng *rand.Rand) (O, error)
}

// POMDP is a partially observable model without an info channel
type POMDP[S, A, O any] interface {
	POMDPBase[S, A, O]

	// Generate samples the next state, the observation of the next
	// state, and the reward of taking action a in state s
	Generate(s S, a A, rng *rand.Rand) (S, O, float64, error)
}

// InfoPOMDP is a partially observable model with an info channel
type InfoPOMDP[S, A, O any] interface {
	POMDPBase[S, A, O]
	GenerateInfo(s S, a A, rng *rand.Rand) (S, O, float64, any, error)
}
