// Package mountaincar implements the classic control Mountain Car
// decision process model with discrete or continuous actions
package mountaincar

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/rlinterface/space"
	"github.com/samuelfneumann/rlinterface/utils/floatutils"
	"github.com/samuelfneumann/rlinterface/vector"
)

const (
	MinPosition  float64 = -1.2
	MaxPosition  float64 = 0.6
	MaxSpeed     float64 = 0.07
	Power        float64 = 0.0015 // Engine power
	Gravity      float64 = 0.0025
	GoalPosition float64 = 0.5

	// Discrete Actions
	Backward int = 0
	Coast    int = 1
	Forward  int = 2

	// Continuous Actions
	MinContinuousAction float64 = -1.0
	MaxContinuousAction float64 = 1.0

	TimeStepReward float64 = -1.0
)

// ErrInvalidAction is returned when generating a transition with an
// action outside the action space
var ErrInvalidAction = errors.New("invalid action")

// State is the car's x position and velocity
type State struct {
	Position float64
	Velocity float64
}

// base implements the dynamics common to both the Discrete and
// Continuous action versions of Mountain Car. It does not implement a
// full model since it has no action space.
//
// An underpowered car starts in a valley and must rock back and forth
// to build enough momentum to reach the goal at the top of the right
// hill. Starting positions and velocities are drawn uniformly from the
// start bounds.
type base struct {
	positionBounds r1.Interval
	speedBounds    r1.Interval
	start          []r1.Interval
	goalPosition   float64
}

func newBase(position, velocity r1.Interval) (base, error) {
	positionBounds := r1.Interval{Min: MinPosition, Max: MaxPosition}
	speedBounds := r1.Interval{Min: -MaxSpeed, Max: MaxSpeed}

	if !floatutils.Contains(position.Min, positionBounds) ||
		!floatutils.Contains(position.Max, positionBounds) ||
		position.Min > position.Max {
		return base{}, fmt.Errorf("illegal start positions [%v, %v]",
			position.Min, position.Max)
	}
	if !floatutils.Contains(velocity.Min, speedBounds) ||
		!floatutils.Contains(velocity.Max, speedBounds) ||
		velocity.Min > velocity.Max {
		return base{}, fmt.Errorf("illegal start velocities [%v, %v]",
			velocity.Min, velocity.Max)
	}

	return base{
		positionBounds: positionBounds,
		speedBounds:    speedBounds,
		start:          []r1.Interval{position, velocity},
		goalPosition:   GoalPosition,
	}, nil
}

// InitialState samples a starting state
func (m *base) InitialState(rng *rand.Rand) (State, error) {
	start := distmv.NewUniform(m.start, rng).Rand(nil)
	return State{Position: start[0], Velocity: start[1]}, nil
}

// IsTerminal returns whether the car has reached the goal
func (m *base) IsTerminal(s State) bool {
	return s.Position >= m.goalPosition
}

// nextState calculates the next state given a force in [-1, 1]
func (m *base) nextState(s State, force float64) State {
	velocity := s.Velocity + force*Power - Gravity*math.Cos(3*s.Position)
	velocity = floatutils.ClipInterval(velocity, m.speedBounds)

	position := s.Position + velocity
	position = floatutils.ClipInterval(position, m.positionBounds)

	// Inelastic collision with the left wall
	if position <= m.positionBounds.Min && velocity < 0 {
		velocity = 0
	}

	return State{Position: position, Velocity: velocity}
}

// Discrete is Mountain Car with three discrete actions, applying a
// force of -1, 0, or +1 to the car
type Discrete struct {
	base
	actions *space.DiscreteSpace[int]
}

// NewDiscrete returns a new Discrete Mountain Car whose episodes start
// with position and velocity drawn uniformly from the argument
// intervals
func NewDiscrete(position, velocity r1.Interval) (*Discrete, error) {
	b, err := newBase(position, velocity)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}

	actions, err := space.NewDiscrete(Backward, Coast, Forward)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}

	return &Discrete{b, actions}, nil
}

// Actions returns the action space
func (m *Discrete) Actions() space.Space[int] {
	return m.actions
}

// Generate calculates the next state given action a. Mountain Car has
// deterministic dynamics, so rng is unused.
func (m *Discrete) Generate(s State, a int, _ *rand.Rand) (State, float64,
	error) {
	if !m.actions.Contains(a) {
		return State{}, 0, fmt.Errorf("generate: %w %v", ErrInvalidAction, a)
	}
	return m.nextState(s, float64(a-1)), TimeStepReward, nil
}

func (m *Discrete) String() string {
	return fmt.Sprintf("Discrete Mountain Car  |  Goal: %v  |  Start: %v",
		m.goalPosition, m.start)
}

// Continuous is Mountain Car with a single continuous action, the
// force applied to the car in [-1, 1]
type Continuous struct {
	base
	actions *space.BoxSpace
}

// NewContinuous returns a new Continuous Mountain Car whose episodes
// start with position and velocity drawn uniformly from the argument
// intervals
func NewContinuous(position, velocity r1.Interval) (*Continuous, error) {
	b, err := newBase(position, velocity)
	if err != nil {
		return nil, fmt.Errorf("newContinuous: %w", err)
	}

	actions, err := space.NewBox([]r1.Interval{
		{Min: MinContinuousAction, Max: MaxContinuousAction},
	})
	if err != nil {
		return nil, fmt.Errorf("newContinuous: %w", err)
	}

	return &Continuous{b, actions}, nil
}

// Actions returns the action space
func (m *Continuous) Actions() space.Space[[]float64] {
	return m.actions
}

// Generate calculates the next state given the force in a
func (m *Continuous) Generate(s State, a []float64, _ *rand.Rand) (State,
	float64, error) {
	if !m.actions.Contains(a) {
		return State{}, 0, fmt.Errorf("generate: %w %v", ErrInvalidAction, a)
	}
	return m.nextState(s, a[0]), TimeStepReward, nil
}

func (m *Continuous) String() string {
	return fmt.Sprintf("Continuous Mountain Car  |  Goal: %v  |  Start: %v",
		m.goalPosition, m.start)
}

// DefaultStart returns the default start distribution: position
// uniform in [-0.6, -0.4] and zero velocity
func DefaultStart() (position, velocity r1.Interval) {
	return r1.Interval{Min: -0.6, Max: -0.4}, r1.Interval{}
}

// Kind returns a vector kind which encodes states as (position,
// velocity) vectors
func Kind(dtype vector.DType) vector.Kind[State] {
	return vector.New(dtype, func(s State) ([]float64, error) {
		return []float64{s.Position, s.Velocity}, nil
	})
}

// ObservationBounds returns the bounds of each dimension of vectors
// produced by Kind
func ObservationBounds() []r1.Interval {
	return []r1.Interval{
		{Min: MinPosition, Max: MaxPosition},
		{Min: -MaxSpeed, Max: MaxSpeed},
	}
}
