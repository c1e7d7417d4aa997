// Package tiger implements an episodic version of the Tiger problem, a
// partially observable decision process model.
//
// A tiger hides behind one of two doors. The agent may listen, which
// costs a little and yields a noisy observation of the tiger's side,
// or open a door. Opening the tiger's door is heavily penalized, while
// opening the other door is rewarded. Either way, opening a door ends
// the episode.
package tiger

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/rlinterface/space"
	"github.com/samuelfneumann/rlinterface/vector"
)

// Side is a side of the room
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

func (s Side) other() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Actions
const (
	Listen    string = "listen"
	OpenLeft  string = "open-left"
	OpenRight string = "open-right"
)

// Observation is what the agent hears. Nothing is heard before the
// first listen or after a door is opened.
type Observation string

const (
	Nothing   Observation = "nothing"
	HearLeft  Observation = "hear-left"
	HearRight Observation = "hear-right"
)

const (
	ListenReward  float64 = -1.0
	EscapeReward  float64 = 10.0
	EatenReward   float64 = -100.0
	ListenCorrect float64 = 0.85
)

// ErrInvalidAction is returned when generating a transition with an
// action outside the action space
var ErrInvalidAction = errors.New("invalid action")

// State is the side the tiger is on and whether a door has been opened
type State struct {
	Tiger  Side
	Opened bool
}

// Info is the auxiliary value emitted on each transition. It reveals
// the tiger's true side, which is useful for debugging but must not be
// used for control.
type Info struct {
	Tiger Side `json:"tiger"`
}

// Tiger implements the Tiger problem
type Tiger struct {
	accuracy float64
	actions  *space.DiscreteSpace[string]
}

// New returns a new Tiger problem where listening reports the tiger's
// true side with probability accuracy
func New(accuracy float64) (*Tiger, error) {
	if accuracy < 0 || accuracy > 1 {
		return nil, fmt.Errorf("new: listening accuracy %v ∉ [0, 1]",
			accuracy)
	}

	actions, err := space.NewDiscrete(Listen, OpenLeft, OpenRight)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Tiger{accuracy, actions}, nil
}

// Default returns a new Tiger problem with the standard listening
// accuracy
func Default() *Tiger {
	t, err := New(ListenCorrect)
	if err != nil {
		panic(fmt.Sprintf("default: %v", err))
	}
	return t
}

// InitialState places the tiger behind a door chosen uniformly
func (t *Tiger) InitialState(rng *rand.Rand) (State, error) {
	if (distuv.Bernoulli{P: 0.5, Src: rng}).Rand() == 1 {
		return State{Tiger: Left}, nil
	}
	return State{Tiger: Right}, nil
}

// InitialObservation returns the observation of a starting state,
// which is always Nothing
func (t *Tiger) InitialObservation(State, *rand.Rand) (Observation, error) {
	return Nothing, nil
}

// IsTerminal returns whether a door has been opened
func (t *Tiger) IsTerminal(s State) bool {
	return s.Opened
}

// Actions returns the action space
func (t *Tiger) Actions() space.Space[string] {
	return t.actions
}

// GenerateInfo generates the next state, observation, and reward of
// taking action a in state s. The info value is an Info.
func (t *Tiger) GenerateInfo(s State, a string, rng *rand.Rand) (State,
	Observation, float64, any, error) {
	if !t.actions.Contains(a) {
		return State{}, "", 0, nil, fmt.Errorf("generateInfo: %w %q",
			ErrInvalidAction, a)
	}
	info := Info{Tiger: s.Tiger}

	switch a {
	case Listen:
		heard := s.Tiger
		if (distuv.Bernoulli{P: t.accuracy, Src: rng}).Rand() == 0 {
			heard = heard.other()
		}
		obs := HearLeft
		if heard == Right {
			obs = HearRight
		}
		return s, obs, ListenReward, info, nil

	case OpenLeft, OpenRight:
		next := State{Tiger: s.Tiger, Opened: true}
		opened := Left
		if a == OpenRight {
			opened = Right
		}
		if opened == s.Tiger {
			return next, Nothing, EatenReward, info, nil
		}
		return next, Nothing, EscapeReward, info, nil
	}

	// Unreachable, the action space contains only the above actions
	return State{}, "", 0, nil, fmt.Errorf("generateInfo: %w %q",
		ErrInvalidAction, a)
}

// Kind returns a vector kind which encodes observations as one-hot
// vectors (nothing, hear-left, hear-right)
func Kind(dtype vector.DType) vector.Kind[Observation] {
	return vector.New(dtype, vector.OneHot(3, func(o Observation) int {
		switch o {
		case Nothing:
			return 0
		case HearLeft:
			return 1
		case HearRight:
			return 2
		}
		return -1
	}))
}

func (t *Tiger) String() string {
	return fmt.Sprintf("Tiger  |  Listening Accuracy: %v", t.accuracy)
}
