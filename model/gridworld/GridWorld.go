// Package gridworld implements a 2D gridworld decision process model
package gridworld

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/rlinterface/space"
	"github.com/samuelfneumann/rlinterface/vector"
)

// Actions in the gridworld
const (
	Left int = iota
	Right
	Up
	Down
)

const (
	TimeStepReward float64 = -1.0
	GoalReward     float64 = 0.0
)

// ErrInvalidAction is returned when generating a transition with an
// action outside the gridworld's action space
var ErrInvalidAction = errors.New("invalid action")

// Cell is a cell of the gridworld and the gridworld's state. X indexes
// columns and Y indexes rows.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// GridWorld is a gridworld of r rows and c columns. Each episode starts
// in one of a set of starting cells, chosen uniformly, and ends upon
// entering a goal cell. Moving off the grid leaves the agent in place.
//
// If Slip is positive, then with probability Slip an action is
// replaced by an action drawn uniformly from the action space.
type GridWorld struct {
	r, c    int
	starts  []Cell
	goals   map[Cell]bool
	slip    float64
	actions *space.DiscreteSpace[int]
}

// New creates a new gridworld with r rows and c columns
func New(r, c int, starts, goals []Cell, slip float64) (*GridWorld, error) {
	if r <= 0 || c <= 0 {
		return nil, fmt.Errorf("new: dimensions must be positive, got "+
			"(%d, %d)", r, c)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("new: at least one starting cell is required")
	}
	if slip < 0 || slip > 1 {
		return nil, fmt.Errorf("new: slip probability %v ∉ [0, 1]", slip)
	}

	g := &GridWorld{r: r, c: c, slip: slip, goals: make(map[Cell]bool)}
	for _, s := range starts {
		if !g.contains(s) {
			return nil, fmt.Errorf("new: start %v outside %dx%d grid", s, r, c)
		}
	}
	for _, goal := range goals {
		if !g.contains(goal) {
			return nil, fmt.Errorf("new: goal %v outside %dx%d grid", goal, r,
				c)
		}
		g.goals[goal] = true
	}
	g.starts = append([]Cell(nil), starts...)

	actions, err := space.Range(4)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	g.actions = actions

	return g, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// InitialState samples a starting cell. A gridworld with a single
// starting cell does not consume any randomness.
func (g *GridWorld) InitialState(rng *rand.Rand) (Cell, error) {
	if len(g.starts) == 1 {
		return g.starts[0], nil
	}
	return g.starts[rng.Intn(len(g.starts))], nil
}

// IsTerminal returns whether s is a goal cell
func (g *GridWorld) IsTerminal(s Cell) bool {
	return g.goals[s]
}

// Actions returns the action space of the gridworld
func (g *GridWorld) Actions() space.Space[int] {
	return g.actions
}

// Generate moves the agent from cell s in direction a
func (g *GridWorld) Generate(s Cell, a int, rng *rand.Rand) (Cell, float64,
	error) {
	if !g.actions.Contains(a) {
		return Cell{}, 0, fmt.Errorf("generate: %w %v", ErrInvalidAction, a)
	}
	if !g.contains(s) {
		return Cell{}, 0, fmt.Errorf("generate: state %v outside grid", s)
	}

	if g.slip > 0 {
		slipped := distuv.Bernoulli{P: g.slip, Src: rng}
		if slipped.Rand() == 1 {
			a = g.actions.Sample(rng)
		}
	}

	next := s
	switch a {
	case Left:
		next.X--
	case Right:
		next.X++
	case Up:
		next.Y++
	case Down:
		next.Y--
	}
	if !g.contains(next) {
		next = s
	}

	if g.goals[next] {
		return next, GoalReward, nil
	}
	return next, TimeStepReward, nil
}

// OneHot returns a vector kind which encodes cells as one-hot vectors
// over the flattened grid
func (g *GridWorld) OneHot(dtype vector.DType) vector.Kind[Cell] {
	return vector.New(dtype, vector.OneHot(g.r*g.c, g.index))
}

// XY returns a vector kind which encodes cells as (x, y) == (col, row)
// coordinates
func (g *GridWorld) XY(dtype vector.DType) vector.Kind[Cell] {
	return vector.New(dtype, func(s Cell) ([]float64, error) {
		return []float64{float64(s.X), float64(s.Y)}, nil
	})
}

func (g *GridWorld) index(s Cell) int {
	if !g.contains(s) {
		return -1
	}
	return s.Y*g.c + s.X
}

func (g *GridWorld) contains(s Cell) bool {
	return s.X >= 0 && s.X < g.c && s.Y >= 0 && s.Y < g.r
}

func (g *GridWorld) String() string {
	str := "GridWorld | Starts: %v  |  Goals: %d  |  Bounds: (%d, %d)"
	return fmt.Sprintf(str, g.starts, len(g.goals), g.r, g.c)
}
