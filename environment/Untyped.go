package environment

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/rlinterface/space"
	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// ErrActionType is returned when an Untyped environment is stepped
// with an action it cannot interpret
var ErrActionType = errors.New("action has the wrong type")

// Decode decodes an encoded action into v, which is a pointer to a
// value of the environment's action type
type Decode func(v any) error

// Untyped is an Environment whose action type has been erased, so that
// environments over different models can be handled uniformly.
//
// Step accepts either a value of the underlying action type or a
// Decode function which decodes into a fresh action.
type Untyped interface {
	Reset() (ts.TimeStep, error)
	Step(action any) (ts.TimeStep, bool, error)
	SampleAction() (any, error)
	ActionSpace() space.Description
	ObservationShape() ([]int, error)
}

// Erase returns an Untyped view of env
func Erase[A any](env Environment[A]) Untyped {
	return &untyped[A]{env}
}

type untyped[A any] struct {
	env Environment[A]
}

func (u *untyped[A]) Reset() (ts.TimeStep, error) {
	return u.env.Reset()
}

func (u *untyped[A]) Step(action any) (ts.TimeStep, bool, error) {
	var a A
	switch act := action.(type) {
	case A:
		a = act

	case Decode:
		if err := act(&a); err != nil {
			return ts.TimeStep{}, false, fmt.Errorf("step: could not "+
				"decode action: %w", err)
		}

	default:
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: want %T, got %T",
			ErrActionType, a, action)
	}

	return u.env.Step(a)
}

func (u *untyped[A]) SampleAction() (any, error) {
	return u.env.SampleAction(), nil
}

func (u *untyped[A]) ActionSpace() space.Description {
	return u.env.ActionSpace().Describe()
}

func (u *untyped[A]) ObservationShape() ([]int, error) {
	return u.env.ObservationShape()
}

func (u *untyped[A]) String() string {
	return fmt.Sprintf("Untyped: %v", u.env)
}
