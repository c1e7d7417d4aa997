package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/rlinterface/environment"
	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// StepLimit wraps an environment and ends episodes at a specific
// timestep limit. The TimeStep at the limit is made Last and reported
// as the end of the episode, even if the wrapped environment has not
// reached a terminal state.
//
// Like the environments it wraps, StepLimit does not refuse steps past
// the end of an episode.
type StepLimit[A any] struct {
	environment.Environment[A]
	episodeSteps int
}

// NewStepLimit returns a new StepLimit environment wrapper over env
// which ends episodes after episodeSteps steps
func NewStepLimit[A any](env environment.Environment[A],
	episodeSteps int) (*StepLimit[A], error) {
	if env == nil {
		return nil, fmt.Errorf("newStepLimit: environment is nil")
	}
	if episodeSteps < 1 {
		return nil, fmt.Errorf("newStepLimit: step limit must be positive, "+
			"got %v", episodeSteps)
	}
	return &StepLimit[A]{env, episodeSteps}, nil
}

// Step takes one environmental step given action a, ending the episode
// if the step limit is reached
func (s *StepLimit[A]) Step(a A) (ts.TimeStep, bool, error) {
	step, last, err := s.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	if step.Number >= s.episodeSteps {
		step.StepType = ts.Last
		last = true
	}
	return step, last, nil
}

// Limit returns the maximum number of steps in an episode
func (s *StepLimit[A]) Limit() int {
	return s.episodeSteps
}

// String returns the string representation of the environment
func (s *StepLimit[A]) String() string {
	return fmt.Sprintf("StepLimit(%v): %v", s.episodeSteps, s.Environment)
}
