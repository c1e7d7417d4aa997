// Package experiment implements functionality for running experiments,
// rollouts of a random policy in an environment whose TimeSteps are
// tracked by Savers
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/rlinterface/environment/envconfig"
	"github.com/samuelfneumann/rlinterface/experiment/savers"
	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// Environment is the stepping interface an experiment drives. Both
// environment.Untyped and client.Client implement it, so experiments
// run identically in-process and against a remote server.
type Environment interface {
	Reset() (ts.TimeStep, error)
	Step(action any) (ts.TimeStep, bool, error)
	SampleAction() (any, error)
}

// Experiment outlines structs that can run experiments. Experiments
// send each TimeStep to Savers, which cache the data they track until
// Save is called. Run runs episodes until the step limit is reached or
// the context is cancelled. RunEpisode runs a single episode.
type Experiment interface {
	Run(ctx context.Context) error

	// RunEpisode returns whether the step limit has been reached
	RunEpisode(ctx context.Context) (bool, error)

	// Save saves all tracked data to disk
	Save() error

	// Register adds a new Saver to the (possibly already running)
	// experiment
	Register(s savers.Saver)
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type     Type             `json:"type"`
	MaxSteps int              `json:"max_steps"`
	EnvConf  envconfig.Config `json:"environment"`
}

// CreateExp creates the experiment described by the Config
func (c Config) CreateExp(logger *slog.Logger, s ...savers.Saver) (Experiment,
	error) {
	env, err := c.EnvConf.Create()
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %w",
			err)
	}

	switch c.Type {
	case OnlineExp, "":
		exp, err := NewOnline(env, c.MaxSteps, logger, s...)
		if err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
		return exp, nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
