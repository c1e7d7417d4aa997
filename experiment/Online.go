package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/rlinterface/experiment/savers"
	ts "github.com/samuelfneumann/rlinterface/timestep"
	"github.com/samuelfneumann/rlinterface/utils/progressbar"
)

// Online is an Experiment that rolls out a uniform random policy,
// taking every action from the environment's SampleAction
type Online struct {
	env          Environment
	maxSteps     int
	currentSteps int
	episodes     int
	savers       []savers.Saver
	progress     *progressbar.ProgressBar
	logger       *slog.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment. The steps parameter determines how many timesteps the
// experiment is run for, and the s parameter is a slice of Savers
// which determine what data is saved. If logger is nil, slog.Default()
// is used.
func NewOnline(e Environment, steps int, logger *slog.Logger,
	s ...savers.Saver) (*Online, error) {
	if e == nil {
		return nil, fmt.Errorf("newOnline: environment is nil")
	}
	if steps < 1 {
		return nil, fmt.Errorf("newOnline: steps must be positive, got %v",
			steps)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Online{
		env:      e,
		maxSteps: steps,
		savers:   s,
		logger:   logger,
	}, nil
}

// Register registers a Saver with an Experiment so that data generated
// during the experiment can be tracked and saved
func (o *Online) Register(s savers.Saver) {
	o.savers = append(o.savers, s)
}

// SetProgressBar displays p as steps are taken. The bar is closed when
// Run returns.
func (o *Online) SetProgressBar(p *progressbar.ProgressBar) {
	o.progress = p
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.env.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		o.currentSteps++

		action, err := o.env.SampleAction()
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not sample action: %w",
				err)
		}
		step, _, err = o.env.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: %w", err)
		}
		o.track(step)

		if o.progress != nil {
			o.progress.Increment()
			o.progress.Display()
		}
	}

	if step.Last() {
		o.episodes++
		o.logger.Debug("episode finished", "episode", o.episodes,
			"length", step.Number)
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run(ctx context.Context) error {
	if o.progress != nil {
		defer o.progress.Close()
	}

	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(ctx); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	o.logger.Info("experiment finished", "steps", o.currentSteps,
		"episodes", o.episodes)
	return nil
}

// Save saves all the data cached by the Savers to disk
func (o *Online) Save() error {
	var errs []error
	for _, saver := range o.savers {
		errs = append(errs, saver.Save())
	}
	return errors.Join(errs...)
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() int {
	return o.currentSteps
}

// Episodes returns the number of episodes completed so far
func (o *Online) Episodes() int {
	return o.episodes
}

// track tracks the current timestep by caching its data in each saver
func (o *Online) track(t ts.TimeStep) {
	for _, saver := range o.savers {
		saver.Track(t)
	}
}
