// Package savers implements Savers, which track the TimeSteps of an
// experiment and save a statistic of them to disk with encoding/gob
package savers

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"

	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// Saver keeps track of experiment data and saves the data after the
// experiment has finished
type Saver interface {
	Track(t ts.TimeStep)
	Save() error
}

// Return tracks and saves the episodic return in an experiment.
//
// An episode must finish for this Saver to record its return. If the
// last episode in an experiment does not finish, its return is not
// saved.
type Return struct {
	lastTimeStep   int
	rewards        []float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Saver which saves its
// data to filename
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track tracks the reward seen on a timestep. A First TimeStep always
// begins a new episode, discarding the rewards of any unfinished one.
// Non-sequential TimeSteps within an episode are ignored.
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.rewards = r.rewards[:0]
		r.lastTimeStep = step.Number
		return
	}
	if r.lastTimeStep < 0 || r.lastTimeStep+1 != step.Number {
		return
	}

	r.rewards = append(r.rewards, step.Reward)
	r.lastTimeStep = step.Number

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, floats.Sum(r.rewards))
		r.rewards = r.rewards[:0]
		r.lastTimeStep = -1
	}
}

// Returns returns a copy of the episodic returns recorded so far
func (r *Return) Returns() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the episodic returns to disk
func (r *Return) Save() error {
	if err := save(r.filename, r.episodeReturns); err != nil {
		return fmt.Errorf("save: could not save returns: %w", err)
	}
	return nil
}

// LoadData loads and returns the data saved by a Return Saver
func LoadData(filename string) ([]float64, error) {
	var data []float64
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadData: %w", err)
	}
	return data, nil
}

// save gob-encodes data to filename
func save(filename string, data any) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %w", err)
	}
	return file.Close()
}

// load gob-decodes the data in filename into data
func load(filename string, data any) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open data file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("could not decode data: %w", err)
	}
	return nil
}
