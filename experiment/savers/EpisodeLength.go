package savers

import (
	"fmt"

	"github.com/samuelfneumann/rlinterface/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment
type EpisodeLength struct {
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength saver which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
	}
}

// Lengths returns a copy of the episode lengths recorded so far
func (e *EpisodeLength) Lengths() []int {
	return append([]int(nil), e.episodeLengths...)
}

// Save saves the episode lengths to disk
func (e *EpisodeLength) Save() error {
	if err := save(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: could not save episode lengths: %w", err)
	}
	return nil
}

// LoadLengths loads and returns the data saved by an EpisodeLength
// Saver
func LoadLengths(filename string) ([]int, error) {
	var data []int
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadLengths: %w", err)
	}
	return data, nil
}
