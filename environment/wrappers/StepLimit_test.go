package wrappers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/rlinterface/environment"
	"github.com/samuelfneumann/rlinterface/model/gridworld"
	"github.com/samuelfneumann/rlinterface/model/mountaincar"
	"github.com/samuelfneumann/rlinterface/vector"
)

func TestStepLimit(t *testing.T) {
	g, err := gridworld.New(1, 5, []gridworld.Cell{{X: 0, Y: 0}},
		[]gridworld.Cell{{X: 2, Y: 0}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	env, err := environment.NewMDP[gridworld.Cell, int](g,
		g.OneHot(vector.Float64), 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStepLimit[int](env, 3)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		step, last, err := s.Step(gridworld.Left)
		if err != nil {
			t.Fatal(err)
		}
		if last != (i == 3) || step.Last() != last {
			t.Errorf("step %v: expected last == %v, got %v", i, i == 3, last)
		}
	}

	// The limit restarts with each episode, and terminal states still
	// end episodes early
	if _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	var steps []bool
	for i := 0; i < 4; i++ {
		_, last, err := s.Step(gridworld.Right)
		if err != nil {
			t.Fatal(err)
		}
		steps = append(steps, last)
		if last {
			break
		}
	}
	if diff := cmp.Diff([]bool{false, true}, steps); diff != "" {
		t.Errorf("step: (-want +got)\n%v", diff)
	}

	if _, err := NewStepLimit[int](env, 0); err == nil {
		t.Error("newStepLimit: expected error for non-positive limit")
	}
}

func TestTileCoding(t *testing.T) {
	m, err := mountaincar.NewDiscrete(mountaincar.DefaultStart())
	if err != nil {
		t.Fatal(err)
	}
	env, err := environment.NewMDP[mountaincar.State, int](m,
		mountaincar.Kind(vector.Float64), 0)
	if err != nil {
		t.Fatal(err)
	}

	tc, err := NewTileCoding[int](env, mountaincar.ObservationBounds(),
		[][]int{{4, 4}, {4, 4}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	shape, err := tc.ObservationShape()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{33}, shape); diff != "" {
		t.Errorf("observationShape: (-want +got)\n%v", diff)
	}

	step, err := tc.Reset()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		data := step.Observation.RawVector().Data
		if len(data) != 33 || floats.Sum(data) != 3 {
			t.Fatalf("step %v: expected 3 active units of 33, got %v", i,
				data)
		}
		if step, _, err = tc.Step(mountaincar.Forward); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := NewTileCoding[int](env, mountaincar.ObservationBounds()[:1],
		[][]int{{4}}, 0); err == nil {
		t.Error("newTileCoding: expected error for mismatched bounds")
	}
}
