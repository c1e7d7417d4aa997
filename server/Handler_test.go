package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rlinterface/environment"
	"github.com/samuelfneumann/rlinterface/model/gridworld"
	"github.com/samuelfneumann/rlinterface/model/tiger"
	"github.com/samuelfneumann/rlinterface/protocol"
	"github.com/samuelfneumann/rlinterface/space"
	ts "github.com/samuelfneumann/rlinterface/timestep"
	"github.com/samuelfneumann/rlinterface/vector"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGridHandler(t *testing.T) *Handler {
	t.Helper()
	g, err := gridworld.New(2, 3, []gridworld.Cell{{X: 0, Y: 0}},
		[]gridworld.Cell{{X: 2, Y: 1}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	env, err := environment.NewMDP[gridworld.Cell, int](g,
		g.OneHot(vector.Float64), 0)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHandler(environment.Erase[int](env), discard())
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// handle sends msg to h and decodes the result of an ok reply into
// result
func handle(t *testing.T, h *Handler, msg string, result any) protocol.Reply {
	t.Helper()
	rep := h.Handle([]byte(msg))
	if rep.Status == protocol.StatusOK && result != nil {
		if err := json.Unmarshal(rep.Result, result); err != nil {
			t.Fatalf("handle %s: could not decode result: %v", msg, err)
		}
	}
	return rep
}

func TestHandleReset(t *testing.T) {
	h := newGridHandler(t)

	var obs []float64
	rep := handle(t, h, `{"command": "reset"}`, &obs)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("reset: unexpected error reply %v", rep.Error)
	}
	if diff := cmp.Diff([]float64{1, 0, 0, 0, 0, 0}, obs); diff != "" {
		t.Errorf("reset: (-want +got)\n%v", diff)
	}

	var shape []int
	handle(t, h, `{"command": "obs_dimensions"}`, &shape)
	if len(obs) != shape[0] {
		t.Errorf("obs_dimensions: shape %v does not match observation "+
			"length %v", shape, len(obs))
	}
}

func TestHandleStep(t *testing.T) {
	h := newGridHandler(t)
	handle(t, h, `{"command": "reset"}`, nil)

	var result protocol.StepResult
	rep := handle(t, h, `{"command": "step", "payload": 1}`, &result)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("step: unexpected error reply %v", rep.Error)
	}
	want := protocol.StepResult{
		Observation: []float64{0, 1, 0, 0, 0, 0},
		Reward:      gridworld.TimeStepReward,
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("step: (-want +got)\n%v", diff)
	}

	handle(t, h, `{"command": "step", "payload": 1}`, &result)
	handle(t, h, `{"command": "step", "payload": 2}`, &result)
	if !result.Terminal || result.Reward != gridworld.GoalReward {
		t.Errorf("step: expected to reach the goal, got %+v", result)
	}
}

func TestHandleActions(t *testing.T) {
	h := newGridHandler(t)

	var desc space.Description
	rep := handle(t, h, `{"command": "actions"}`, &desc)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("actions: unexpected error reply %v", rep.Error)
	}
	want := space.Description{
		Cardinality: space.Discrete,
		Shape:       []int{1},
		N:           4,
		Actions:     []any{0.0, 1.0, 2.0, 3.0},
	}
	if diff := cmp.Diff(want, desc); diff != "" {
		t.Errorf("actions: (-want +got)\n%v", diff)
	}

	var action int
	rep = handle(t, h, `{"command": "sample_action"}`, &action)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("sample_action: unexpected error reply %v", rep.Error)
	}
	if action < 0 || action >= 4 {
		t.Errorf("sample_action: action %v outside action space", action)
	}
}

func TestHandleRejects(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"unknown command", `{"command": "bogus"}`},
		{"not json", `bogus`},
		{"missing payload", `{"command": "step"}`},
		{"invalid action", `{"command": "step", "payload": 9}`},
		{"wrong action type", `{"command": "step", "payload": "left"}`},
	}

	h := newGridHandler(t)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rep := handle(t, h, test.msg, nil)
			if rep.Status != protocol.StatusError {
				t.Fatalf("expected error reply, got %v", rep.Status)
			}
			if rep.Error == "" {
				t.Error("expected error message")
			}

			// The handler keeps serving after an error
			var obs []float64
			rep = handle(t, h, `{"command": "reset"}`, &obs)
			if rep.Status != protocol.StatusOK {
				t.Errorf("reset: unexpected error reply %v", rep.Error)
			}
		})
	}
}

func TestHandleInfo(t *testing.T) {
	env, err := environment.NewPOMDP[tiger.State, string, tiger.Observation](
		tiger.Default(), tiger.Kind(vector.Float32), 3)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHandler(environment.Erase[string](env), discard())
	if err != nil {
		t.Fatal(err)
	}
	handle(t, h, `{"command": "reset"}`, nil)

	var result struct {
		Observation []float64 `json:"observation"`
		Terminal    bool      `json:"terminal"`
		Info        struct {
			Tiger string `json:"tiger"`
		} `json:"info"`
	}
	rep := handle(t, h, `{"command": "step", "payload": "open-left"}`,
		&result)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("step: unexpected error reply %v", rep.Error)
	}
	if !result.Terminal {
		t.Error("step: opening a door should end the episode")
	}
	if result.Info.Tiger != string(tiger.Left) &&
		result.Info.Tiger != string(tiger.Right) {
		t.Errorf("step: unexpected info %+v", result.Info)
	}
}

// counter is a model which counts its steps and emits a fixed reward
// and info value on each one
type counter struct {
	reward float64
	info   any
}

func (c *counter) InitialState(*rand.Rand) (int, error) {
	return 0, nil
}

func (c *counter) IsTerminal(int) bool {
	return false
}

func (c *counter) Actions() space.Space[int] {
	actions, _ := space.Range(2)
	return actions
}

func (c *counter) GenerateInfo(s, _ int, _ *rand.Rand) (int, float64, any,
	error) {
	return s + 1, c.reward, c.info, nil
}

func TestHandleUnencodable(t *testing.T) {
	tests := []struct {
		name    string
		model   *counter
		ok      bool
		wantErr string
	}{
		{"infinite info", &counter{reward: 1, info: math.Inf(1)}, true, ""},
		{"channel info", &counter{reward: 1, info: make(chan int)}, true, ""},
		{"nan reward", &counter{reward: math.NaN()}, false,
			protocol.ErrUnencodable.Error()},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env, err := environment.NewMDP[int, int](test.model,
				vector.New(vector.Float64, vector.Scalar[int]), 0)
			if err != nil {
				t.Fatal(err)
			}
			h, err := NewHandler(environment.Erase[int](env), discard())
			if err != nil {
				t.Fatal(err)
			}
			handle(t, h, `{"command": "reset"}`, nil)

			var result struct {
				Observation []float64 `json:"observation"`
				Info        string    `json:"info"`
			}
			rep := handle(t, h, `{"command": "step", "payload": 0}`, &result)
			if test.ok {
				if rep.Status != protocol.StatusOK {
					t.Fatalf("step: unexpected error reply %v", rep.Error)
				}
				if want := fmt.Sprint(test.model.info); result.Info != want {
					t.Errorf("step: expected info %q, got %q", want,
						result.Info)
				}
			} else {
				if rep.Status != protocol.StatusError {
					t.Fatalf("step: expected error reply, got %v", rep.Status)
				}
				if !strings.Contains(rep.Error, test.wantErr) {
					t.Errorf("step: error %q does not contain %q", rep.Error,
						test.wantErr)
				}
			}

			// The transition is applied whether or not it was encoded
			if env.State() != 1 {
				t.Errorf("state: expected 1, got %v", env.State())
			}
		})
	}
}

// panicking is an environment whose steps panic
type panicking struct{}

func (panicking) Reset() (ts.TimeStep, error) {
	return ts.TimeStep{}, nil
}

func (panicking) Step(any) (ts.TimeStep, bool, error) {
	panic("model exploded")
}

func (panicking) SampleAction() (any, error) {
	return 0, nil
}

func (panicking) ActionSpace() space.Description {
	return space.Description{}
}

func (panicking) ObservationShape() ([]int, error) {
	return []int{0}, nil
}

func TestHandleRecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	h, err := NewHandler(panicking{}, slog.New(slog.NewTextHandler(&logs,
		nil)))
	if err != nil {
		t.Fatal(err)
	}

	rep := handle(t, h, `{"command": "step", "payload": 0}`, nil)
	if rep.Status != protocol.StatusError {
		t.Fatalf("step: expected error reply, got %v", rep.Status)
	}
	if !strings.Contains(rep.Error, "model exploded") {
		t.Errorf("step: error %q does not report the panic", rep.Error)
	}
	if !strings.Contains(logs.String(), "recovered from panic") {
		t.Errorf("step: panic was not logged: %v", logs.String())
	}

	var obs []float64
	rep = handle(t, h, `{"command": "reset"}`, &obs)
	if rep.Status != protocol.StatusOK {
		t.Errorf("reset: unexpected error reply %v", rep.Error)
	}
	if obs == nil || len(obs) != 0 {
		t.Errorf("reset: expected empty observation, got %v", obs)
	}
}

func TestHandleClose(t *testing.T) {
	h := newGridHandler(t)
	if h.Closed() {
		t.Fatal("closed: new handler should not be closed")
	}
	rep := handle(t, h, `{"command": "close"}`, nil)
	if rep.Status != protocol.StatusOK {
		t.Fatalf("close: unexpected error reply %v", rep.Error)
	}
	if !h.Closed() {
		t.Error("closed: handler should be closed")
	}

	if _, err := NewHandler(nil, nil); err == nil {
		t.Error("newHandler: expected error for nil environment")
	}
}
