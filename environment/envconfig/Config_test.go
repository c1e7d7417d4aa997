package envconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samuelfneumann/rlinterface/model/gridworld"
	"github.com/samuelfneumann/rlinterface/space"
	"github.com/samuelfneumann/rlinterface/vector"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		model ModelName
		shape []int
		space space.Cardinality
	}{
		{GridWorld, []int{25}, space.Discrete},
		{MountainCar, []int{2}, space.Discrete},
		{MountainCarContinuous, []int{2}, space.Continuous},
		{Tiger, []int{3}, space.Discrete},
	}

	for _, test := range tests {
		t.Run(string(test.model), func(t *testing.T) {
			c := Default()
			c.Model = test.model
			env, err := c.Create()
			if err != nil {
				t.Fatal(err)
			}

			shape, err := env.ObservationShape()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.shape, shape); diff != "" {
				t.Errorf("observationShape: (-want +got)\n%v", diff)
			}
			if got := env.ActionSpace().Cardinality; got != test.space {
				t.Errorf("actionSpace: want %v, got %v", test.space, got)
			}

			if _, err := env.Reset(); err != nil {
				t.Fatal(err)
			}
			action, err := env.SampleAction()
			if err != nil {
				t.Fatal(err)
			}
			if _, _, err := env.Step(action); err != nil {
				t.Fatalf("step: could not step with sampled action: %v", err)
			}
		})
	}
}

func TestCreateHistory(t *testing.T) {
	c := Default()
	c.History = 4
	c.GridWorld.Encoding = XY
	env, err := c.Create()
	if err != nil {
		t.Fatal(err)
	}

	shape, err := env.ObservationShape()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{4, 2}, shape); diff != "" {
		t.Errorf("observationShape: (-want +got)\n%v", diff)
	}
	step, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if step.Observation.Len() != 8 {
		t.Errorf("reset: expected 8 stacked elements, got %v",
			step.Observation.Len())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"model": "Tiger", "dtype": "float32", "seed": 7,
		"tiger": {"accuracy": 0.9}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Model = Tiger
	want.DType = vector.Float32
	want.Seed = 7
	want.Tiger.Accuracy = 0.9
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("load: (-want +got)\n%v", diff)
	}

	// Saved configurations load back unchanged
	saved := filepath.Join(t.TempDir(), "saved.json")
	if err := c.Save(saved); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(saved)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c, loaded); diff != "" {
		t.Errorf("save: (-want +got)\n%v", diff)
	}

	if err := os.WriteFile(path, []byte(`{"model": "Chess"}`),
		0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("load: expected error for unknown model")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("load: expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvModel, string(MountainCar))
	t.Setenv(EnvSeed, "42")
	t.Setenv(EnvHistory, "3")
	t.Setenv(EnvAddress, "tcp://127.0.0.1:6000")
	t.Setenv(EnvEpisodeCutoff, "200")

	c := Default()
	if err := c.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Model = MountainCar
	want.Seed = 42
	want.History = 3
	want.Address = "tcp://127.0.0.1:6000"
	want.EpisodeCutoff = 200
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("applyEnv: (-want +got)\n%v", diff)
	}

	t.Setenv(EnvSeed, "-1")
	if err := c.ApplyEnv(); err == nil {
		t.Error("applyEnv: expected error for negative seed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"model", func(c *Config) { c.Model = "Chess" }},
		{"dtype", func(c *Config) { c.DType = "int8" }},
		{"history", func(c *Config) { c.History = -1 }},
		{"cutoff", func(c *Config) { c.EpisodeCutoff = -1 }},
		{"encoding", func(c *Config) { c.GridWorld.Encoding = "pixels" }},
		{"grid", func(c *Config) {
			c.GridWorld.Starts = []gridworld.Cell{{X: 9, Y: 9}}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := Default()
			test.modify(&c)
			if _, err := c.Create(); err == nil {
				t.Error("create: expected error")
			}
		})
	}
}

func TestCreateTileCoding(t *testing.T) {
	c := Default()
	c.Model = MountainCar
	c.TileCoding = &TileCodingConfig{Tiles: [][]int{{8, 8}, {4, 4}}}
	c.History = 2
	env, err := c.Create()
	if err != nil {
		t.Fatal(err)
	}

	shape, err := env.ObservationShape()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 1 + 64 + 16}, shape); diff != "" {
		t.Errorf("observationShape: (-want +got)\n%v", diff)
	}

	c.Model = Tiger
	if _, err := c.Create(); err == nil {
		t.Error("create: expected error tile coding a discrete observation")
	}
}

func TestCreateEpisodeCutoff(t *testing.T) {
	c := Default()
	c.EpisodeCutoff = 2
	env, err := c.Create()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 2; i++ {
		step, last, err := env.Step(gridworld.Left)
		if err != nil {
			t.Fatal(err)
		}
		if last != (i == 2) || step.Last() != last {
			t.Errorf("step %v: expected last == %v, got %v", i, i == 2, last)
		}
	}
}
