// Package envconfig provides configuration structs for configuring
// environments over the bundled models. Environment configurations in
// this package are JSON serializable and may be overridden by RLENV_*
// environment variables.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/rlinterface/environment"
	"github.com/samuelfneumann/rlinterface/environment/wrappers"
	"github.com/samuelfneumann/rlinterface/model/gridworld"
	"github.com/samuelfneumann/rlinterface/model/mountaincar"
	"github.com/samuelfneumann/rlinterface/model/tiger"
	"github.com/samuelfneumann/rlinterface/server"
	"github.com/samuelfneumann/rlinterface/vector"
)

// ModelName stores the name of models that can be configured with
// this package
type ModelName string

// Models available for configuration
const (
	GridWorld             ModelName = "GridWorld"
	MountainCar           ModelName = "MountainCar"
	MountainCarContinuous ModelName = "MountainCarContinuous"
	Tiger                 ModelName = "Tiger"
)

// Models returns the names of all configurable models
func Models() []ModelName {
	return []ModelName{GridWorld, MountainCar, MountainCarContinuous, Tiger}
}

// Gridworld observation encodings
const (
	OneHot = "onehot"
	XY     = "xy"
)

// Environment variables read by ApplyEnv
const (
	EnvModel         = "RLENV_MODEL"
	EnvDType         = "RLENV_DTYPE"
	EnvSeed          = "RLENV_SEED"
	EnvHistory       = "RLENV_HISTORY"
	EnvAddress       = "RLENV_ADDRESS"
	EnvEpisodeCutoff = "RLENV_EPISODE_CUTOFF"
)

// GridWorldConfig configures the GridWorld model
type GridWorldConfig struct {
	Rows     int              `json:"rows"`
	Cols     int              `json:"cols"`
	Starts   []gridworld.Cell `json:"starts"`
	Goals    []gridworld.Cell `json:"goals"`
	Slip     float64          `json:"slip"`
	Encoding string           `json:"encoding"`
}

// TileCodingConfig configures tile coding of observations. Only models
// with bounded continuous observations may be tile coded.
type TileCodingConfig struct {
	// Tiles holds the number of tiles along each observation dimension
	// for each tiling
	Tiles [][]int `json:"tiles"`
}

// TigerConfig configures the Tiger model
type TigerConfig struct {
	Accuracy float64 `json:"accuracy"`
}

// Config implements a specific configuration of a specific model, the
// environment which drives it, and the endpoint it is served on
type Config struct {
	Model ModelName    `json:"model"`
	DType vector.DType `json:"dtype"`
	Seed  uint64       `json:"seed"`

	// History is the number of most recent observations stacked into
	// each observation. Values of 0 or 1 disable stacking.
	History int `json:"history"`

	Address string `json:"address"`

	// EpisodeCutoff is the maximum number of steps in an episode. Zero
	// means episodes only end at terminal states.
	EpisodeCutoff int `json:"episode_cutoff"`

	// TileCoding replaces observations with their tile-coded
	// representation if set
	TileCoding *TileCodingConfig `json:"tile_coding,omitempty"`

	GridWorld GridWorldConfig `json:"gridworld"`
	Tiger     TigerConfig     `json:"tiger"`
}

// Default returns the default configuration: a 5x5 gridworld with a
// single start in one corner and a goal in the opposite corner
func Default() Config {
	return Config{
		Model:   GridWorld,
		DType:   vector.Float64,
		History: 1,
		Address: server.DefaultAddress,
		GridWorld: GridWorldConfig{
			Rows:     5,
			Cols:     5,
			Starts:   []gridworld.Cell{{X: 0, Y: 0}},
			Goals:    []gridworld.Cell{{X: 4, Y: 4}},
			Encoding: OneHot,
		},
		Tiger: TigerConfig{Accuracy: tiger.ListenCorrect},
	}
}

// Load reads a JSON configuration from path. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not read config: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: could not decode config %v: %w",
			path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// Save writes the configuration to path as JSON
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields of the configuration with any RLENV_*
// environment variables that are set
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvModel); ok {
		c.Model = ModelName(v)
	}
	if v, ok := os.LookupEnv(EnvDType); ok {
		c.DType = vector.DType(v)
	}
	if v, ok := os.LookupEnv(EnvAddress); ok {
		c.Address = v
	}
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("applyEnv: invalid %v: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvHistory); ok {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("applyEnv: invalid %v: %w", EnvHistory, err)
		}
		c.History = k
	}
	if v, ok := os.LookupEnv(EnvEpisodeCutoff); ok {
		cutoff, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("applyEnv: invalid %v: %w", EnvEpisodeCutoff,
				err)
		}
		c.EpisodeCutoff = cutoff
	}
	return nil
}

// Validate returns an error if the configuration cannot be used to
// create an environment
func (c Config) Validate() error {
	known := false
	for _, m := range Models() {
		known = known || c.Model == m
	}
	if !known {
		return fmt.Errorf("validate: no such model %q", c.Model)
	}
	if _, err := vector.ParseDType(string(c.DType)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.History < 0 {
		return fmt.Errorf("validate: history length must be non-negative, "+
			"got %v", c.History)
	}
	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("validate: episode cutoff must be non-negative, "+
			"got %v", c.EpisodeCutoff)
	}
	return nil
}

// Create returns the environment described by the Config
func (c Config) Create() (environment.Untyped, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	dtype, _ := vector.ParseDType(string(c.DType))

	switch c.Model {
	case GridWorld:
		return c.createGridWorld(dtype)

	case MountainCar:
		m, err := mountaincar.NewDiscrete(mountaincar.DefaultStart())
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		env, err := environment.NewMDP[mountaincar.State, int](m,
			mountaincar.Kind(dtype), c.Seed)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		return decorate[int](env, c)

	case MountainCarContinuous:
		m, err := mountaincar.NewContinuous(mountaincar.DefaultStart())
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		env, err := environment.NewMDP[mountaincar.State, []float64](m,
			mountaincar.Kind(dtype), c.Seed)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		return decorate[[]float64](env, c)

	case Tiger:
		m, err := tiger.New(c.Tiger.Accuracy)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		env, err := environment.NewPOMDP[tiger.State, string,
			tiger.Observation](m, tiger.Kind(dtype), c.Seed)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		return decorate[string](env, c)
	}

	return nil, fmt.Errorf("create: cannot create environment, no such "+
		"model %v", c.Model)
}

func (c Config) createGridWorld(dtype vector.DType) (environment.Untyped,
	error) {
	gc := c.GridWorld
	g, err := gridworld.New(gc.Rows, gc.Cols, gc.Starts, gc.Goals, gc.Slip)
	if err != nil {
		return nil, fmt.Errorf("createGridWorld: %w", err)
	}

	var kind vector.Kind[gridworld.Cell]
	switch gc.Encoding {
	case OneHot, "":
		kind = g.OneHot(dtype)
	case XY:
		kind = g.XY(dtype)
	default:
		return nil, fmt.Errorf("createGridWorld: no such encoding %q",
			gc.Encoding)
	}

	env, err := environment.NewMDP[gridworld.Cell, int](g, kind, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createGridWorld: %w", err)
	}
	return decorate[int](env, c)
}

// decorate applies the wrappers the Config asks for to env and erases
// its action type. Observations are tile coded before they are stacked.
func decorate[A any](env environment.Environment[A], c Config) (
	environment.Untyped, error) {
	if c.TileCoding != nil {
		bounds, ok := observationBounds[c.Model]
		if !ok {
			return nil, fmt.Errorf("decorate: cannot tile code observations "+
				"of model %v", c.Model)
		}
		tc, err := wrappers.NewTileCoding[A](env, bounds(),
			c.TileCoding.Tiles, c.Seed)
		if err != nil {
			return nil, fmt.Errorf("decorate: %w", err)
		}
		env = tc
	}

	if c.EpisodeCutoff > 0 {
		limit, err := wrappers.NewStepLimit[A](env, c.EpisodeCutoff)
		if err != nil {
			return nil, fmt.Errorf("decorate: %w", err)
		}
		env = limit
	}

	if c.History > 1 {
		h, err := wrappers.NewHistory[A](env, c.History)
		if err != nil {
			return nil, fmt.Errorf("decorate: %w", err)
		}
		env = h
	}

	return environment.Erase[A](env), nil
}

// observationBounds holds the observation bounds of models which can be
// tile coded
var observationBounds = map[ModelName]func() []r1.Interval{
	MountainCar:           mountaincar.ObservationBounds,
	MountainCarContinuous: mountaincar.ObservationBounds,
}
