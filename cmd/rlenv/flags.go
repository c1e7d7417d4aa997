package main

import (
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rlinterface/environment/envconfig"
	"github.com/samuelfneumann/rlinterface/vector"
)

var (
	envFile    string
	logLevel   string
	configPath string

	model   string
	dtype   string
	seed    uint64
	history int
	address string
)

func addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "file of RLENV_* variables to load")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVarP(&configPath, "config", "c", "", "JSON environment configuration")

	flags.StringVar(&model, "model", "", "model to drive (GridWorld, MountainCar, MountainCarContinuous, Tiger)")
	flags.StringVar(&dtype, "dtype", "", "observation element type (float64, float32)")
	flags.Uint64Var(&seed, "seed", 0, "seed of the environment's random number generator")
	flags.IntVar(&history, "history", 0, "number of most recent observations to stack")
	flags.StringVar(&address, "address", "", "ZeroMQ endpoint to serve on")
}

// loadConfig builds the environment configuration. Flags override
// RLENV_* variables, which override the configuration file, which
// overrides the defaults.
func loadConfig(cmd *cobra.Command) (envconfig.Config, error) {
	c := envconfig.Default()
	if configPath != "" {
		var err error
		if c, err = envconfig.Load(configPath); err != nil {
			return envconfig.Config{}, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return envconfig.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		c.Model = envconfig.ModelName(model)
	}
	if flags.Changed("dtype") {
		c.DType = vector.DType(dtype)
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("history") {
		c.History = history
	}
	if flags.Changed("address") {
		c.Address = address
	}

	return c, c.Validate()
}
