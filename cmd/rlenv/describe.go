package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rlinterface/environment/envconfig"
	"github.com/samuelfneumann/rlinterface/space"
)

type description struct {
	Config           envconfig.Config  `json:"config"`
	ActionSpace      space.Description `json:"action_space"`
	ObservationShape []int             `json:"observation_shape"`
}

func describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the configuration, action space, and observation shape of an environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			env, err := c.Create()
			if err != nil {
				return err
			}
			shape, err := env.ObservationShape()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(description{
				Config:           c,
				ActionSpace:      env.ActionSpace(),
				ObservationShape: shape,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
