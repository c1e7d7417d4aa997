package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/rlinterface/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve an environment to remote agents until interrupted or closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			env, err := c.Create()
			if err != nil {
				return err
			}

			s, err := server.New(env, server.Config{Address: c.Address},
				slog.Default())
			if err != nil {
				return err
			}
			slog.Info("created environment", "model", c.Model,
				"seed", c.Seed, "history", c.History,
				"session", s.Session())

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Serve(ctx)
		},
	}
}
