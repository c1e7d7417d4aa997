package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/rlinterface/client"
	"github.com/samuelfneumann/rlinterface/experiment"
	"github.com/samuelfneumann/rlinterface/experiment/savers"
	"github.com/samuelfneumann/rlinterface/utils/progressbar"
)

func rolloutCommand() *cobra.Command {
	var (
		steps    int
		cutoff   int
		outDir   string
		remote   string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Roll out a uniform random policy and save episode returns and lengths",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cutoff") {
				c.EpisodeCutoff = cutoff
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			var env experiment.Environment
			if remote != "" {
				cl, err := client.Dial(ctx, remote)
				if err != nil {
					return err
				}
				defer cl.Close()
				env = cl
				slog.Info("rolling out remote environment", "endpoint", remote)
			} else {
				local, err := c.Create()
				if err != nil {
					return err
				}
				env = local
				slog.Info("rolling out environment", "model", c.Model,
					"seed", c.Seed)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			returns := savers.NewReturn(filepath.Join(outDir, "returns.bin"))
			lengths := savers.NewEpisodeLength(filepath.Join(outDir,
				"lengths.bin"))

			exp, err := experiment.NewOnline(env, steps, slog.Default(),
				returns, lengths)
			if err != nil {
				return err
			}
			if progress {
				exp.SetProgressBar(progressbar.NewProgressBar(cmd.ErrOrStderr(),
					40, steps))
			}

			if err := exp.Run(ctx); err != nil {
				return err
			}
			if err := exp.Save(); err != nil {
				return err
			}

			r := returns.Returns()
			if len(r) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no episodes finished in %d "+
					"steps\n", exp.Steps())
				return nil
			}
			mean, std := stat.MeanStdDev(r, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "episodes: %d  |  steps: %d  |  "+
				"return: %.3f ± %.3f\n", exp.Episodes(), exp.Steps(), mean, std)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&steps, "steps", 10_000, "number of environment steps to take")
	flags.IntVar(&cutoff, "cutoff", 0, "maximum episode length (0 for none, ignored with --remote)")
	flags.StringVar(&outDir, "out", ".", "directory to save returns and lengths to")
	flags.StringVar(&remote, "remote", "", "endpoint of a served environment to roll out instead")
	flags.BoolVar(&progress, "progress", false, "display a progress bar")

	return cmd
}
