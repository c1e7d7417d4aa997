// Command rlenv serves, rolls out, and describes environments over the
// bundled decision process models
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rlenv",
		Short:        "rlenv drives decision process models as reinforcement learning environments.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil &&
					cmd.Flags().Changed("env-file") {
					return err
				}
			}

			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(logOutput, level))
			return nil
		},
	}
	addFlags(rootCmd)

	rootCmd.AddCommand(
		serveCommand(),
		rolloutCommand(),
		describeCommand(),
	)
	return rootCmd
}
