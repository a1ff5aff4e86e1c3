package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hcoa-iot/csmasim/internal/simrunner"
)

func runCmd() *cobra.Command {
	var p engineParams

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation locally, without a daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := p.toEngineConfig()
			if err != nil {
				return fmt.Errorf("parse engine config: %w", err)
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			runner := simrunner.New(logger)

			result, cached, err := runner.Run(context.Background(), simrunner.Request{Config: cfg, Seed: p.seed})
			if err != nil {
				return fmt.Errorf("run simulation: %w", err)
			}

			out, err := formatSimulation(result, cached, outputFormat)
			if err != nil {
				return fmt.Errorf("format simulation: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	registerEngineFlags(cmd, &p)

	return cmd
}
