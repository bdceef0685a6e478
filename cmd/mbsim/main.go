package main

import (
	"fmt"
	"os"

	"github.com/san-kum/mbsim/internal/logging"
	"github.com/san-kum/mbsim/internal/mbs"
	"github.com/san-kum/mbsim/internal/probe"
	"github.com/san-kum/mbsim/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	logLevel   string
	logger     *zap.Logger
	configFile string
	preset     string
	dt         float64
	duration   float64
	theta      float64
	omega      float64
	seed       int64
	integrator string
	controller string
	kp         float64
	ki         float64
	kd         float64
	target     float64
	mass       float64
	length     float64
	damping    float64
	gravity    float64
	tolerance  float64
)

// main registers the commands and runs the root command, exiting with
// status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mbsim",
		Short:         "revolute joint pendulum model and simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(logLevel)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runFragments,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mbsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newProbeCmd(),
		newRunCmd(),
		newSweepCmd(),
		newCompareCmd(),
		newBenchCmd(),
		newPoseCmd(),
		newPresetsCmd(),
		newTraceCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
		newParamSweepCmd(),
		newTuneCmd(),
	)
	rootCmd.AddCommand(newRunsCmds()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.Warn.Render("error:"), err)
		os.Exit(1)
	}
}

// runFragments evaluates the default pendulum at the two probe states: the
// derivative at [1, 0], then the derivative and pose at [0.1, 0].
func runFragments(cmd *cobra.Command, args []string) error {
	model := mbs.Default()
	out := cmd.OutOrStdout()

	for _, f := range probe.Fragments() {
		logger.Debug("probe fragment", zap.String("name", f.Name), zap.Float64s("state", f.State))
		if err := probe.RunFragment(out, model, f); err != nil {
			return fmt.Errorf("fragment %s: %w", f.Name, err)
		}
	}
	return nil
}
