package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/mbsim/internal/automation"
	"github.com/san-kum/mbsim/internal/experiment"
	"github.com/san-kum/mbsim/internal/optim"
	"github.com/san-kum/mbsim/internal/render"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file>",
		Short: "run the steps of a YAML scenario, storing those marked save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			st := storage.New(dataDir, logger)
			if err := st.Init(); err != nil {
				return err
			}

			results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), st, logger)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render("scenario "+scenario.Name))
			if scenario.Description != "" {
				fmt.Fprintln(out, render.Subtle.Render(scenario.Description))
			}
			for i, r := range results {
				id := r.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(out, "  %d  steps=%d drift=%.2e  %s\n", i+1, r.Result.StepsTaken, r.Result.EnergyDrift, id)
			}
			return err
		},
	}
}

func newMonteCarloCmd() *cobra.Command {
	var (
		trials  int
		spread  float64
		workers int
	)
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run perturbed releases around the initial state in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			mc := automation.MonteCarloConfig{Base: cfg, Perturbation: spread, NumTrials: trials, Workers: workers}
			logger.Info("monte carlo", zap.Int("trials", trials), zap.Float64("perturbation", spread))
			results, err := automation.RunMonteCarlo(cmd.Context(), mc, experiment.NewRegistry(), logger)
			if err != nil {
				return err
			}

			stable, unstable, mean, std := automation.MonteCarloStats(results)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("monte carlo (%d trials, +/-%g)", trials, spread)))
			fmt.Fprintln(out, render.KV("stable", fmt.Sprint(stable)))
			fmt.Fprintln(out, render.KV("unstable", fmt.Sprint(unstable)))
			fmt.Fprintln(out, render.KV("period", fmt.Sprintf("%.4f s +/- %.4f", mean, std)))

			finals := make([]float64, len(results))
			for i, r := range results {
				finals[i] = r.FinalState[0]
			}
			if len(finals) > 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, render.Graph(finals, "final angle per trial", 60, 8))
			}
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&trials, "trials", 32, "number of trials")
	cmd.Flags().Float64Var(&spread, "perturbation", 0.05, "maximum perturbation per state component")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	return cmd
}

func newParamSweepCmd() *cobra.Command {
	var (
		param    string
		from, to float64
		n        int
	)
	cmd := &cobra.Command{
		Use:   "paramsweep",
		Short: "measure the swing period while varying one model parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if n < 1 {
				return fmt.Errorf("need at least one value, got %d", n)
			}

			results, err := automation.RunParamSweep(cmd.Context(), cfg, param, optim.Linspace(from, to, n), experiment.NewRegistry())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("period vs %s (theta0=%g)", param, cfg.InitState.Theta)))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tPERIOD\tTHEORY\n", param)
			for _, r := range results {
				fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\n", r.Value, r.Period, r.Predicted)
			}
			return w.Flush()
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&param, "param", "length", "parameter to vary (mass, length, inertia, gravity, damping)")
	cmd.Flags().Float64Var(&from, "from", 0.5, "first value")
	cmd.Flags().Float64Var(&to, "to", 2.0, "last value")
	cmd.Flags().IntVar(&n, "n", 6, "number of values")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		kpMax, kdMax float64
		n            int
		metric       string
		workers      int
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search pid gains for the lowest tracking metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if n < 2 {
				return fmt.Errorf("need at least two grid points per gain, got %d", n)
			}

			registry := experiment.NewRegistry()
			build := func(params map[string]float64) (*experiment.Experiment, error) {
				expCfg := experiment.FromConfig(cfg)
				expCfg.Controller = "pid"
				for name, v := range params {
					expCfg.ControllerParams[name] = v
				}
				exp := experiment.New(expCfg, registry, nil)
				return exp, exp.Setup()
			}

			g := optim.NewGridSearch([]string{"kp", "kd"}, [][]float64{
				optim.Linspace(0, kpMax, n),
				optim.Linspace(0, kdMax, n),
			})
			g.SetWorkers(workers)

			logger.Info("tuning", zap.Int("runs", len(g.Combinations())), zap.String("metric", metric))
			best, val, err := g.Search(cmd.Context(), build, metric)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("best gains for %s (target=%g)", metric, cfg.ControllerParams.Target)))
			names := make([]string, 0, len(best))
			for name := range best {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(out, render.KV(name, fmt.Sprintf("%.4g", best[name])))
			}
			fmt.Fprintln(out, render.KV(metric, fmt.Sprintf("%.6f", val)))
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().Float64Var(&kpMax, "kp-max", 40, "largest kp on the grid")
	cmd.Flags().Float64Var(&kdMax, "kd-max", 8, "largest kd on the grid")
	cmd.Flags().IntVar(&n, "n", 5, "grid points per gain")
	cmd.Flags().StringVar(&metric, "metric", "angle_rms", "metric to minimise")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	return cmd
}
