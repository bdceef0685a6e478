package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/control"
	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/experiment"
	"github.com/san-kum/mbsim/internal/linalg"
	"github.com/san-kum/mbsim/internal/probe"
	"github.com/san-kum/mbsim/internal/render"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProbeCmd() *cobra.Command {
	var (
		at      float64
		visual  bool
		sensors bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "evaluate the state derivative once, and optionally the pose of the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			model, err := experiment.NewRegistry().GetModel(cfg.Model, cfg.ModelParams())
			if err != nil {
				return err
			}

			f := probe.Fragment{
				Name:   "probe",
				Time:   at,
				State:  dynamo.State(cfg.GetInitState()),
				Visual: visual,
			}
			out := cmd.OutOrStdout()
			if err := probe.RunFragment(out, model, f); err != nil {
				return err
			}
			if !sensors {
				return nil
			}

			sv, err := model.Sensors(f.State)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, render.Header.Render("sensors"))
			fmt.Fprintln(out, render.KV("angle", strconv.FormatFloat(sv.Angle, 'g', -1, 64)))
			fmt.Fprintln(out, render.KV("velocity", strconv.FormatFloat(sv.Velocity, 'g', -1, 64)))
			fmt.Fprintln(out, render.KV("position", linalg.FormatVector(sv.Position)))
			fmt.Fprintln(out, render.KV("quaternion", fmt.Sprint(sv.Quaternion)))
			fmt.Fprintln(out, render.KV("kinetic", fmt.Sprintf("%.6f", sv.Kinetic)))
			fmt.Fprintln(out, render.KV("potential", fmt.Sprintf("%.6f", sv.Potential)))
			fmt.Fprintln(out, render.KV("energy", fmt.Sprintf("%.6f", sv.Energy())))
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().Float64Var(&at, "at", 0, "evaluation time")
	cmd.Flags().BoolVar(&visual, "visual", false, "pass the derivative through the pose function")
	cmd.Flags().BoolVar(&sensors, "sensors", false, "also print the sensor values at the state")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	return cmd
}

func setupExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, experiment.Config, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, experiment.Config{}, err
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	expCfg := experiment.FromConfig(cfg)
	expCfg.Tolerance = tolerance

	exp := experiment.New(expCfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return nil, expCfg, err
	}
	return exp, expCfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, cfg, err := setupExperiment(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	logger.Info("running simulation",
		zap.String("model", cfg.Model),
		zap.String("integrator", cfg.Integrator),
		zap.Float64("duration", cfg.Duration),
	)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{
		Model:      cfg.Model,
		Params:     exp.Model().GetParams(),
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Seed:       cfg.Seed,
	}, result)
	if err != nil {
		return err
	}
	logger.Info("run stored", zap.String("id", runID), zap.Duration("elapsed", elapsed))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title.Render("run "+runID))
	fmt.Fprintln(out, render.KV("completed in", elapsed.String()))
	fmt.Fprintln(out, render.KV("steps", strconv.Itoa(result.StepsTaken)))
	fmt.Fprintln(out, render.KV("energy drift", fmt.Sprintf("%.3e", result.EnergyDrift)))
	for _, e := range result.Errors {
		fmt.Fprintln(out, render.Warn.Render(e.Error()))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, render.Header.Render("metrics"))
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, "  "+render.KV(name, fmt.Sprintf("%.6f", result.Metrics[name])))
	}
	return nil
}

func newSweepCmd() *cobra.Command {
	var (
		from, to float64
		n        int
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure the swing period over a range of release angles in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return fmt.Errorf("need at least one amplitude, got %d", n)
			}
			exp, cfg, err := setupExperiment(cmd, nil)
			if err != nil {
				return err
			}

			thetas := make([]float64, n)
			for i := range thetas {
				thetas[i] = from
				if n > 1 {
					thetas[i] += (to - from) * float64(i) / float64(n-1)
				}
			}

			results, err := exp.Sweep(cmd.Context(), thetas, workers)
			if err != nil {
				return err
			}

			t0 := exp.Model().SmallAnglePeriod()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("period sweep (dt=%g, duration=%gs)", cfg.Dt, cfg.Duration)))
			fmt.Fprintln(out, render.KV("small-angle period", fmt.Sprintf("%.4f s", t0)))
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "THETA0\tPERIOD\tTHEORY\tT/T0\tDRIFT")
			periods := make([]float64, 0, len(results))
			for i, res := range results {
				p := analysis.Period(res, 0)
				periods = append(periods, p)
				fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.4f\t%.2e\n",
					thetas[i], p, analysis.LargeAmplitudePeriod(t0, thetas[i]), p/t0, res.EnergyDrift)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(periods) > 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, render.Graph(periods, "period vs release angle", 60, 10))
			}
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().Float64Var(&from, "from", 0.1, "smallest release angle")
	cmd.Flags().Float64Var(&to, "to", 3.0, "largest release angle")
	cmd.Flags().IntVar(&n, "n", 8, "number of angles")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same initial state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			registry := experiment.NewRegistry()
			model, err := registry.GetModel(cfg.Model, cfg.ModelParams())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("comparing integrators (dt=%.4f, duration=%.1fs)", cfg.Dt, cfg.Duration)))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tFINAL_THETA\tENERGY_DRIFT\tTIME_MS")
			for _, name := range args {
				integ, err := registry.GetIntegrator(name)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\t\t\n", name, err)
					continue
				}

				s := dynamo.New(model, integ, control.NewNone(model.ControlDim()))
				simCfg := dynamo.DefaultConfig()
				simCfg.Dt = cfg.Dt
				simCfg.Duration = cfg.Duration

				start := time.Now()
				res, err := s.Run(context.Background(), dynamo.State(cfg.GetInitState()), simCfg)
				elapsed := time.Since(start)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\t\t\n", name, err)
					continue
				}

				fmt.Fprintf(w, "%s\t%.6f\t%.2e\t%.2f\n", name, res.Final()[0], res.EnergyDrift, float64(elapsed.Microseconds())/1000)
			}
			return w.Flush()
		},
	}
	addSimFlags(cmd)
	return cmd
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "benchmark the rk4 run loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			base := experiment.FromConfig(config.DefaultConfig())
			base.Seed = 42

			fmt.Fprintln(cmd.OutOrStdout(), render.Title.Render("benchmarking pendulum"))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

			for _, dur := range []float64{1.0, 5.0, 10.0} {
				for _, step := range []float64{0.001, 0.01, 0.1} {
					cfg := base
					cfg.Dt = step
					cfg.Duration = dur

					exp := experiment.New(cfg, registry, logger)
					if err := exp.Setup(); err != nil {
						return err
					}

					start := time.Now()
					result, err := exp.Run(cmd.Context())
					if err != nil {
						return err
					}
					elapsed := time.Since(start)

					fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
						dur, step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
				}
			}
			return w.Flush()
		},
	}
}

func newPoseCmd() *cobra.Command {
	var (
		size   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "pose",
		Short: "draw the visualised box at --theta as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			model, err := experiment.NewRegistry().GetModel(cfg.Model, cfg.ModelParams())
			if err != nil {
				return err
			}

			r, T, err := model.Visual(dynamo.State(cfg.GetInitState()))
			if err != nil {
				return err
			}
			svg := render.PoseSVG(model.BoxCorners(r, T), size, 1.25*model.Params().Length)

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
				return err
			}
			if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
				return err
			}
			logger.Info("pose written", zap.String("path", output))
			return nil
		},
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&size, "size", 400, "canvas size in pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := "pendulum"
			if len(args) > 0 {
				model = args[0]
			}
			out := cmd.OutOrStdout()
			presets := config.ListPresets(model)
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for model: %s\n", model)
				return nil
			}
			fmt.Fprintln(out, render.Title.Render("presets for "+model))
			for _, name := range presets {
				p := config.GetPreset(model, name)
				fmt.Fprintf(out, "  %-8s %s\n", name, render.Subtle.Render(fmt.Sprintf(
					"theta=%g omega=%g duration=%gs damping=%g", p.InitState.Theta, p.InitState.Omega, p.Duration, p.Params.Damping)))
			}
			return nil
		},
	}
}

func newTraceCmd() *cobra.Command {
	var every int
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "stream the state every --every steps without storing the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if every < 1 {
				return fmt.Errorf("--every must be positive, got %d", every)
			}
			exp, cfg, err := setupExperiment(cmd, nil)
			if err != nil {
				return err
			}
			model := exp.Model()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "T\tTHETA\tOMEGA\tTORQUE\tENERGY\t")
			step := 0
			err = exp.GetSimulator().RunWithCallback(cmd.Context(), dynamo.State(cfg.InitState), cfg.SimConfig(),
				func(x dynamo.State, u dynamo.Control, t float64) bool {
					if step%every == 0 {
						fmt.Fprintf(w, "%.3f\t%.6f\t%.6f\t%.4f\t%.6f\t\n", t, x[0], x[1], u[0], model.Energy(x))
					}
					step++
					return true
				})
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&every, "every", 10, "print every n-th step")
	return cmd
}
