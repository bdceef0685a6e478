package main

import (
	"fmt"

	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/logging"
	"github.com/spf13/cobra"
)

// addSimFlags registers the flags shared by commands that build a
// simulation.
func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Float64Var(&theta, "theta", config.DefaultTheta, "initial angle")
	f.Float64Var(&omega, "omega", 0.0, "initial angular velocity")
	f.Int64Var(&seed, "seed", 0, "run seed")
	f.StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45, verlet, leapfrog)")
	f.StringVar(&controller, "controller", "none", "controller (none, pid, feedback)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	f.Float64Var(&target, "target", 0.0, "controller target angle")
	f.Float64Var(&mass, "mass", 1.0, "body mass (kg)")
	f.Float64Var(&length, "length", 1.0, "body length (m)")
	f.Float64Var(&damping, "damping", 0.0, "joint damping (N m s)")
	f.Float64Var(&gravity, "gravity", 9.81, "gravity constant (m/s^2)")
	f.Float64Var(&tolerance, "tol", 1e-6, "error tolerance for rk45")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		if loaded.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			l, err := logging.New(loaded.LogLevel)
			if err != nil {
				return nil, err
			}
			logger = l
		}
	}

	changed := cmd.Flags().Changed
	if changed("dt") {
		cfg.Dt = dt
	}
	if changed("time") {
		cfg.Duration = duration
	}
	if changed("theta") {
		cfg.InitState.Theta = theta
	}
	if changed("omega") {
		cfg.InitState.Omega = omega
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("controller") {
		cfg.Controller = controller
	}
	if changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if changed("target") {
		cfg.ControllerParams.Target = target
	}
	if changed("mass") {
		cfg.Params.Mass = mass
	}
	if changed("length") {
		cfg.Params.Length = length
	}
	if changed("damping") {
		cfg.Params.Damping = damping
	}
	if changed("gravity") {
		cfg.Params.Gravity = gravity
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
