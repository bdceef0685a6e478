package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/mbs"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultTheta    = 0.5
	DefaultKp       = 10.0
	DefaultKi       = 0.1
	DefaultKd       = 5.0
)

type Config struct {
	Model            string           `yaml:"model"`
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed"`
	LogLevel         string           `yaml:"log_level"`
	InitState        InitStateConfig  `yaml:"init_state"`
	Params           ParamsConfig     `yaml:"params"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
}

type InitStateConfig struct {
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
}

// ParamsConfig mirrors mbs.Params. A zero inertia means the slender rod
// value m*l^2/12.
type ParamsConfig struct {
	Mass       float64    `yaml:"mass"`
	Length     float64    `yaml:"length"`
	Inertia    float64    `yaml:"inertia"`
	Gravity    float64    `yaml:"gravity"`
	Damping    float64    `yaml:"damping"`
	GravityDir [3]float64 `yaml:"gravity_dir,flow"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk4",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		LogLevel:   "info",
		InitState: InitStateConfig{
			Theta: DefaultTheta,
		},
		Params: ParamsConfig{
			Mass:       mbs.DefaultMass,
			Length:     mbs.DefaultLength,
			Gravity:    mbs.DefaultGravity,
			GravityDir: [3]float64{0, 0, -1},
		},
		ControllerParams: ControllerConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %g", c.Duration))
	}
	if c.Dt > 0 && c.Duration > 0 && c.Dt > c.Duration {
		errs = append(errs, fmt.Errorf("dt %g exceeds duration %g", c.Dt, c.Duration))
	}
	if _, err := mbs.NewPendulum(c.ModelParams()); err != nil {
		errs = append(errs, err)
	}
	if !dynamo.State(c.GetInitState()).IsValid() {
		errs = append(errs, errors.New("initial state must be finite"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetInitState() []float64 {
	return []float64{c.InitState.Theta, c.InitState.Omega}
}

// ModelParams converts the params section into model parameters, filling
// the rod inertia and the box height from mass and length.
func (c *Config) ModelParams() mbs.Params {
	p := mbs.DefaultParams()
	p.Mass = c.Params.Mass
	p.Length = c.Params.Length
	p.Gravity = c.Params.Gravity
	p.Damping = c.Params.Damping
	p.GravityDir = c.Params.GravityDir
	p.Inertia = c.Params.Inertia
	if p.Inertia == 0 {
		p.Inertia = mbs.RodInertia(p.Mass, p.Length)
	}
	p.Box.Height = p.Length
	return p
}

func (c *Config) GetControllerParams(controlDim int) map[string]float64 {
	return map[string]float64{
		"dim":    float64(controlDim),
		"kp":     c.ControllerParams.Kp,
		"ki":     c.ControllerParams.Ki,
		"kd":     c.ControllerParams.Kd,
		"target": c.ControllerParams.Target,
	}
}
