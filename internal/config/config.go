package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/navlab/trajkit/internal/dubins"
)

const (
	DefaultDt    = 0.05
	DefaultSteps = 100
	DefaultVMin  = 0.0
	DefaultVMax  = 0.6
	DefaultWMin  = -1.1
	DefaultWMax  = 1.1
)

type Config struct {
	Model   string        `yaml:"model"` // "car" or "saturated"
	Dt      float64       `yaml:"dt"`
	Steps   int           `yaml:"steps"`
	Batch   int           `yaml:"batch"`
	Vehicle VehicleConfig `yaml:"vehicle"`
	Control ControlConfig `yaml:"control"`
	Goal    GoalConfig    `yaml:"goal"`
}

// VehicleConfig carries the saturation bounds for the bounded model.
type VehicleConfig struct {
	VMin float64 `yaml:"v_min"`
	VMax float64 `yaml:"v_max"`
	WMin float64 `yaml:"w_min"`
	WMax float64 `yaml:"w_max"`
}

// ControlConfig is the constant command applied during rollouts.
type ControlConfig struct {
	V float64 `yaml:"v"`
	W float64 `yaml:"w"`
}

// GoalConfig is the spline goal pose and speed, with optional shaping
// factors (zero means use the goal-distance heuristic).
type GoalConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Theta float64 `yaml:"theta"`
	V     float64 `yaml:"v"`
	F1    float64 `yaml:"f1"`
	F2    float64 `yaml:"f2"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: "saturated",
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		Batch: 1,
		Vehicle: VehicleConfig{
			VMin: DefaultVMin, VMax: DefaultVMax,
			WMin: DefaultWMin, WMax: DefaultWMax,
		},
		Control: ControlConfig{V: 0.4, W: 0.0},
		Goal:    GoalConfig{X: 4.0, Y: 0.0, Theta: 0.0, V: 0.4},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// NewModel constructs the configured dynamics model.
func (c *Config) NewModel() (dubins.Model, error) {
	switch c.Model {
	case "car":
		return dubins.NewCar(c.Dt)
	case "saturated":
		return dubins.NewSaturatedCar(c.Dt, c.Vehicle.VMin, c.Vehicle.VMax, c.Vehicle.WMin, c.Vehicle.WMax)
	default:
		return nil, fmt.Errorf("config: unknown model %q", c.Model)
	}
}
