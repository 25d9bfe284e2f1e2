package crispy

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/saad-KH/CrispyPhysics-sub000/constraint"
	"gopkg.in/yaml.v3"
)

// Config holds the world parameters that stay fixed for its lifetime.
type Config struct {
	// FixedStep is the duration of one tick, in seconds.
	FixedStep float64 `yaml:"fixed_step"`

	// Gravity acceleration (m/s²)
	Gravity mgl64.Vec2 `yaml:"gravity"`

	VelocityIterations int `yaml:"velocity_iterations"`
	PositionIterations int `yaml:"position_iterations"`

	// Speed caps, per second.
	MaxTranslationSpeed float64 `yaml:"max_translation_speed"`
	MaxRotationSpeed    float64 `yaml:"max_rotation_speed"`

	// WarmStarting seeds the contact solver with the impulses of the
	// previous tick.
	WarmStarting bool `yaml:"warm_starting"`
}

// DefaultConfig returns a 60Hz world under earth gravity.
func DefaultConfig() Config {
	return Config{
		FixedStep:           1.0 / 60.0,
		Gravity:             mgl64.Vec2{0, -9.8},
		VelocityIterations:  8,
		PositionIterations:  3,
		MaxTranslationSpeed: 120,
		MaxRotationSpeed:    30 * math.Pi,
		WarmStarting:        true,
	}
}

// LoadConfig reads a YAML config. Missing fields keep their default
// value; unknown fields are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid parameter.
func (c Config) Validate() error {
	var errs []error

	if !(c.FixedStep > 0) || math.IsInf(c.FixedStep, 0) {
		errs = append(errs, fmt.Errorf("fixed_step %v must be positive: %w", c.FixedStep, ErrInvalidConfig))
	}
	if c.VelocityIterations <= 0 {
		errs = append(errs, fmt.Errorf("velocity_iterations %d must be positive: %w", c.VelocityIterations, ErrInvalidConfig))
	}
	if c.PositionIterations <= 0 {
		errs = append(errs, fmt.Errorf("position_iterations %d must be positive: %w", c.PositionIterations, ErrInvalidConfig))
	}
	if !(c.MaxTranslationSpeed > 0) {
		errs = append(errs, fmt.Errorf("max_translation_speed %v must be positive: %w", c.MaxTranslationSpeed, ErrInvalidConfig))
	}
	if !(c.MaxRotationSpeed > 0) {
		errs = append(errs, fmt.Errorf("max_rotation_speed %v must be positive: %w", c.MaxRotationSpeed, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// TimeStep returns the solver parameters of one tick.
func (c Config) TimeStep() constraint.TimeStep {
	return constraint.TimeStep{
		Dt:                  c.FixedStep,
		VelocityIterations:  c.VelocityIterations,
		PositionIterations:  c.PositionIterations,
		MaxTranslationSpeed: c.MaxTranslationSpeed,
		MaxRotationSpeed:    c.MaxRotationSpeed,
		WarmStarting:        c.WarmStarting,
	}
}
