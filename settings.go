package fabrik

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPrecision is the distance between effector and target under which the chain has converged.
	DefaultPrecision = 0.01

	// DefaultMaxIterations bounds the number of forward/backward iterations per solve.
	// Unconstrained chains typically converge in 2-5 iterations.
	DefaultMaxIterations = 10

	// DefaultRootDragStiffness does not damp the root displacement.
	DefaultRootDragStiffness = 1.0

	// RootDragThreshold disables the root drag when MaxRootDragDistance is below it.
	RootDragThreshold = 1e-8

	// StiffnessThreshold is the stiffness under which the root displacement is not divided.
	StiffnessThreshold = 1e-4
)

// ErrInvalidSettings is returned by Settings.Validate
var ErrInvalidSettings = errors.New("invalid settings")

// Settings tunes a solve
type Settings struct {
	// MaxRootDragDistance is how far the root may be dragged toward the rest of the chain.
	// 0 pins the root.
	MaxRootDragDistance float64 `yaml:"max_root_drag_distance"`
	// RootDragStiffness divides the root displacement, higher values pulling the root less.
	RootDragStiffness float64 `yaml:"root_drag_stiffness"`
	// Precision is the convergence threshold on the slop.
	Precision float64 `yaml:"precision"`
	// MaxIterations bounds the iteration loop.
	MaxIterations int `yaml:"max_iterations"`
}

// DefaultSettings pins the root and converges to a centimeter in at most 10 iterations
func DefaultSettings() Settings {
	return Settings{
		MaxRootDragDistance: 0,
		RootDragStiffness:   DefaultRootDragStiffness,
		Precision:           DefaultPrecision,
		MaxIterations:       DefaultMaxIterations,
	}
}

// Validate checks the settings are usable, wrapping ErrInvalidSettings otherwise
func (s Settings) Validate() error {
	if s.Precision < 0 {
		return fmt.Errorf("%w: precision must be >= 0, got %v", ErrInvalidSettings, s.Precision)
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must be >= 0, got %d", ErrInvalidSettings, s.MaxIterations)
	}
	if s.MaxRootDragDistance < 0 {
		return fmt.Errorf("%w: max root drag distance must be >= 0, got %v", ErrInvalidSettings, s.MaxRootDragDistance)
	}
	if s.RootDragStiffness < 0 {
		return fmt.Errorf("%w: root drag stiffness must be >= 0, got %v", ErrInvalidSettings, s.RootDragStiffness)
	}

	return nil
}

// LoadSettings reads settings from a YAML file on top of DefaultSettings,
// then applies the FABRIK_* environment overrides and validates the result.
// A FABRIK_* variable that does not parse is an ErrInvalidSettings.
// An empty path or a missing file keeps the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return settings, fmt.Errorf("read settings: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return settings, fmt.Errorf("parse settings %s: %w", path, err)
			}
		}
	}

	if err := settings.applyEnv(); err != nil {
		return settings, err
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}

	return settings, nil
}

func (s *Settings) applyEnv() error {
	floats := []struct {
		name  string
		value *float64
	}{
		{"FABRIK_PRECISION", &s.Precision},
		{"FABRIK_MAX_ROOT_DRAG_DISTANCE", &s.MaxRootDragDistance},
		{"FABRIK_ROOT_DRAG_STIFFNESS", &s.RootDragStiffness},
	}
	for _, env := range floats {
		v := os.Getenv(env.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidSettings, env.name, v, err)
		}
		*env.value = f
	}

	if v := os.Getenv("FABRIK_MAX_ITERATIONS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FABRIK_MAX_ITERATIONS=%q: %w", ErrInvalidSettings, v, err)
		}
		s.MaxIterations = i
	}

	return nil
}
