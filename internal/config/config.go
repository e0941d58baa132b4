package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/bhsim/internal/distribution"
	"github.com/san-kum/bhsim/internal/dynamo"
	"github.com/san-kum/bhsim/internal/integrators"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultParticles       = 2000
	DefaultSteps           = 500
	DefaultDistribution    = distribution.Disc
	DefaultCentralMass     = 1e4
	DefaultDiscInnerRadius = 20.0
	DefaultDiscOuterRadius = 100.0
	DefaultExtent          = 100.0
)

type Config struct {
	TimeStep              float64 `yaml:"time_step"`
	SofteningLength       float64 `yaml:"softening_length"`
	OpeningAngle          float64 `yaml:"opening_angle"`
	GravitationalConstant float64 `yaml:"gravitational_constant"`
	ParticleCount         int     `yaml:"particle_count"`
	InitialDistribution   string  `yaml:"initial_distribution"`

	Seed       uint64  `yaml:"seed"`
	Integrator string  `yaml:"integrator"`
	Workers    int     `yaml:"workers,omitempty"`
	MaxDepth   int     `yaml:"max_depth"`
	Padding    float64 `yaml:"padding"`
	Steps      int     `yaml:"steps"`

	CentralMass     float64 `yaml:"central_mass"`
	DiscInnerRadius float64 `yaml:"disc_inner_radius"`
	DiscOuterRadius float64 `yaml:"disc_outer_radius"`
	Extent          float64 `yaml:"extent"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeStep:              dynamo.DefaultDt,
		SofteningLength:       dynamo.DefaultSoftening,
		OpeningAngle:          dynamo.DefaultTheta,
		GravitationalConstant: dynamo.DefaultG,
		ParticleCount:         DefaultParticles,
		InitialDistribution:   DefaultDistribution,
		Seed:                  1,
		Integrator:            integrators.DefaultName,
		MaxDepth:              dynamo.DefaultMaxDepth,
		Padding:               dynamo.DefaultPadding,
		Steps:                 DefaultSteps,
		CentralMass:           DefaultCentralMass,
		DiscInnerRadius:       DefaultDiscInnerRadius,
		DiscOuterRadius:       DefaultDiscOuterRadius,
		Extent:                DefaultExtent,
	}
}

// Load reads a YAML file on top of DefaultConfig, so absent keys keep their
// defaults. The result is validated.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver is Load with an explicit base, such as a preset. base is not
// modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the file-level settings into the context shared by the
// builder, evaluator and integrator. Workers of 0 means GOMAXPROCS.
func (c *Config) Params() dynamo.Params {
	p := dynamo.DefaultParams(c.ParticleCount)
	p.Dt = c.TimeStep
	p.Softening = c.SofteningLength
	p.Theta = c.OpeningAngle
	p.G = c.GravitationalConstant
	p.MaxDepth = c.MaxDepth
	p.Padding = c.Padding
	if c.Workers > 0 {
		p.Workers = c.Workers
	}
	return p
}

func (c *Config) Distribution() distribution.Options {
	return distribution.Options{
		N:           c.ParticleCount,
		Seed:        c.Seed,
		G:           c.GravitationalConstant,
		CentralMass: c.CentralMass,
		InnerRadius: c.DiscInnerRadius,
		OuterRadius: c.DiscOuterRadius,
		Extent:      c.Extent,
	}
}

// Validate reports every problem in the file at once.
func (c *Config) Validate() error {
	err := c.Params().Validate()
	if c.Workers < 0 {
		err = multierr.Append(err, invalid("workers must not be negative, got %d", c.Workers))
	}
	if c.Steps < 0 {
		err = multierr.Append(err, invalid("steps must not be negative, got %d", c.Steps))
	}
	if _, lerr := integrators.ByName(c.Integrator); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	if _, lerr := distribution.Lookup(c.InitialDistribution); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	if c.InitialDistribution == distribution.Disc {
		if !(c.CentralMass > 0) || math.IsInf(c.CentralMass, 0) {
			err = multierr.Append(err, invalid("central mass must be positive, got %v", c.CentralMass))
		}
		if !(c.DiscInnerRadius > 0) || !(c.DiscOuterRadius >= c.DiscInnerRadius) || math.IsInf(c.DiscOuterRadius, 0) {
			err = multierr.Append(err, invalid("disc radii must satisfy 0 < inner <= outer, got %v..%v",
				c.DiscInnerRadius, c.DiscOuterRadius))
		}
	} else if !(c.Extent > 0) || math.IsInf(c.Extent, 0) {
		err = multierr.Append(err, invalid("extent must be positive, got %v", c.Extent))
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
