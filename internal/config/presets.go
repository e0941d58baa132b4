package config

import (
	"sort"

	"github.com/san-kum/bhsim/internal/distribution"
)

var Presets = map[string]*Config{
	distribution.Disc: {
		TimeStep: 1.0 / 60, SofteningLength: 10, OpeningAngle: 0.6, GravitationalConstant: 1,
		ParticleCount: 5000, InitialDistribution: distribution.Disc, Seed: 1,
		Integrator: "verlet", Steps: 600,
		CentralMass: 1e4, DiscInnerRadius: 20, DiscOuterRadius: 100,
	},
	distribution.StriationMin: {
		TimeStep: 0.01, SofteningLength: 1, OpeningAngle: 0.5, GravitationalConstant: 1,
		ParticleCount: 1500, InitialDistribution: distribution.StriationMin, Seed: 3,
		Integrator: "semi_implicit", Steps: 400, Extent: 100,
	},
	distribution.StriationMed: {
		TimeStep: 0.01, SofteningLength: 1, OpeningAngle: 0.5, GravitationalConstant: 1,
		ParticleCount: 3000, InitialDistribution: distribution.StriationMed, Seed: 6,
		Integrator: "semi_implicit", Steps: 400, Extent: 100,
	},
	distribution.StriationMax: {
		TimeStep: 0.01, SofteningLength: 1, OpeningAngle: 0.5, GravitationalConstant: 1,
		ParticleCount: 6000, InitialDistribution: distribution.StriationMax, Seed: 12,
		Integrator: "semi_implicit", Steps: 400, Extent: 100,
	},
	distribution.CustomSeed: {
		TimeStep: 0.005, SofteningLength: 0.5, OpeningAngle: 0.5, GravitationalConstant: 1,
		ParticleCount: 2000, InitialDistribution: distribution.CustomSeed, Seed: 42,
		Integrator: "semi_implicit", Steps: 500, Extent: 50,
	},
}

// GetPreset returns a copy of the named preset with unset tree settings
// filled from DefaultConfig, or nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	def := DefaultConfig()
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.Padding == 0 {
		cfg.Padding = def.Padding
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
