package config

import "sort"

// Presets are named physics tunings. Geometry always comes from the base
// config.
var Presets = map[string]PhysicsConfig{
	"classic": DefaultPhysics(),
	"floaty": {
		Gravity: 0.05, VelocityIncrease: 0.01, VelocityDecay: 0.9995, GrowthRate: 0.01,
	},
	"frantic": {
		Gravity: 0.3, VelocityIncrease: 0.06, VelocityDecay: 1.0, GrowthRate: 0.02,
	},
	"zero-g": {
		Gravity: 0, VelocityIncrease: 0.02, VelocityDecay: 1.0, GrowthRate: 0.015,
	},
	"balloon": {
		Gravity: 0.2, VelocityIncrease: 0.0, VelocityDecay: 0.999, GrowthRate: 0.08,
	},
	"sticky": {
		Gravity: 0.25, VelocityIncrease: -0.2, VelocityDecay: 0.99, GrowthRate: 0.005,
	},
}

// GetPreset returns the default config with the named physics, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Physics = p
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
