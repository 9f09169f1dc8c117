package config

var Presets = map[string]map[string]*Config{
	"pincell": {
		"quick": {
			Model: "pincell", Engine: "sampler",
			InactiveBatches: 5, ActiveBatches: 10, ParticlesPerBatch: 2000,
		},
		"converged": {
			Model: "pincell", Engine: "sampler",
			InactiveBatches: 50, ActiveBatches: 200, ParticlesPerBatch: 50000,
		},
	},
	"slab": {
		"quick": {
			Model: "slab", Engine: "sampler",
			InactiveBatches: 5, ActiveBatches: 10, ParticlesPerBatch: 2000,
		},
	},
	"lattice": {
		"quick": {
			Model: "lattice", Engine: "sampler",
			InactiveBatches: 5, ActiveBatches: 10, ParticlesPerBatch: 4000,
			Lattice: Lattice{Pitch: DefaultPitch},
		},
		"tight": {
			Model: "lattice", Engine: "sampler",
			InactiveBatches: 20, ActiveBatches: 60, ParticlesPerBatch: 20000,
			Lattice: Lattice{Pitch: 1.1},
		},
	},
}

func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	return group[name]
}

func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
