package config

import (
	"sort"
)

// Preset is a named (F, k) point from Pearson's classification, paired
// with the diffusion rates it was tuned for.
type Preset struct {
	Description string
	Du, Dv      float64
	F, K        float64
}

var Presets = map[string]Preset{
	"default": {Description: "notebook parameters, growing coral", Du: 0.1, Dv: 0.05, F: 0.0545, K: 0.062},
	"coral":   {Description: "branching coral growth", Du: 0.1, Dv: 0.05, F: 0.0545, K: 0.062},
	"mitosis": {Description: "self-replicating spots", Du: 0.1, Dv: 0.05, F: 0.0367, K: 0.0649},
	"spots":   {Description: "stable isolated spots", Du: 0.1, Dv: 0.05, F: 0.035, K: 0.065},
	"waves":   {Description: "pulsating travelling waves", Du: 0.1, Dv: 0.05, F: 0.014, K: 0.045},
	"worms":   {Description: "stripes and worms", Du: 0.1, Dv: 0.05, F: 0.078, K: 0.061},
}

// GetPreset returns a full config for the named preset, or nil.
func GetPreset(name string) *Config {
	if _, ok := Presets[name]; !ok {
		return nil
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset(name); err != nil {
		return nil
	}
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
