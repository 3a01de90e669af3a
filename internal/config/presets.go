package config

import "sort"

// Presets reproduce the standard sizing studies.
var Presets = map[string]*Config{
	"nhne": {
		Substance: DefaultSubstance, Model: "nhne",
		SupplyTemperatureC: 30, ChamberPressureBar: 20, Orifices: 12, Cd: 0.66, Kappa: 1.4,
		TargetMassFlow: 1.36,
		Diameter:       GridConfig{MinMM: 0.1, MaxMM: 6, Points: 1000},
		Temperatures:   RangeConfig{MinC: -10, MaxC: 30, Points: 9},
		TableOrifices:  []int{6, 12, 18, 24},
		SkipFailed:     true,
	},
	"hem": {
		Substance: DefaultSubstance, Model: "hem",
		SupplyTemperatureC: 20, ChamberPressureBar: 20, Orifices: 12, Cd: 0.66, Kappa: 0,
		TargetMassFlow: 1.36,
		Diameter:       GridConfig{MinMM: 0.1, MaxMM: 2.5, Points: 100},
		Temperatures:   RangeConfig{MinC: -10, MaxC: 32, Points: 500},
		SkipFailed:     true,
	},
	"spi": {
		Substance: DefaultSubstance, Model: "spi",
		SupplyTemperatureC: 20, ChamberPressureBar: 20, Orifices: 12, Cd: 0.66, Kappa: 0,
		TargetMassFlow: 1.36,
		Diameter:       GridConfig{MinMM: 0.1, MaxMM: 2.5, Points: 100},
		Temperatures:   RangeConfig{MinC: -15, MaxC: 36.41, Points: 2000},
		SkipFailed:     true,
	},
	"flux": {
		Substance: DefaultSubstance, Model: "hem",
		SupplyTemperatureC: 20, ChamberPressureBar: 20, Orifices: 1, Cd: 0.66, Kappa: 0,
		TargetMassFlow: 1.36,
		Diameter:       GridConfig{MinMM: 0.1, MaxMM: 2.5, Points: 100},
		Temperatures:   RangeConfig{MinC: -10, MaxC: 70, Points: 500},
		SkipFailed:     true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.TableOrifices = append([]int(nil), p.TableOrifices...)
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
