package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Substance != "NitrousOxide" {
		t.Errorf("expected substance NitrousOxide, got %s", cfg.Substance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("nhne")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Kappa != 1.4 || cfg.TargetMassFlow != 1.36 {
		t.Errorf("expected kappa 1.4 and target 1.36, got %g and %g", cfg.Kappa, cfg.TargetMassFlow)
	}

	cfg.TableOrifices[0] = 99
	if Presets["nhne"].TableOrifices[0] == 99 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 4 || presets[0] != "flux" {
		t.Errorf("expected 4 sorted presets, got %v", presets)
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"cold supply", func(c *Config) { c.SupplyTemperatureC = -11 }},
		{"hot supply", func(c *Config) { c.SupplyTemperatureC = 71 }},
		{"no orifices", func(c *Config) { c.Orifices = 0 }},
		{"too many orifices", func(c *Config) { c.Orifices = 51 }},
		{"bad table orifices", func(c *Config) { c.TableOrifices = []int{12, 60} }},
		{"zero cd", func(c *Config) { c.Cd = 0 }},
		{"large cd", func(c *Config) { c.Cd = 1.6 }},
		{"negative kappa", func(c *Config) { c.Kappa = -0.1 }},
		{"large kappa", func(c *Config) { c.Kappa = 2.1 }},
		{"small target", func(c *Config) { c.TargetMassFlow = 0.2 }},
		{"large target", func(c *Config) { c.TargetMassFlow = 2.6 }},
		{"inverted diameters", func(c *Config) { c.Diameter.MinMM, c.Diameter.MaxMM = 2, 1 }},
		{"single diameter", func(c *Config) { c.Diameter.Points = 1 }},
		{"chamber pressure", func(c *Config) { c.ChamberPressureBar = 0 }},
		{"unknown model", func(c *Config) { c.Model = "bernoulli" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()

	if got := float64(cfg.SupplyTemperature()); math.Abs(got-293.15) > 1e-12 {
		t.Errorf("expected 293.15 K, got %g", got)
	}
	if got := float64(cfg.ChamberPressure()); got != 20e5 {
		t.Errorf("expected 20e5 Pa, got %g", got)
	}

	d := cfg.Diameters()
	if len(d) != 100 {
		t.Fatalf("expected 100 diameters, got %d", len(d))
	}
	if math.Abs(d[0]-0.1e-3) > 1e-15 || math.Abs(d[99]-2.5e-3) > 1e-15 {
		t.Errorf("expected 0.1..2.5 mm in metres, got %g..%g", d[0], d[99])
	}

	cfg.Temperatures = RangeConfig{MinC: 0, MaxC: 10, Points: 1}
	if temps := cfg.TemperatureGrid(); len(temps) != 1 || temps[0] != 273.15 {
		t.Errorf("expected single 273.15 K sample, got %v", temps)
	}
}

func TestScenarioAndRunner(t *testing.T) {
	cfg := GetPreset("nhne")
	cfg.Workers = 3
	sc := cfg.Scenario()
	if sc.Geometry.Orifices != 12 || sc.Kappa != 1.4 || len(sc.Diameters) != 1000 {
		t.Errorf("unexpected scenario %+v", sc.Geometry)
	}
	r := cfg.Runner(fluid.Default(), nil)
	if r.Workers != 3 || r.Policy != sweep.SkipFailed || r.Substance != "NitrousOxide" {
		t.Errorf("unexpected runner %+v", r)
	}
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "injector.yaml")
	cfg := GetPreset("hem")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "hem" || got.Diameter.Points != 100 || got.Temperatures.Points != 500 {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestLoadTOMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "injector.toml")
	data := `
supply_temperature_c = 25.0
orifices = 8
kappa = 0.5

[diameter]
min_mm = 0.5
max_mm = 3.0
points = 50
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SupplyTemperatureC != 25 || cfg.Orifices != 8 || cfg.Kappa != 0.5 {
		t.Errorf("expected TOML values, got %+v", cfg)
	}
	if cfg.Diameter.Points != 50 || cfg.Diameter.MaxMM != 3 {
		t.Errorf("expected TOML diameter grid, got %+v", cfg.Diameter)
	}
	if cfg.Cd != DefaultCd || cfg.Substance != DefaultSubstance {
		t.Errorf("expected defaults for unset keys, got cd=%g substance=%s", cfg.Cd, cfg.Substance)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
