package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/unit"
	"gopkg.in/yaml.v3"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

const (
	DefaultSubstance       = "NitrousOxide"
	DefaultModel           = "nhne"
	DefaultTemperature     = 20.0 // degC
	DefaultChamberPressure = 20.0 // bar
	DefaultOrifices        = 12
	DefaultCd              = 0.66
	DefaultKappa           = 1.4
	DefaultTarget          = 1.36 // kg/s

	zeroCelsius = 273.15
	barPascal   = 1e5
)

// Documented parameter ranges.
const (
	MinTemperature = -10.0
	MaxTemperature = 70.0
	MinOrifices    = 1
	MaxOrifices    = 50
	MaxCd          = 1.5
	MaxKappa       = 2.0
	MinTarget      = 0.3
	MaxTarget      = 2.5
)

// ErrParameterBounds indicates a parameter value is outside its valid range.
var ErrParameterBounds = errors.New("config: parameter out of valid bounds")

type Config struct {
	Substance          string      `yaml:"substance" toml:"substance"`
	Model              string      `yaml:"model" toml:"model"`
	SupplyTemperatureC float64     `yaml:"supply_temperature_c" toml:"supply_temperature_c"`
	ChamberPressureBar float64     `yaml:"chamber_pressure_bar" toml:"chamber_pressure_bar"`
	SupplyPressureBar  float64     `yaml:"supply_pressure_bar,omitempty" toml:"supply_pressure_bar,omitempty"`
	Orifices           int         `yaml:"orifices" toml:"orifices"`
	Cd                 float64     `yaml:"cd" toml:"cd"`
	Kappa              float64     `yaml:"kappa" toml:"kappa"`
	DyerKappa          bool        `yaml:"dyer_kappa,omitempty" toml:"dyer_kappa,omitempty"`
	TargetMassFlow     float64     `yaml:"target_mass_flow" toml:"target_mass_flow"`
	Diameter           GridConfig  `yaml:"diameter" toml:"diameter"`
	Temperatures       RangeConfig `yaml:"temperatures" toml:"temperatures"`
	TableOrifices      []int       `yaml:"table_orifices,omitempty" toml:"table_orifices,omitempty"`
	Workers            int         `yaml:"workers,omitempty" toml:"workers,omitempty"`
	SkipFailed         bool        `yaml:"skip_failed" toml:"skip_failed"`
}

// GridConfig is a diameter grid in millimetres.
type GridConfig struct {
	MinMM  float64 `yaml:"min_mm" toml:"min_mm"`
	MaxMM  float64 `yaml:"max_mm" toml:"max_mm"`
	Points int     `yaml:"points" toml:"points"`
}

// RangeConfig is a supply temperature grid in degrees Celsius.
type RangeConfig struct {
	MinC   float64 `yaml:"min_c" toml:"min_c"`
	MaxC   float64 `yaml:"max_c" toml:"max_c"`
	Points int     `yaml:"points" toml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Substance:          DefaultSubstance,
		Model:              DefaultModel,
		SupplyTemperatureC: DefaultTemperature,
		ChamberPressureBar: DefaultChamberPressure,
		Orifices:           DefaultOrifices,
		Cd:                 DefaultCd,
		Kappa:              DefaultKappa,
		TargetMassFlow:     DefaultTarget,
		Diameter:           GridConfig{MinMM: 0.1, MaxMM: 2.5, Points: 100},
		Temperatures:       RangeConfig{MinC: -10, MaxC: 32, Points: 43},
		TableOrifices:      []int{6, 12, 18, 24},
		SkipFailed:         true,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func bounds(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParameterBounds, fmt.Sprintf(format, args...))
}

// Validate checks every parameter against its documented range.
func (c *Config) Validate() error {
	if c.Substance == "" {
		return bounds("substance is empty")
	}
	if c.SupplyTemperatureC < MinTemperature || c.SupplyTemperatureC > MaxTemperature {
		return bounds("supply temperature %g degC not in [%g, %g]", c.SupplyTemperatureC, MinTemperature, MaxTemperature)
	}
	if !(c.ChamberPressureBar > 0) {
		return bounds("chamber pressure %g bar must be positive", c.ChamberPressureBar)
	}
	if c.SupplyPressureBar < 0 {
		return bounds("supply pressure %g bar must not be negative", c.SupplyPressureBar)
	}
	if err := checkOrifices(c.Orifices); err != nil {
		return err
	}
	for _, n := range c.TableOrifices {
		if err := checkOrifices(n); err != nil {
			return err
		}
	}
	if !(c.Cd > 0) || c.Cd > MaxCd {
		return bounds("cd %g not in (0, %g]", c.Cd, MaxCd)
	}
	if c.Kappa < 0 || c.Kappa > MaxKappa {
		return bounds("kappa %g not in [0, %g]", c.Kappa, MaxKappa)
	}
	if c.TargetMassFlow < MinTarget || c.TargetMassFlow > MaxTarget {
		return bounds("target mass flow %g kg/s not in [%g, %g]", c.TargetMassFlow, MinTarget, MaxTarget)
	}
	if !(c.Diameter.MinMM > 0) || c.Diameter.MaxMM <= c.Diameter.MinMM {
		return bounds("diameter range [%g, %g] mm", c.Diameter.MinMM, c.Diameter.MaxMM)
	}
	if c.Diameter.Points < 2 {
		return bounds("diameter grid needs at least 2 points, got %d", c.Diameter.Points)
	}
	if c.Temperatures.MaxC < c.Temperatures.MinC || c.Temperatures.Points < 1 {
		return bounds("temperature range [%g, %g] degC with %d points", c.Temperatures.MinC, c.Temperatures.MaxC, c.Temperatures.Points)
	}
	if c.Workers < 0 {
		return bounds("workers %d must not be negative", c.Workers)
	}
	if _, err := flow.ModelByName(c.Model, c.Kappa); err != nil {
		return bounds("%v", err)
	}
	return nil
}

func checkOrifices(n int) error {
	if n < MinOrifices || n > MaxOrifices {
		return bounds("orifices %d not in [%d, %d]", n, MinOrifices, MaxOrifices)
	}
	return nil
}

func celsius(c float64) unit.Temperature {
	return unit.Temperature(c+zeroCelsius) * unit.Kelvin
}

func (c *Config) SupplyTemperature() unit.Temperature {
	return celsius(c.SupplyTemperatureC)
}

func (c *Config) ChamberPressure() unit.Pressure {
	return unit.Pressure(c.ChamberPressureBar*barPascal) * unit.Pascal
}

// SupplyPressure is zero for a saturated supply.
func (c *Config) SupplyPressure() unit.Pressure {
	return unit.Pressure(c.SupplyPressureBar*barPascal) * unit.Pascal
}

// Diameters returns the diameter grid in metres.
func (c *Config) Diameters() []float64 {
	lo := unit.Length(c.Diameter.MinMM * unit.Milli)
	hi := unit.Length(c.Diameter.MaxMM * unit.Milli)
	return floats.Span(make([]float64, c.Diameter.Points), float64(lo), float64(hi))
}

// TemperatureGrid returns the supply temperature grid in kelvin.
func (c *Config) TemperatureGrid() []float64 {
	lo, hi := float64(celsius(c.Temperatures.MinC)), float64(celsius(c.Temperatures.MaxC))
	if c.Temperatures.Points == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, c.Temperatures.Points), lo, hi)
}

func (c *Config) Geometry() flow.Geometry {
	return flow.Geometry{Cd: c.Cd, Orifices: c.Orifices}
}

func (c *Config) Scenario() sweep.Scenario {
	return sweep.Scenario{
		Temperature:     float64(c.SupplyTemperature()),
		ChamberPressure: float64(c.ChamberPressure()),
		Geometry:        c.Geometry(),
		Kappa:           c.Kappa,
		DyerKappa:       c.DyerKappa,
		SupplyPressure:  float64(c.SupplyPressure()),
		Target:          c.TargetMassFlow,
		Diameters:       c.Diameters(),
	}
}

// Runner builds a sweep runner honouring the worker and skip settings.
func (c *Config) Runner(src fluid.Source, log logrus.FieldLogger) *sweep.Runner {
	r := sweep.NewRunner(src, c.Substance)
	if c.Workers > 0 {
		r.Workers = c.Workers
	} else {
		r.Workers = runtime.NumCPU()
	}
	if c.SkipFailed {
		r.Policy = sweep.SkipFailed
	}
	if log != nil {
		r.Log = log
	}
	return r
}
