// Package flow implements the injector orifice mass-flow models: homogeneous
// equilibrium (HEM), single-phase incompressible (SPI) and the blended
// non-homogeneous non-equilibrium (NHNE) model, together with the design-point
// search over a diameter sweep.
//
// Every formula is a pure function of its inputs. Property lookups happen once
// per operating point in NewCondition; failures there are returned as
// *fluid.LookupError and are never caught here.
package flow

import (
	"fmt"
	"math"

	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
)

// Area returns the flow area of a circular orifice of diameter d.
func Area(d float64) (float64, error) {
	if d < 0 || math.IsNaN(d) {
		return 0, domainErr("area", "diameter %g m must be non-negative", d)
	}
	return math.Pi * (d / 2) * (d / 2), nil
}

// Geometry describes an injector plate apart from the orifice diameter,
// which is the sweep axis.
type Geometry struct {
	Cd       float64 // discharge coefficient
	Orifices int
}

func (g Geometry) Validate() error {
	return checkGeometry("geometry", g.Orifices, g.Cd)
}

func checkGeometry(model string, n int, cd float64) error {
	if n < 1 {
		return domainErr(model, "orifice count %d must be at least 1", n)
	}
	if !(cd > 0) || math.IsInf(cd, 0) {
		return domainErr(model, "discharge coefficient %g must be positive", cd)
	}
	return nil
}

// Condition is the upstream/downstream state pair for one operating point.
// Upstream is saturated liquid at the supply temperature; Downstream is the
// isentropic expansion of it to the chamber pressure.
type Condition struct {
	Substance  string
	Upstream   fluid.State
	Downstream fluid.State
	Geometry   Geometry
}

// NewCondition resolves the states for a supply temperature (K) and chamber
// pressure (Pa).
func NewCondition(src fluid.Source, substance string, supplyT, chamberP float64, geom Geometry) (Condition, error) {
	if err := geom.Validate(); err != nil {
		return Condition{}, err
	}
	up, err := src.Lookup(substance, fluid.T(supplyT), fluid.Q(0))
	if err != nil {
		return Condition{}, fmt.Errorf("flow: upstream state: %w", err)
	}
	down, err := src.Lookup(substance, fluid.P(chamberP), fluid.S(up.Entropy))
	if err != nil {
		return Condition{}, fmt.Errorf("flow: downstream state: %w", err)
	}
	return Condition{
		Substance:  substance,
		Upstream:   up,
		Downstream: down,
		Geometry:   geom,
	}, nil
}

// Model evaluates the mass flow through the orifices of a condition for a
// given area of each orifice.
type Model interface {
	Name() string
	MassFlow(c Condition, area float64) (float64, error)
}

// ModelByName returns the model registered under name. kappa is used only by
// the blended model.
func ModelByName(name string, kappa float64) (Model, error) {
	switch name {
	case "hem", "HEM":
		return HEM{}, nil
	case "spi", "SPI":
		return SPI{}, nil
	case "nhne", "NHNE", "blended":
		return Blended{Kappa: kappa}, nil
	}
	return nil, fmt.Errorf("unknown model: %s", name)
}
