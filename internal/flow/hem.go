package flow

import "math"

// MassFlowHEM is the homogeneous equilibrium mass flow
//
//	m = N A Cd rho2 sqrt(2 (h1 - h2))
//
// where h1 is the upstream saturated-liquid enthalpy and rho2, h2 belong to
// the isentropic downstream state. h1 < h2 is a DomainError; h1 == h2 gives
// zero flow.
func MassFlowHEM(area, rho2, h1, h2 float64, n int, cd float64) (float64, error) {
	if err := checkGeometry("HEM", n, cd); err != nil {
		return 0, err
	}
	if area < 0 || math.IsNaN(area) {
		return 0, domainErr("HEM", "area %g must be non-negative", area)
	}
	if !(rho2 > 0) {
		return 0, domainErr("HEM", "downstream density %g must be positive", rho2)
	}
	dh := h1 - h2
	if dh < 0 || math.IsNaN(dh) {
		return 0, domainErr("HEM", "upstream enthalpy %g below downstream enthalpy %g", h1, h2)
	}
	return float64(n) * area * cd * rho2 * math.Sqrt(2*dh), nil
}

// HEM is the homogeneous equilibrium model.
type HEM struct{}

func (HEM) Name() string { return "HEM" }

func (HEM) MassFlow(c Condition, area float64) (float64, error) {
	return MassFlowHEM(area, c.Downstream.Density, c.Upstream.Enthalpy, c.Downstream.Enthalpy,
		c.Geometry.Orifices, c.Geometry.Cd)
}

// Flux is the HEM mass flux per unit area and discharge coefficient,
// G = rho2 sqrt(2 (h1 - h2)) in kg/m^2/s.
func Flux(c Condition) (float64, error) {
	return MassFlowHEM(1, c.Downstream.Density, c.Upstream.Enthalpy, c.Downstream.Enthalpy, 1, 1)
}
