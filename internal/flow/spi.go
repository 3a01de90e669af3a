package flow

import "math"

// MassFlowSPI is the single-phase incompressible mass flow
//
//	m = A Cd N sqrt(2 rho0 (pUp - pDown))
//
// with rho0 and pUp taken from saturated liquid at the supply temperature and
// pDown the chamber pressure. A chamber pressure above the supply pressure is
// a DomainError.
func MassFlowSPI(area, rho0, pUp, pDown float64, n int, cd float64) (float64, error) {
	if err := checkGeometry("SPI", n, cd); err != nil {
		return 0, err
	}
	if area < 0 || math.IsNaN(area) {
		return 0, domainErr("SPI", "area %g must be non-negative", area)
	}
	if !(rho0 > 0) {
		return 0, domainErr("SPI", "upstream density %g must be positive", rho0)
	}
	dp := pUp - pDown
	if dp < 0 || math.IsNaN(dp) {
		return 0, domainErr("SPI", "chamber pressure %g Pa exceeds supply pressure %g Pa", pDown, pUp)
	}
	return area * cd * float64(n) * math.Sqrt(2*rho0*dp), nil
}

// SPI is the single-phase incompressible model.
type SPI struct{}

func (SPI) Name() string { return "SPI" }

func (SPI) MassFlow(c Condition, area float64) (float64, error) {
	return MassFlowSPI(area, c.Upstream.Density, c.Upstream.Pressure, c.Downstream.Pressure,
		c.Geometry.Orifices, c.Geometry.Cd)
}
