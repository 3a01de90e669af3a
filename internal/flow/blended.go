package flow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MassFlowBlended weights the SPI and HEM flows by the non-equilibrium
// parameter kappa:
//
//	m = kappa/(1+kappa) mSPI + 1/(1+kappa) mHEM
//
// kappa = 0 recovers HEM and kappa = +Inf recovers SPI.
func MassFlowBlended(hem, spi, kappa float64) (float64, error) {
	if kappa < 0 || math.IsNaN(kappa) {
		return 0, domainErr("NHNE", "kappa %g must be non-negative", kappa)
	}
	if math.IsInf(kappa, 1) {
		return spi, nil
	}
	return kappa/(1+kappa)*spi + 1/(1+kappa)*hem, nil
}

// DyerKappa estimates kappa from the ratio of bubble growth time to liquid
// residence time, sqrt((p1 - p2)/(pv - p2)), for upstream pressure p1, vapour
// pressure pv and downstream pressure p2.
func DyerKappa(p1, pv, p2 float64) (float64, error) {
	if !(pv > p2) {
		return 0, domainErr("NHNE", "vapour pressure %g Pa must exceed downstream pressure %g Pa", pv, p2)
	}
	if !(p1 >= p2) {
		return 0, domainErr("NHNE", "upstream pressure %g Pa below downstream pressure %g Pa", p1, p2)
	}
	return math.Sqrt((p1 - p2) / (pv - p2)), nil
}

// Blend combines HEM and SPI curves sampled on the same diameter grid.
func Blend(hem, spi Curve, kappa float64) (Curve, error) {
	if hem.Len() != spi.Len() {
		return Curve{}, &ShapeError{Left: hem.Len(), Right: spi.Len(), Reason: "HEM and SPI curves differ in length"}
	}
	if err := hem.Validate(); err != nil {
		return Curve{}, err
	}
	if err := spi.Validate(); err != nil {
		return Curve{}, err
	}
	if !floats.Equal(hem.Diameters, spi.Diameters) {
		return Curve{}, &ShapeError{Left: hem.Len(), Right: spi.Len(), Reason: "HEM and SPI curves use different diameter grids"}
	}
	out := Curve{
		Model:     Blended{Kappa: kappa}.Name(),
		Diameters: append([]float64(nil), hem.Diameters...),
		MassFlows: make([]float64, hem.Len()),
	}
	for i := range out.MassFlows {
		m, err := MassFlowBlended(hem.MassFlows[i], spi.MassFlows[i], kappa)
		if err != nil {
			return Curve{}, err
		}
		out.MassFlows[i] = m
	}
	return out, nil
}

// Blended is the NHNE model for a fixed kappa.
type Blended struct {
	Kappa float64
}

func (b Blended) Name() string { return fmt.Sprintf("NHNE(k=%g)", b.Kappa) }

func (b Blended) MassFlow(c Condition, area float64) (float64, error) {
	hem, err := HEM{}.MassFlow(c, area)
	if err != nil {
		return 0, err
	}
	spi, err := SPI{}.MassFlow(c, area)
	if err != nil {
		return 0, err
	}
	return MassFlowBlended(hem, spi, b.Kappa)
}
