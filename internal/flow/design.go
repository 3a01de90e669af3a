package flow

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DesignPoint is the sample of a curve whose mass flow is nearest a target.
type DesignPoint struct {
	Model    string
	Target   float64 // kg/s
	Diameter float64 // m
	MassFlow float64 // kg/s
	Index    int
}

// Deviation is the absolute miss |MassFlow - Target|. It is bounded by the
// flow change between neighbouring samples of the sweep.
func (p DesignPoint) Deviation() float64 {
	return math.Abs(p.MassFlow - p.Target)
}

// FindDesignDiameter returns the curve sample minimising |flow - target|.
// Ties resolve to the lowest index. No interpolation is done; a finer answer
// needs a denser sweep.
func FindDesignDiameter(c Curve, target float64) (DesignPoint, error) {
	if c.Len() == 0 {
		return DesignPoint{}, &EmptyInputError{What: "mass-flow curve"}
	}
	if err := c.Validate(); err != nil {
		return DesignPoint{}, err
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return DesignPoint{}, domainErr("design", "target mass flow %g is not finite", target)
	}
	dev := make([]float64, c.Len())
	for i, m := range c.MassFlows {
		dev[i] = math.Abs(m - target)
	}
	i := floats.MinIdx(dev)
	return DesignPoint{
		Model:    c.Model,
		Target:   target,
		Diameter: c.Diameters[i],
		MassFlow: c.MassFlows[i],
		Index:    i,
	}, nil
}
