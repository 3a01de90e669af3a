// Package phase tabulates the saturation dome of a substance and isolines
// through it, as the data behind density and enthalpy diagrams.
package phase

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

// domeOffset keeps the first dome sample clear of the triple point.
const domeOffset = 0.01 // K

// Dome holds saturated liquid and vapour properties from just above the
// triple point up to the critical point. The last sample is the critical
// point itself, where both branches meet.
type Dome struct {
	Temperatures   []float64 // K
	Pressures      []float64 // Pa
	LiquidDensity  []float64 // kg/m^3
	VapourDensity  []float64
	LiquidEnthalpy []float64 // J/kg
	VapourEnthalpy []float64
	Critical       fluid.CriticalPoint
	Failures       []sweep.Failure
}

type saturation struct {
	liquid, vapour fluid.State
}

// NewDome samples n temperatures evenly from Tmin to Tc.
func NewDome(ctx context.Context, r *sweep.Runner, n int) (*Dome, error) {
	lim, err := r.Source.Limits(r.Substance)
	if err != nil {
		return nil, err
	}
	cp, err := r.Source.CriticalPoint(r.Substance)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		n = 2
	}
	temps := floats.Span(make([]float64, n), lim.Tmin+domeOffset, cp.Temperature)
	temps[n-1] = cp.Temperature

	sat := make([]saturation, n)
	errs := sweep.ParallelFor(ctx, n, r.Workers, func(i int) error {
		if temps[i] >= cp.Temperature {
			c := fluid.State{
				Temperature: cp.Temperature,
				Pressure:    cp.Pressure,
				Density:     cp.Density,
				Enthalpy:    cp.Enthalpy,
			}
			sat[i] = saturation{liquid: c, vapour: c}
			return nil
		}
		l, err := r.Source.Lookup(r.Substance, fluid.T(temps[i]), fluid.Q(0))
		if err != nil {
			return err
		}
		v, err := r.Source.Lookup(r.Substance, fluid.T(temps[i]), fluid.Q(1))
		if err != nil {
			return err
		}
		sat[i] = saturation{liquid: l, vapour: v}
		return nil
	})

	failures, err := r.Resolve(temps, errs)
	if err != nil {
		return nil, err
	}

	d := &Dome{Critical: cp, Failures: failures}
	for i, s := range sat {
		if errs[i] != nil {
			continue
		}
		d.Temperatures = append(d.Temperatures, temps[i])
		d.Pressures = append(d.Pressures, s.liquid.Pressure)
		d.LiquidDensity = append(d.LiquidDensity, s.liquid.Density)
		d.VapourDensity = append(d.VapourDensity, s.vapour.Density)
		d.LiquidEnthalpy = append(d.LiquidEnthalpy, s.liquid.Enthalpy)
		d.VapourEnthalpy = append(d.VapourEnthalpy, s.vapour.Enthalpy)
	}
	return d, nil
}

func (d *Dome) Len() int { return len(d.Temperatures) }

// Critical returns the critical point of the runner's substance.
func Critical(r *sweep.Runner) (fluid.CriticalPoint, error) {
	return r.Source.CriticalPoint(r.Substance)
}
