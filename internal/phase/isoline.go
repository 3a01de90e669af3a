package phase

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

// Marker is where an isoline crosses the saturation dome.
type Marker struct {
	Temperature    float64 // K
	Pressure       float64 // Pa
	LiquidDensity  float64
	VapourDensity  float64
	LiquidEnthalpy float64
	VapourEnthalpy float64
}

type Kind string

const (
	Isobar   Kind = "isobar"
	Isotherm Kind = "isotherm"
)

// Line is a single-phase isoline. X is temperature (K) along an isobar and
// pressure (Pa) along an isotherm; Value is the fixed pressure or temperature.
type Line struct {
	Kind       Kind
	Value      float64
	X          []float64
	Density    []float64
	Enthalpy   []float64
	Phases     []fluid.Phase
	Saturation *Marker
	Failures   []sweep.Failure
}

func (l *Line) Len() int { return len(l.X) }

// DefaultIsobarTemperatures spans 260 K to 370 K.
func DefaultIsobarTemperatures(n int) []float64 {
	return floats.Span(make([]float64, n), 260, 370)
}

// DefaultIsothermPressures spans 0.1 bar to 90 bar.
func DefaultIsothermPressures(n int) []float64 {
	return floats.Span(make([]float64, n), 1e4, 90e5)
}

// NewIsobar evaluates the substance at pressure p over temps. The saturation
// marker is set when p is below the critical pressure.
func NewIsobar(ctx context.Context, r *sweep.Runner, p float64, temps []float64) (*Line, error) {
	line, err := isoline(ctx, r, Isobar, p, temps, func(x float64) (fluid.Input, fluid.Input) {
		return fluid.P(p), fluid.T(x)
	})
	if err != nil {
		return nil, err
	}
	if line.Saturation, err = marker(r, fluid.P(p)); err != nil {
		return nil, err
	}
	return line, nil
}

// NewIsotherm evaluates the substance at temperature t over pressures. The
// saturation marker is set when t is below the critical temperature.
func NewIsotherm(ctx context.Context, r *sweep.Runner, t float64, pressures []float64) (*Line, error) {
	line, err := isoline(ctx, r, Isotherm, t, pressures, func(x float64) (fluid.Input, fluid.Input) {
		return fluid.P(x), fluid.T(t)
	})
	if err != nil {
		return nil, err
	}
	if line.Saturation, err = marker(r, fluid.T(t)); err != nil {
		return nil, err
	}
	return line, nil
}

func isoline(ctx context.Context, r *sweep.Runner, kind Kind, value float64, xs []float64, inputs func(float64) (fluid.Input, fluid.Input)) (*Line, error) {
	states := make([]fluid.State, len(xs))
	errs := sweep.ParallelFor(ctx, len(xs), r.Workers, func(i int) error {
		a, b := inputs(xs[i])
		st, err := r.Source.Lookup(r.Substance, a, b)
		states[i] = st
		return err
	})
	failures, err := r.Resolve(xs, errs)
	if err != nil {
		return nil, err
	}

	line := &Line{Kind: kind, Value: value, Failures: failures}
	for i, st := range states {
		if errs[i] != nil {
			continue
		}
		line.X = append(line.X, xs[i])
		line.Density = append(line.Density, st.Density)
		line.Enthalpy = append(line.Enthalpy, st.Enthalpy)
		line.Phases = append(line.Phases, st.Phase)
	}
	return line, nil
}

// marker returns the saturated states at the given pressure or temperature,
// or nil when the isoline does not cross the dome.
func marker(r *sweep.Runner, at fluid.Input) (*Marker, error) {
	l, err := r.Source.Lookup(r.Substance, at, fluid.Q(0))
	if errors.Is(err, fluid.ErrSupercritical) || errors.Is(err, fluid.ErrOutOfRange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v, err := r.Source.Lookup(r.Substance, at, fluid.Q(1))
	if err != nil {
		return nil, err
	}
	return &Marker{
		Temperature:    l.Temperature,
		Pressure:       l.Pressure,
		LiquidDensity:  l.Density,
		VapourDensity:  v.Density,
		LiquidEnthalpy: l.Enthalpy,
		VapourEnthalpy: v.Enthalpy,
	}, nil
}
