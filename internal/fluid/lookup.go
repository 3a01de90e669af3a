package fluid

import (
	"fmt"
	"math"
)

// Lookup resolves a state from two independent inputs given in either order.
// Supported pairs are (T,Q), (P,Q), (P,T), (P,S) and (P,H).
func (n *NitrousOxide) Lookup(a, b Input) (State, error) {
	for _, in := range [2]Input{a, b} {
		if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
			return State{}, outOfRange("%s is not finite", in)
		}
	}
	if b.Param < a.Param {
		a, b = b, a
	}
	switch {
	case a.Param == Temperature && b.Param == Quality:
		return n.lookupTQ(a.Value, b.Value)
	case a.Param == Pressure && b.Param == Quality:
		return n.lookupPQ(a.Value, b.Value)
	case a.Param == Pressure && b.Param == Temperature:
		return n.lookupPT(a.Value, b.Value)
	case a.Param == Pressure && b.Param == Entropy:
		return n.lookupPX(a.Value, b.Value, entropyOf)
	case a.Param == Pressure && b.Param == Enthalpy:
		return n.lookupPX(a.Value, b.Value, enthalpyOf)
	}
	return State{}, fmt.Errorf("%w: (%s, %s)", ErrUnsupportedInputs, a.Param, b.Param)
}

func checkQuality(q float64) error {
	if q < 0 || q > 1 {
		return outOfRange("Q=%g outside [0, 1]", q)
	}
	return nil
}

func (n *NitrousOxide) lookupTQ(t, q float64) (State, error) {
	if err := checkQuality(q); err != nil {
		return State{}, err
	}
	if t >= n.Tc {
		return State{}, supercritical("T=%g K >= Tc=%g K", t, n.Tc)
	}
	if t < n.Tmin {
		return State{}, outOfRange("T=%g K below Tmin=%g K", t, n.Tmin)
	}
	return n.saturated(t, q), nil
}

func (n *NitrousOxide) lookupPQ(p, q float64) (State, error) {
	if err := checkQuality(q); err != nil {
		return State{}, err
	}
	t, err := n.SaturationTemperature(p)
	if err != nil {
		return State{}, err
	}
	st := n.saturated(t, q)
	st.Pressure = p
	return st, nil
}

func (n *NitrousOxide) lookupPT(p, t float64) (State, error) {
	if p <= 0 {
		return State{}, outOfRange("P=%g Pa must be positive", p)
	}
	if t < n.Tmin || t > n.Tmax {
		return State{}, outOfRange("T=%g K outside [%g, %g] K", t, n.Tmin, n.Tmax)
	}
	if t >= n.Tc {
		if p >= n.Pc {
			return State{}, supercritical("T=%g K, P=%g Pa", t, p)
		}
		return n.superheated(t, p)
	}
	if p >= n.SaturationPressure(t) {
		return n.compressed(t, p), nil
	}
	return n.superheated(t, p)
}

// property selects the entropy or enthalpy of a state so the (P,S) and
// (P,H) inversions share one path.
type property struct {
	name      string
	get       func(State) float64
	liquid    func(n *NitrousOxide, t float64) float64
	saturated func(n *NitrousOxide, t float64) (l, v float64)
}

var entropyOf = property{
	name: "S",
	get:  func(s State) float64 { return s.Entropy },
	liquid: func(n *NitrousOxide, t float64) float64 {
		return n.LiquidEntropy(t)
	},
	saturated: func(n *NitrousOxide, t float64) (float64, float64) {
		return n.LiquidEntropy(t), n.VapourEntropy(t)
	},
}

var enthalpyOf = property{
	name: "H",
	get:  func(s State) float64 { return s.Enthalpy },
	saturated: func(n *NitrousOxide, t float64) (float64, float64) {
		return n.LiquidEnthalpy(t), n.VapourEnthalpy(t)
	},
}

func (n *NitrousOxide) lookupPX(p, x float64, prop property) (State, error) {
	if p >= n.Pc {
		return State{}, supercritical("P=%g Pa >= Pc=%g Pa", p, n.Pc)
	}
	if p <= 0 {
		return State{}, outOfRange("P=%g Pa must be positive", p)
	}
	if p < n.TriplePressure() {
		return n.invertVapour(p, x, n.Tmin, prop)
	}

	ts, err := n.SaturationTemperature(p)
	if err != nil {
		return State{}, err
	}
	xl, xv := prop.saturated(n, ts)
	switch {
	case x >= xl && x <= xv:
		q := 0.0
		if xv > xl {
			q = (x - xl) / (xv - xl)
		}
		st := n.saturated(ts, q)
		st.Pressure = p
		return st, nil
	case x < xl:
		return n.invertLiquid(p, x, ts, prop)
	default:
		return n.invertVapour(p, x, ts, prop)
	}
}

func (n *NitrousOxide) invertLiquid(p, x, ts float64, prop property) (State, error) {
	value := func(t float64) float64 {
		if prop.liquid != nil {
			return prop.liquid(n, t)
		}
		return prop.get(n.compressed(t, p))
	}
	t, err := bisect(func(t float64) float64 { return value(t) - x }, n.Tmin, ts)
	if err != nil {
		return State{}, outOfRange("%s=%g below liquid range at P=%g Pa", prop.name, x, p)
	}
	return n.compressed(t, p), nil
}

func (n *NitrousOxide) invertVapour(p, x, lo float64, prop property) (State, error) {
	t, err := bisectErr(func(t float64) (float64, error) {
		st, err := n.superheated(t, p)
		if err != nil {
			return 0, err
		}
		return prop.get(st) - x, nil
	}, lo, n.Tmax)
	if err != nil {
		return State{}, err
	}
	return n.superheated(t, p)
}
