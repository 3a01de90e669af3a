package fluid

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
)

func within(got, want, relTol float64) bool {
	return math.Abs(got-want) <= relTol*math.Abs(want)
}

func TestSaturationAt20C(t *testing.T) {
	n := NewNitrousOxide()
	temp := 293.15

	if p := n.SaturationPressure(temp); !within(p, 50.60e5, 1e-3) {
		t.Errorf("expected Psat ~50.60 bar, got %g Pa", p)
	}
	if rho := n.LiquidDensity(temp); !within(rho, 786.55, 1e-3) {
		t.Errorf("expected liquid density ~786.55, got %g", rho)
	}
	if rho := n.VapourDensity(temp); !within(rho, 158.09, 1e-3) {
		t.Errorf("expected vapour density ~158.09, got %g", rho)
	}
	if lh := n.VapourEnthalpy(temp) - n.LiquidEnthalpy(temp); !within(lh, 169.27e3, 1e-3) {
		t.Errorf("expected latent heat ~169.27 kJ/kg, got %g", lh)
	}
}

func TestReferenceState(t *testing.T) {
	n := NewNitrousOxide()
	if h := n.LiquidEnthalpy(referenceTemperature); math.Abs(h-referenceEnthalpy) > 1e-6 {
		t.Errorf("expected h=200 kJ/kg at 0 degC, got %g", h)
	}
	if s := n.LiquidEntropy(referenceTemperature); s != referenceEntropy {
		t.Errorf("expected s=1 kJ/kg/K at 0 degC, got %g", s)
	}
	if s := n.LiquidEntropy(293.15); math.Abs(s-1162.6) > 1 {
		t.Errorf("expected liquid entropy ~1162.6 at 20 degC, got %g", s)
	}
	if s := n.VapourEntropy(referenceTemperature); math.Abs(s-1850.0) > 1 {
		t.Errorf("expected vapour entropy ~1850 at 0 degC, got %g", s)
	}
}

func TestAnalyticDerivatives(t *testing.T) {
	n := NewNitrousOxide()
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-4}
	for _, temp := range []float64{200, 250, 293.15, 305} {
		want := fd.Derivative(n.SaturationPressure, temp, settings)
		if got := n.dSaturationPressure(temp); !within(got, want, 1e-5) {
			t.Errorf("dPsat/dT at %g K: expected %g, got %g", temp, want, got)
		}
		want = fd.Derivative(n.LiquidEnthalpy, temp, settings)
		if got := n.dLiquidEnthalpy(temp); !within(got, want, 1e-5) {
			t.Errorf("dhl/dT at %g K: expected %g, got %g", temp, want, got)
		}
	}
}

func TestSaturationTemperature(t *testing.T) {
	n := NewNitrousOxide()
	ts, err := n.SaturationTemperature(20e5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ts-(273.15-16.42)) > 0.02 {
		t.Errorf("expected Tsat(20 bar) ~ -16.42 degC, got %g K", ts)
	}
	if p := n.SaturationPressure(ts); !within(p, 20e5, 1e-8) {
		t.Errorf("expected round trip to 20 bar, got %g", p)
	}

	if _, err := n.SaturationTemperature(n.Pc); !errors.Is(err, ErrSupercritical) {
		t.Errorf("expected ErrSupercritical at Pc, got %v", err)
	}
	if _, err := n.SaturationTemperature(1e4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange below triple pressure, got %v", err)
	}
}

func TestLookupSaturated(t *testing.T) {
	n := NewNitrousOxide()
	a, err := n.Lookup(T(293.15), Q(0))
	if err != nil {
		t.Fatal(err)
	}
	b, err := n.Lookup(Q(0), T(293.15))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected input order not to matter, got %+v and %+v", a, b)
	}
	if a.Phase != TwoPhase || a.Quality != 0 {
		t.Errorf("expected saturated liquid, got %v q=%g", a.Phase, a.Quality)
	}

	mid, err := n.Lookup(T(293.15), Q(0.5))
	if err != nil {
		t.Fatal(err)
	}
	wantRho := 1 / (0.5/n.LiquidDensity(293.15) + 0.5/n.VapourDensity(293.15))
	if !within(mid.Density, wantRho, 1e-12) {
		t.Errorf("expected mixture density %g, got %g", wantRho, mid.Density)
	}
}

func TestIsentropicExpansion(t *testing.T) {
	n := NewNitrousOxide()
	up, err := n.Lookup(T(293.15), Q(0))
	if err != nil {
		t.Fatal(err)
	}
	down, err := n.Lookup(P(20e5), S(up.Entropy))
	if err != nil {
		t.Fatal(err)
	}
	if down.Phase != TwoPhase {
		t.Fatalf("expected two-phase downstream, got %v", down.Phase)
	}
	if math.Abs(down.Quality-0.274) > 0.005 {
		t.Errorf("expected quality ~0.274, got %g", down.Quality)
	}
	if dh := up.Enthalpy - down.Enthalpy; math.Abs(dh-8840) > 50 {
		t.Errorf("expected enthalpy drop ~8.84 kJ/kg, got %g", dh)
	}
}

func TestVapourAtAmbient(t *testing.T) {
	n := NewNitrousOxide()
	st, err := n.Lookup(P(1e5), T(293.15))
	if err != nil {
		t.Fatal(err)
	}
	if st.Phase != Vapour {
		t.Fatalf("expected vapour, got %v", st.Phase)
	}
	if !within(st.Density, 1.827, 0.01) {
		t.Errorf("expected density ~1.827, got %g", st.Density)
	}
	if !within(st.Enthalpy, 496.4e3, 0.01) {
		t.Errorf("expected enthalpy ~496.4 kJ/kg, got %g", st.Enthalpy)
	}

	back, err := n.Lookup(P(1e5), S(st.Entropy))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back.Temperature-293.15) > 1e-3 {
		t.Errorf("expected (P,S) to recover 293.15 K, got %g", back.Temperature)
	}
	back, err = n.Lookup(H(st.Enthalpy), P(1e5))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back.Temperature-293.15) > 1e-3 {
		t.Errorf("expected (P,H) to recover 293.15 K, got %g", back.Temperature)
	}
}

func TestContinuityAtSaturation(t *testing.T) {
	n := NewNitrousOxide()
	p := 30e5
	ts, err := n.SaturationTemperature(p)
	if err != nil {
		t.Fatal(err)
	}
	liq, err := n.Lookup(P(p), T(ts-1e-6))
	if err != nil {
		t.Fatal(err)
	}
	vap, err := n.Lookup(P(p), T(ts+1e-6))
	if err != nil {
		t.Fatal(err)
	}
	if liq.Phase != Liquid || vap.Phase != Vapour {
		t.Fatalf("expected liquid then vapour, got %v and %v", liq.Phase, vap.Phase)
	}
	if !within(liq.Enthalpy, n.LiquidEnthalpy(ts), 1e-6) {
		t.Errorf("liquid enthalpy discontinuous: %g vs %g", liq.Enthalpy, n.LiquidEnthalpy(ts))
	}
	if !within(vap.Enthalpy, n.VapourEnthalpy(ts), 1e-6) {
		t.Errorf("vapour enthalpy discontinuous: %g vs %g", vap.Enthalpy, n.VapourEnthalpy(ts))
	}
	if !within(vap.Density, n.VapourDensity(ts), 1e-5) {
		t.Errorf("vapour density discontinuous: %g vs %g", vap.Density, n.VapourDensity(ts))
	}
}

func TestCompressedLiquidInversion(t *testing.T) {
	n := NewNitrousOxide()
	st, err := n.Lookup(P(60e5), T(280))
	if err != nil {
		t.Fatal(err)
	}
	if st.Phase != Liquid {
		t.Fatalf("expected liquid, got %v", st.Phase)
	}
	back, err := n.Lookup(P(60e5), S(st.Entropy))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back.Temperature-280) > 1e-3 {
		t.Errorf("expected 280 K, got %g", back.Temperature)
	}
}

func TestLookupErrors(t *testing.T) {
	n := NewNitrousOxide()
	tests := []struct {
		name string
		a, b Input
		want error
	}{
		{"supercritical temperature", T(310), Q(0), ErrSupercritical},
		{"supercritical pressure", P(8e6), S(1500), ErrSupercritical},
		{"quality above one", T(280), Q(1.5), ErrOutOfRange},
		{"negative quality", P(20e5), Q(-0.1), ErrOutOfRange},
		{"below triple point", T(150), Q(0), ErrOutOfRange},
		{"non-finite", T(math.NaN()), Q(0), ErrOutOfRange},
		{"unsupported pair", T(280), S(1000), ErrUnsupportedInputs},
		{"supercritical fluid", P(8e6), T(320), ErrSupercritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Lookup(tt.a, tt.b)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCriticalPoint(t *testing.T) {
	n := NewNitrousOxide()
	cp := n.CriticalPoint()
	if cp.Temperature != 309.57 || cp.Pressure != 7.251e6 {
		t.Errorf("unexpected critical point %+v", cp)
	}
	if !within(cp.Enthalpy, n.LiquidEnthalpy(n.Tc), 1e-12) {
		t.Errorf("expected critical enthalpy to close the dome, got %g vs %g", cp.Enthalpy, n.LiquidEnthalpy(n.Tc))
	}
}
