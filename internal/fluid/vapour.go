package fluid

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// pengRobinson holds the substance constants of the Peng-Robinson cubic.
type pengRobinson struct {
	tc, pc float64
	ac     float64 // attraction at Tc, Pa m^6/mol^2
	b      float64 // co-volume, m^3/mol
	m      float64
}

func newPengRobinson(tc, pc, omega float64) pengRobinson {
	r := gasConstant
	return pengRobinson{
		tc: tc,
		pc: pc,
		ac: 0.45724 * r * r * tc * tc / pc,
		b:  0.07780 * r * tc / pc,
		m:  0.37464 + 1.54226*omega - 0.26992*omega*omega,
	}
}

// attraction returns a(T) and da/dT.
func (pr pengRobinson) attraction(t float64) (a, dadt float64) {
	s := 1 + pr.m*(1-math.Sqrt(t/pr.tc))
	alpha := s * s
	return pr.ac * alpha, -pr.ac * pr.m * math.Sqrt(alpha/(t*pr.tc))
}

// compressibility returns the vapour-like root of the cubic in Z at (t, p).
func (pr pengRobinson) compressibility(t, p float64) (float64, error) {
	a, _ := pr.attraction(t)
	rt := gasConstant * t
	A := a * p / (rt * rt)
	B := pr.b * p / rt

	// Companion matrix of Z^3 + c2 Z^2 + c1 Z + c0.
	c2 := -(1 - B)
	c1 := A - 3*B*B - 2*B
	c0 := -(A*B - B*B - B*B*B)
	comp := mat.NewDense(3, 3, []float64{
		-c2, -c1, -c0,
		1, 0, 0,
		0, 1, 0,
	})
	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return 0, outOfRange("no equation of state root at T=%g K, P=%g Pa", t, p)
	}
	z := math.NaN()
	for _, v := range eig.Values(nil) {
		if math.Abs(imag(v)) > 1e-9*math.Max(1, math.Abs(real(v))) {
			continue
		}
		if re := real(v); re > B && (math.IsNaN(z) || re > z) {
			z = re
		}
	}
	if math.IsNaN(z) {
		return 0, outOfRange("no physical compressibility root at T=%g K, P=%g Pa", t, p)
	}
	return z, nil
}

// residuals returns the molar density with the residual enthalpy and entropy
// (real minus ideal gas) at (t, p).
func (pr pengRobinson) residuals(t, p float64) (rho, hres, sres float64, err error) {
	z, err := pr.compressibility(t, p)
	if err != nil {
		return 0, 0, 0, err
	}
	a, dadt := pr.attraction(t)
	rt := gasConstant * t
	B := pr.b * p / rt
	sqrt2 := math.Sqrt2
	l := math.Log((z + (1+sqrt2)*B) / (z + (1-sqrt2)*B))
	hres = rt*(z-1) + (t*dadt-a)/(2*sqrt2*pr.b)*l
	sres = gasConstant*math.Log(z-B) + dadt/(2*sqrt2*pr.b)*l
	return p / (z * rt), hres, sres, nil
}

// idealGas returns the Shomate ideal-gas enthalpy (J/mol) and entropy
// (J/mol/K, at 1 bar) at temperature t.
func idealGas(t float64) (h, s float64) {
	c := shomateCoeffs
	x := t / 1000
	h = 1000 * (c[0]*x + c[1]*x*x/2 + c[2]*x*x*x/3 + c[3]*x*x*x*x/4 - c[4]/x)
	s = c[0]*math.Log(x) + c[1]*x + c[2]*x*x/2 + c[3]*x*x*x/3 - c[4]/(2*x*x)
	return h, s
}

// superheated evaluates a vapour state off the saturation line. Departures
// are measured from the saturated vapour at the anchor temperature so the
// result is continuous with the saturation correlations.
func (n *NitrousOxide) superheated(t, p float64) (State, error) {
	ta := n.Tmin
	if p >= n.TriplePressure() {
		ts, err := n.SaturationTemperature(p)
		if err != nil {
			return State{}, err
		}
		ta = ts
	}
	pa := n.SaturationPressure(ta)

	rho, hres, sres, err := n.eos.residuals(t, p)
	if err != nil {
		return State{}, err
	}
	rhoA, hresA, sresA, err := n.eos.residuals(ta, pa)
	if err != nil {
		return State{}, err
	}
	hig, sig := idealGas(t)
	higA, sigA := idealGas(ta)

	m := n.MolarMass
	return State{
		Temperature: t,
		Pressure:    p,
		Density:     rho / rhoA * n.VapourDensity(ta),
		Enthalpy:    n.VapourEnthalpy(ta) + (hig-higA+hres-hresA)/m,
		Entropy:     n.VapourEntropy(ta) + (sig-sigA-gasConstant*math.Log(p/pa)+sres-sresA)/m,
		Quality:     -1,
		Phase:       Vapour,
	}, nil
}

// compressed evaluates a subcooled liquid state with the incompressible
// approximation about the saturated liquid at t.
func (n *NitrousOxide) compressed(t, p float64) State {
	rho := n.LiquidDensity(t)
	return State{
		Temperature: t,
		Pressure:    p,
		Density:     rho,
		Enthalpy:    n.LiquidEnthalpy(t) + (p-n.SaturationPressure(t))/rho,
		Entropy:     n.LiquidEntropy(t),
		Quality:     -1,
		Phase:       Liquid,
	}
}

// saturated mixes the saturated liquid and vapour at t with vapour fraction q.
func (n *NitrousOxide) saturated(t, q float64) State {
	rhoL, rhoV := n.LiquidDensity(t), n.VapourDensity(t)
	hl, hv := n.LiquidEnthalpy(t), n.VapourEnthalpy(t)
	sl := n.LiquidEntropy(t)
	sv := sl + (hv-hl)/t
	return State{
		Temperature: t,
		Pressure:    n.SaturationPressure(t),
		Density:     1 / ((1-q)/rhoL + q/rhoV),
		Enthalpy:    hl + q*(hv-hl),
		Entropy:     sl + q*(sv-sl),
		Quality:     q,
		Phase:       TwoPhase,
	}
}
