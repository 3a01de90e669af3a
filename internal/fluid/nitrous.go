package fluid

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Saturation correlations for nitrous oxide (ESDU 91022). Each set is
// evaluated in the reduced variable noted next to it.
var (
	vapourPressureCoeffs = [4]float64{-6.71893, 1.35966, -1.3779, -4.051}                // 1 - Tr
	liquidDensityCoeffs  = [4]float64{1.72328, -0.83950, 0.51060, -0.10412}              // 1 - Tr
	vapourDensityCoeffs  = [5]float64{-1.00900, -6.28792, 7.50332, -7.90463, 0.629427}   // 1/Tr - 1
	liquidEnthalpyCoeffs = [5]float64{-200.0, 116.043, -917.225, 794.779, -589.587}      // 1 - Tr, kJ/kg
	vapourEnthalpyCoeffs = [5]float64{-200.0, 440.055, -459.701, 434.081, -485.338}      // 1 - Tr, kJ/kg
	shomateCoeffs        = [5]float64{27.67988, 51.14898, -30.64454, 6.847911, -0.157906} // J/mol/K, T/1000
)

const (
	gasConstant = 8.314462618 // J/mol/K

	// IIR reference: saturated liquid at 0 degC.
	referenceTemperature = 273.15 // K
	referenceEnthalpy    = 200e3  // J/kg
	referenceEntropy     = 1e3    // J/kg/K

	quadraturePoints = 32
)

// NitrousOxide is the property backend for N2O. Saturation properties come
// from correlations valid between the triple and critical points; vapour
// states off the saturation line use a Peng-Robinson equation of state
// anchored to the saturated vapour.
type NitrousOxide struct {
	Tc        float64 // K
	Pc        float64 // Pa
	RhoC      float64 // kg/m^3
	Tmin      float64 // K
	Tmax      float64 // K
	MolarMass float64 // kg/mol
	Acentric  float64

	hOffset float64
	eos     pengRobinson
}

func NewNitrousOxide() *NitrousOxide {
	n := &NitrousOxide{
		Tc:        309.57,
		Pc:        7.251e6,
		RhoC:      452.0,
		Tmin:      182.33,
		Tmax:      525.0,
		MolarMass: 0.0440128,
		Acentric:  0.1613,
	}
	n.hOffset = referenceEnthalpy - 1e3*series(liquidEnthalpyCoeffs, 1-referenceTemperature/n.Tc)
	n.eos = newPengRobinson(n.Tc, n.Pc, n.Acentric)
	return n
}

func (n *NitrousOxide) CriticalPoint() CriticalPoint {
	return CriticalPoint{
		Temperature: n.Tc,
		Pressure:    n.Pc,
		Density:     n.RhoC,
		Enthalpy:    1e3*liquidEnthalpyCoeffs[0] + n.hOffset,
	}
}

func (n *NitrousOxide) Limits() Limits {
	return Limits{Tmin: n.Tmin, Tmax: n.Tmax}
}

// series evaluates c[0] + sum c[k] x^(k/3).
func series(c [5]float64, x float64) float64 {
	sum := c[0]
	for k := 1; k < len(c); k++ {
		sum += c[k] * math.Pow(x, float64(k)/3)
	}
	return sum
}

// dseries is the derivative of series with respect to x.
func dseries(c [5]float64, x float64) float64 {
	sum := 0.0
	for k := 1; k < len(c); k++ {
		e := float64(k) / 3
		sum += c[k] * e * math.Pow(x, e-1)
	}
	return sum
}

func (n *NitrousOxide) SaturationPressure(t float64) float64 {
	tr := t / n.Tc
	return n.Pc * math.Exp(vapourPressureExponent(1-tr)/tr)
}

func vapourPressureExponent(x float64) float64 {
	c := vapourPressureCoeffs
	return c[0]*x + c[1]*math.Pow(x, 1.5) + c[2]*math.Pow(x, 2.5) + c[3]*math.Pow(x, 5)
}

// dSaturationPressure is dPsat/dT in Pa/K.
func (n *NitrousOxide) dSaturationPressure(t float64) float64 {
	c := vapourPressureCoeffs
	tr := t / n.Tc
	x := 1 - tr
	f := vapourPressureExponent(x)
	df := c[0] + 1.5*c[1]*math.Sqrt(x) + 2.5*c[2]*math.Pow(x, 1.5) + 5*c[3]*math.Pow(x, 4)
	dlnp := (-df*tr - f) / (tr * tr * n.Tc)
	return n.SaturationPressure(t) * dlnp
}

func (n *NitrousOxide) LiquidDensity(t float64) float64 {
	c := liquidDensityCoeffs
	x := 1 - t/n.Tc
	sum := 0.0
	for k := range c {
		sum += c[k] * math.Pow(x, float64(k+1)/3)
	}
	return n.RhoC * math.Exp(sum)
}

func (n *NitrousOxide) VapourDensity(t float64) float64 {
	c := vapourDensityCoeffs
	x := n.Tc/t - 1
	sum := 0.0
	for k := range c {
		sum += c[k] * math.Pow(x, float64(k+1)/3)
	}
	return n.RhoC * math.Exp(sum)
}

func (n *NitrousOxide) LiquidEnthalpy(t float64) float64 {
	return 1e3*series(liquidEnthalpyCoeffs, 1-t/n.Tc) + n.hOffset
}

func (n *NitrousOxide) VapourEnthalpy(t float64) float64 {
	return 1e3*series(vapourEnthalpyCoeffs, 1-t/n.Tc) + n.hOffset
}

func (n *NitrousOxide) dLiquidEnthalpy(t float64) float64 {
	return -1e3 / n.Tc * dseries(liquidEnthalpyCoeffs, 1-t/n.Tc)
}

// LiquidEntropy integrates ds = (dh - v dP)/T along the saturated liquid line
// from the reference state.
func (n *NitrousOxide) LiquidEntropy(t float64) float64 {
	if t == referenceTemperature {
		return referenceEntropy
	}
	integrand := func(x float64) float64 {
		return (n.dLiquidEnthalpy(x) - n.dSaturationPressure(x)/n.LiquidDensity(x)) / x
	}
	if t > referenceTemperature {
		return referenceEntropy + quad.Fixed(integrand, referenceTemperature, t, quadraturePoints, nil, 0)
	}
	return referenceEntropy - quad.Fixed(integrand, t, referenceTemperature, quadraturePoints, nil, 0)
}

func (n *NitrousOxide) VapourEntropy(t float64) float64 {
	return n.LiquidEntropy(t) + (n.VapourEnthalpy(t)-n.LiquidEnthalpy(t))/t
}

// TriplePressure is the saturation pressure at Tmin.
func (n *NitrousOxide) TriplePressure() float64 {
	return n.SaturationPressure(n.Tmin)
}

// SaturationTemperature inverts SaturationPressure on [Tmin, Tc].
func (n *NitrousOxide) SaturationTemperature(p float64) (float64, error) {
	if p >= n.Pc {
		return 0, supercritical("P=%g Pa >= Pc=%g Pa", p, n.Pc)
	}
	if p < n.TriplePressure() {
		return 0, outOfRange("P=%g Pa below triple-point pressure %g Pa", p, n.TriplePressure())
	}
	return bisect(func(t float64) float64 {
		return n.SaturationPressure(t) - p
	}, n.Tmin, n.Tc)
}
