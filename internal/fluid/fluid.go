// Package fluid provides thermophysical state lookups for the propellants
// handled by the injector models.
package fluid

import "fmt"

// Param names a state variable accepted by Lookup.
type Param int

const (
	Pressure    Param = iota + 1 // Pa
	Temperature                  // K
	Quality                      // vapour mass fraction
	Entropy                      // J/kg/K
	Enthalpy                     // J/kg
)

func (p Param) String() string {
	switch p {
	case Pressure:
		return "P"
	case Temperature:
		return "T"
	case Quality:
		return "Q"
	case Entropy:
		return "S"
	case Enthalpy:
		return "H"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// Input is one independent state variable.
type Input struct {
	Param Param
	Value float64
}

func (in Input) String() string {
	return fmt.Sprintf("%s=%g", in.Param, in.Value)
}

func P(v float64) Input { return Input{Param: Pressure, Value: v} }
func T(v float64) Input { return Input{Param: Temperature, Value: v} }
func Q(v float64) Input { return Input{Param: Quality, Value: v} }
func S(v float64) Input { return Input{Param: Entropy, Value: v} }
func H(v float64) Input { return Input{Param: Enthalpy, Value: v} }

type Phase int

const (
	Liquid Phase = iota + 1
	TwoPhase
	Vapour
)

func (p Phase) String() string {
	switch p {
	case Liquid:
		return "liquid"
	case TwoPhase:
		return "two-phase"
	case Vapour:
		return "vapour"
	default:
		return "unknown"
	}
}

// State is a snapshot of the properties at one thermodynamic state. Quality
// is -1 outside the saturation dome.
type State struct {
	Temperature float64 // K
	Pressure    float64 // Pa
	Density     float64 // kg/m^3
	Enthalpy    float64 // J/kg
	Entropy     float64 // J/kg/K
	Quality     float64
	Phase       Phase
}

type CriticalPoint struct {
	Temperature float64 // K
	Pressure    float64 // Pa
	Density     float64 // kg/m^3
	Enthalpy    float64 // J/kg
}

// Limits is the temperature envelope a backend accepts.
type Limits struct {
	Tmin float64 // K
	Tmax float64 // K
}

// Source resolves substance states from two independent inputs.
type Source interface {
	Lookup(substance string, a, b Input) (State, error)
	CriticalPoint(substance string) (CriticalPoint, error)
	Limits(substance string) (Limits, error)
}

// Backend is the property model for a single substance.
type Backend interface {
	Lookup(a, b Input) (State, error)
	CriticalPoint() CriticalPoint
	Limits() Limits
}
