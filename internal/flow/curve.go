package flow

import "fmt"

// Curve is a mass-flow curve over ascending orifice diameters (m). MassFlows
// are in kg/s.
type Curve struct {
	Model     string
	Diameters []float64
	MassFlows []float64
}

func (c Curve) Len() int { return len(c.Diameters) }

// At returns the diameter and mass flow of sample i.
func (c Curve) At(i int) (d, m float64) {
	return c.Diameters[i], c.MassFlows[i]
}

// Validate checks that the curve is well formed: one flow per diameter and
// strictly ascending diameters.
func (c Curve) Validate() error {
	if len(c.Diameters) != len(c.MassFlows) {
		return &ShapeError{Left: len(c.Diameters), Right: len(c.MassFlows), Reason: "diameters and mass flows differ in length"}
	}
	if err := checkAscending(c.Diameters); err != nil {
		return err
	}
	return nil
}

func checkAscending(xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return &ShapeError{Left: i - 1, Right: i, Reason: fmt.Sprintf("diameters not ascending (%g, %g)", xs[i-1], xs[i])}
		}
	}
	return nil
}

// Sweep evaluates model at every diameter for a fixed condition. The first
// failing sample aborts the sweep with its index attached.
func Sweep(model Model, c Condition, diameters []float64) (Curve, error) {
	if len(diameters) == 0 {
		return Curve{}, &EmptyInputError{What: "diameter grid"}
	}
	if err := checkAscending(diameters); err != nil {
		return Curve{}, err
	}
	out := Curve{
		Model:     model.Name(),
		Diameters: append([]float64(nil), diameters...),
		MassFlows: make([]float64, len(diameters)),
	}
	for i, d := range diameters {
		a, err := Area(d)
		if err != nil {
			return Curve{}, fmt.Errorf("flow: sample %d: %w", i, err)
		}
		m, err := model.MassFlow(c, a)
		if err != nil {
			return Curve{}, fmt.Errorf("flow: sample %d (d=%g m): %w", i, d, err)
		}
		out.MassFlows[i] = m
	}
	return out, nil
}
