package sweep

import (
	"context"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
)

// envelopeMargin keeps the envelope curve just below the critical temperature.
const envelopeMargin = 0.01 // K

// Member is one curve of a family.
type Member struct {
	Temperature float64 // K
	Curve       flow.Curve
}

type Family struct {
	Model    string
	Members  []Member
	Failures []Failure
}

// Family sweeps model over diameters once per supply temperature. Members
// keep the order of temps; skipped temperatures appear only in Failures.
func (r *Runner) Family(ctx context.Context, model flow.Model, temps []float64, chamberP float64, geom flow.Geometry, diameters []float64) (Family, error) {
	curves := make([]flow.Curve, len(temps))
	errs := ParallelFor(ctx, len(temps), r.Workers, func(i int) error {
		c, err := r.condition(temps[i], chamberP, geom)
		if err != nil {
			return err
		}
		curves[i], err = flow.Sweep(model, c, diameters)
		return err
	})

	failures, err := r.Resolve(temps, errs)
	if err != nil {
		return Family{}, err
	}

	fam := Family{Model: model.Name(), Failures: failures}
	for i, c := range curves {
		if errs[i] == nil {
			fam.Members = append(fam.Members, Member{Temperature: temps[i], Curve: c})
		}
	}
	r.logger().WithField("model", fam.Model).Debugf("family: %d curves, %d skipped", len(fam.Members), len(failures))
	return fam, nil
}

// CriticalEnvelope is the SPI curve just below the critical temperature,
// the last curve before the supply turns supercritical.
func (r *Runner) CriticalEnvelope(chamberP float64, geom flow.Geometry, diameters []float64) (Member, error) {
	cp, err := r.Source.CriticalPoint(r.Substance)
	if err != nil {
		return Member{}, err
	}
	t := cp.Temperature - envelopeMargin
	c, err := r.condition(t, chamberP, geom)
	if err != nil {
		return Member{}, err
	}
	curve, err := flow.Sweep(flow.SPI{}, c, diameters)
	if err != nil {
		return Member{}, err
	}
	return Member{Temperature: t, Curve: curve}, nil
}

type FluxSeries struct {
	Temperatures []float64 // K
	Flux         []float64 // kg/m^2/s
	Failures     []Failure
}

// Flux evaluates the HEM mass flux per unit area and discharge coefficient
// at each supply temperature.
func (r *Runner) Flux(ctx context.Context, temps []float64, chamberP float64) (FluxSeries, error) {
	g := make([]float64, len(temps))
	unit := flow.Geometry{Cd: 1, Orifices: 1}
	errs := ParallelFor(ctx, len(temps), r.Workers, func(i int) error {
		c, err := r.condition(temps[i], chamberP, unit)
		if err != nil {
			return err
		}
		g[i], err = flow.Flux(c)
		return err
	})

	failures, err := r.Resolve(temps, errs)
	if err != nil {
		return FluxSeries{}, err
	}
	out := FluxSeries{Failures: failures}
	for i := range temps {
		if errs[i] == nil {
			out.Temperatures = append(out.Temperatures, temps[i])
			out.Flux = append(out.Flux, g[i])
		}
	}
	return out, nil
}
