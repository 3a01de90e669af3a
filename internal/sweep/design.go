package sweep

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
)

// Scenario is one injector sizing problem.
type Scenario struct {
	Temperature     float64 // supply temperature, K
	ChamberPressure float64 // Pa
	Geometry        flow.Geometry
	Kappa           float64
	// DyerKappa replaces Kappa with the Dyer estimate for SupplyPressure.
	DyerKappa      bool
	SupplyPressure float64 // Pa; zero means saturated supply
	Target         float64 // kg/s
	Diameters      []float64
}

type Design struct {
	Scenario Scenario
	Kappa    float64
	HEM      flow.Curve
	SPI      flow.Curve
	NHNE     flow.Curve
	// Points holds the HEM, SPI and NHNE design points, in that order.
	Points []flow.DesignPoint
}

// Design evaluates all three models over the scenario's diameter grid and
// finds the design point of each.
func (r *Runner) Design(ctx context.Context, sc Scenario) (Design, error) {
	if err := ctx.Err(); err != nil {
		return Design{}, err
	}
	c, err := r.condition(sc.Temperature, sc.ChamberPressure, sc.Geometry)
	if err != nil {
		return Design{}, err
	}

	kappa := sc.Kappa
	if sc.DyerKappa {
		pv := c.Upstream.Pressure
		kappa, err = flow.DyerKappa(math.Max(sc.SupplyPressure, pv), pv, sc.ChamberPressure)
		if err != nil {
			return Design{}, err
		}
	}

	d := Design{Scenario: sc, Kappa: kappa}
	if d.HEM, err = flow.Sweep(flow.HEM{}, c, sc.Diameters); err != nil {
		return Design{}, err
	}
	if d.SPI, err = flow.Sweep(flow.SPI{}, c, sc.Diameters); err != nil {
		return Design{}, err
	}
	if d.NHNE, err = flow.Blend(d.HEM, d.SPI, kappa); err != nil {
		return Design{}, err
	}

	for _, curve := range []flow.Curve{d.HEM, d.SPI, d.NHNE} {
		p, err := flow.FindDesignDiameter(curve, sc.Target)
		if err != nil {
			return Design{}, err
		}
		d.Points = append(d.Points, p)
	}

	r.logger().WithFields(logrus.Fields{
		"temperature": sc.Temperature,
		"kappa":       kappa,
		"target":      sc.Target,
	}).Debug("design complete")
	return d, nil
}

// Cell is one (temperature, orifice count) entry of a design table.
type Cell struct {
	Temperature float64
	Orifices    int
	Points      []flow.DesignPoint
	OK          bool
}

type Table struct {
	Temperatures []float64
	Orifices     []int
	// Cells is row-major: Cells[i*len(Orifices)+j].
	Cells    []Cell
	Failures []Failure
}

func (t Table) At(i, j int) Cell {
	return t.Cells[i*len(t.Orifices)+j]
}

// DesignTable solves base once per (temperature, orifice count) pair. Cell
// failures follow the runner policy; the Failure index is the cell index.
func (r *Runner) DesignTable(ctx context.Context, base Scenario, temps []float64, orifices []int) (Table, error) {
	n := len(temps) * len(orifices)
	cells := make([]Cell, n)
	params := make([]float64, n)
	for i, t := range temps {
		for j, o := range orifices {
			k := i*len(orifices) + j
			cells[k] = Cell{Temperature: t, Orifices: o}
			params[k] = t
		}
	}

	errs := ParallelFor(ctx, n, r.Workers, func(k int) error {
		sc := base
		sc.Temperature = cells[k].Temperature
		sc.Geometry.Orifices = cells[k].Orifices
		d, err := r.Design(ctx, sc)
		if err != nil {
			return err
		}
		cells[k].Points = d.Points
		cells[k].OK = true
		return nil
	})

	failures, err := r.Resolve(params, errs)
	if err != nil {
		return Table{}, err
	}
	return Table{
		Temperatures: temps,
		Orifices:     orifices,
		Cells:        cells,
		Failures:     failures,
	}, nil
}
