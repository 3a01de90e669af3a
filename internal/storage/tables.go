package storage

import (
	"fmt"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/phase"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

const (
	zeroCelsius = 273.15
	mm          = 1e3
	bar         = 1e-5
	kJ          = 1e-3
)

func DesignRecords(points []flow.DesignPoint) []DesignRecord {
	out := make([]DesignRecord, len(points))
	for i, p := range points {
		out[i] = DesignRecord{
			Model:      p.Model,
			Target:     p.Target,
			DiameterMM: p.Diameter * mm,
			MassFlow:   p.MassFlow,
			Deviation:  p.Deviation(),
		}
	}
	return out
}

func FailureRecords(failures []sweep.Failure) []FailureRecord {
	out := make([]FailureRecord, len(failures))
	for i, f := range failures {
		out[i] = FailureRecord{Index: f.Index, Param: f.Param, Kind: f.Kind, Error: f.Err.Error()}
	}
	return out
}

// CurvesTable lays curves sampled on one diameter grid side by side.
func CurvesTable(name string, curves ...flow.Curve) (Table, error) {
	if len(curves) == 0 {
		return Table{}, &flow.EmptyInputError{What: "curve set"}
	}
	base := curves[0]
	t := Table{Name: name, Columns: []string{"diameter_mm"}}
	for _, c := range curves {
		if c.Len() != base.Len() {
			return Table{}, &flow.ShapeError{Left: base.Len(), Right: c.Len(), Reason: "curves differ in length"}
		}
		t.Columns = append(t.Columns, c.Model+"_kg_s")
	}
	for i := 0; i < base.Len(); i++ {
		row := []float64{base.Diameters[i] * mm}
		for _, c := range curves {
			row = append(row, c.MassFlows[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func DesignTable(d sweep.Design) (Table, error) {
	return CurvesTable("curves", d.HEM, d.SPI, d.NHNE)
}

// FamilyTable has one column per supply temperature.
func FamilyTable(f sweep.Family) (Table, error) {
	curves := make([]flow.Curve, len(f.Members))
	for i, m := range f.Members {
		curves[i] = m.Curve
		curves[i].Model = fmt.Sprintf("%s_%.2fC", f.Model, m.Temperature-zeroCelsius)
	}
	return CurvesTable("family", curves...)
}

func FluxTable(s sweep.FluxSeries) Table {
	t := Table{Name: "flux", Columns: []string{"temperature_c", "flux_kg_m2_s"}}
	for i := range s.Temperatures {
		t.Rows = append(t.Rows, []float64{s.Temperatures[i] - zeroCelsius, s.Flux[i]})
	}
	return t
}

// GridTable lists the design diameter of each model per (temperature,
// orifice count) cell. Failed cells are NaN.
func GridTable(g sweep.Table) Table {
	t := Table{Name: "design_table", Columns: []string{"temperature_c", "orifices", "hem_mm", "spi_mm", "nhne_mm"}}
	for _, c := range g.Cells {
		row := []float64{c.Temperature - zeroCelsius, float64(c.Orifices), nan, nan, nan}
		if c.OK {
			for k, p := range c.Points {
				row[2+k] = p.Diameter * mm
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func DomeTable(d *phase.Dome) Table {
	t := Table{Name: "dome", Columns: []string{
		"temperature_c", "pressure_bar", "rho_l_kg_m3", "rho_v_kg_m3", "h_l_kj_kg", "h_v_kj_kg",
	}}
	for i := 0; i < d.Len(); i++ {
		t.Rows = append(t.Rows, []float64{
			d.Temperatures[i] - zeroCelsius,
			d.Pressures[i] * bar,
			d.LiquidDensity[i],
			d.VapourDensity[i],
			d.LiquidEnthalpy[i] * kJ,
			d.VapourEnthalpy[i] * kJ,
		})
	}
	return t
}

func LineTable(l *phase.Line) Table {
	x, scale, offset := "temperature_c", 1.0, zeroCelsius
	if l.Kind == phase.Isotherm {
		x, scale, offset = "pressure_bar", bar, 0
	}
	t := Table{Name: string(l.Kind), Columns: []string{x, "rho_kg_m3", "h_kj_kg", "phase"}}
	for i := 0; i < l.Len(); i++ {
		t.Rows = append(t.Rows, []float64{
			(l.X[i] - offset) * scale,
			l.Density[i],
			l.Enthalpy[i] * kJ,
			float64(l.Phases[i]),
		})
	}
	return t
}
