package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

const zeroCelsius = 273.15

// maxFailures caps the failure rows rendered before summarising the rest.
const maxFailures = 10

func field(label, value string) string {
	return Label.Render(fmt.Sprintf("%-22s", label)) + Value.Render(value)
}

// Design renders the scenario and its three design points.
func Design(d sweep.Design) string {
	sc := d.Scenario
	lines := []string{
		Header.Render("injector design"),
		field("supply temperature", fmt.Sprintf("%.2f °C", sc.Temperature-zeroCelsius)),
		field("chamber pressure", fmt.Sprintf("%.2f bar", sc.ChamberPressure/1e5)),
		field("orifices", fmt.Sprintf("%d (Cd %.2f)", sc.Geometry.Orifices, sc.Geometry.Cd)),
		field("kappa", fmt.Sprintf("%.3g", d.Kappa)),
		field("target", fmt.Sprintf("%.3f kg/s", sc.Target)),
		"",
	}
	for _, p := range d.Points {
		lines = append(lines, Point(p, sc.Diameters))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// Point renders one design point. Points pinned to either end of the
// diameter grid are flagged, since the target may lie outside it.
func Point(p flow.DesignPoint, diameters []float64) string {
	s := fmt.Sprintf("%-12s %s  %s",
		Title.Render(p.Model),
		Value.Render(fmt.Sprintf("%.4f mm", p.Diameter*1e3)),
		Subtle.Render(fmt.Sprintf("%.4f kg/s (%+.4f)", p.MassFlow, p.Deviation())))
	if len(diameters) > 0 && (p.Index == 0 || p.Index == len(diameters)-1) {
		s += " " + Warn.Render("at grid edge")
	}
	return s
}

// Failures renders the skipped samples of a sweep, or nothing when there
// are none.
func Failures(failures []sweep.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Warn.Render(fmt.Sprintf("%d samples skipped", len(failures))))
	for i, f := range failures {
		if i == maxFailures {
			b.WriteString("\n" + Subtle.Render(fmt.Sprintf("  ... %d more", len(failures)-maxFailures)))
			break
		}
		b.WriteString("\n" + Subtle.Render(fmt.Sprintf("  #%d %-14s %g: %v", f.Index, f.Kind, f.Param, f.Err)))
	}
	return b.String()
}

func Critical(substance string, cp fluid.CriticalPoint) string {
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		Header.Render(substance+" critical point"),
		field("temperature", fmt.Sprintf("%.2f K (%.2f °C)", cp.Temperature, cp.Temperature-zeroCelsius)),
		field("pressure", fmt.Sprintf("%.3f bar", cp.Pressure/1e5)),
		field("density", fmt.Sprintf("%.1f kg/m³", cp.Density)),
		field("enthalpy", fmt.Sprintf("%.2f kJ/kg", cp.Enthalpy/1e3)),
	))
}

// Status is a one-line outcome, green when nothing was skipped.
func Status(msg string, skipped int) string {
	if skipped == 0 {
		return OK.Render("✓ ") + msg
	}
	return Warn.Render("! ") + msg + Subtle.Render(fmt.Sprintf(" (%d skipped)", skipped))
}

// Range formats the span of xs for summaries.
func Range(xs []float64, scale, offset float64, unit string) string {
	if len(xs) == 0 {
		return "empty"
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return fmt.Sprintf("%.4g to %.4g %s", (lo-offset)*scale, (hi-offset)*scale, unit)
}
