package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

func sampleCurves() (flow.Curve, flow.Curve) {
	hem := flow.Curve{Model: "HEM", Diameters: []float64{1e-3, 2e-3}, MassFlows: []float64{0.1, 0.4}}
	spi := flow.Curve{Model: "SPI", Diameters: []float64{1e-3, 2e-3}, MassFlows: []float64{0.3, 1.2}}
	return hem, spi
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	hem, spi := sampleCurves()
	table, err := CurvesTable("curves", hem, spi)
	if err != nil {
		t.Fatal(err)
	}
	meta := RunMetadata{
		Kind:       "design",
		Substance:  "NitrousOxide",
		Parameters: map[string]float64{"kappa": 1.4},
		Designs:    []DesignRecord{{Model: "HEM", Target: 0.4, DiameterMM: 2, MassFlow: 0.4}},
	}

	runID, err := st.Save(meta, table)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "design_") {
		t.Errorf("expected design_ prefix, got %s", runID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Parameters["kappa"] != 1.4 {
		t.Errorf("expected kappa 1.4, got %f", loaded.Parameters["kappa"])
	}
	if len(loaded.Tables) != 1 || loaded.Tables[0] != "curves" {
		t.Errorf("expected [curves], got %v", loaded.Tables)
	}

	got, err := st.LoadTable(runID, "curves")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 2 || len(got.Columns) != 3 {
		t.Fatalf("expected 2x3 table, got %d rows %d columns", len(got.Rows), len(got.Columns))
	}
	if got.Columns[1] != "HEM_kg_s" || got.Rows[1][2] != 1.2 {
		t.Errorf("unexpected table %+v", got)
	}
	if got.Rows[0][0] != 1 {
		t.Errorf("expected diameter in mm, got %g", got.Rows[0][0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list for missing dir, got %v, %v", runs, err)
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	for _, kind := range []string{"flux", "dome"} {
		if _, err := st.Save(RunMetadata{Kind: kind}, Table{Name: kind, Columns: []string{"x"}}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Kind != "dome" {
		t.Errorf("expected newest run first, got %s", runs[0].Kind)
	}
}

func TestCurvesTableShape(t *testing.T) {
	hem, _ := sampleCurves()
	short := flow.Curve{Model: "SPI", Diameters: []float64{1e-3}, MassFlows: []float64{0.3}}
	if _, err := CurvesTable("curves", hem, short); !errors.Is(err, flow.ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	if _, err := CurvesTable("curves"); !errors.Is(err, flow.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestGridTableMarksFailedCells(t *testing.T) {
	g := sweep.Table{
		Temperatures: []float64{293.15},
		Orifices:     []int{12, 24},
		Cells: []sweep.Cell{
			{Temperature: 293.15, Orifices: 12, OK: true, Points: []flow.DesignPoint{{Diameter: 1e-3}, {Diameter: 2e-3}, {Diameter: 1.5e-3}}},
			{Temperature: 293.15, Orifices: 24},
		},
	}
	table := GridTable(g)
	if table.Rows[0][2] != 1 || table.Rows[0][4] != 1.5 {
		t.Errorf("expected design diameters in mm, got %v", table.Rows[0])
	}
	if !math.IsNaN(table.Rows[1][2]) {
		t.Errorf("expected NaN for failed cell, got %v", table.Rows[1])
	}
}

func TestWriteJSONNulls(t *testing.T) {
	var buf bytes.Buffer
	table := Table{Name: "t", Columns: []string{"a", "b"}, Rows: [][]float64{{1, nan}}}
	if err := WriteJSON(&buf, nil, table); err != nil {
		t.Fatal(err)
	}
	var out struct {
		Tables []struct {
			Rows [][]*float64 `json:"rows"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	row := out.Tables[0].Rows[0]
	if row[0] == nil || *row[0] != 1 || row[1] != nil {
		t.Errorf("expected [1, null], got %s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	table := Table{Columns: []string{"x", "y"}, Rows: [][]float64{{1, 2.5}}}
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "x,y\n1,2.5\n" {
		t.Errorf("unexpected csv %q", got)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	hem, spi := sampleCurves()
	curves, err := CurvesTable("curves", hem, spi)
	if err != nil {
		t.Fatal(err)
	}
	flux := Table{Name: "flux", Columns: []string{"temperature_c", "flux_kg_m2_s"}, Rows: [][]float64{{20, 22184}, {25, nan}}}
	if err := WriteXLSX(path, curves, flux); err != nil {
		t.Fatal(err)
	}

	tables, err := ReadXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0].Name != "curves" || tables[1].Name != "flux" {
		t.Fatalf("expected sheets curves and flux, got %+v", tables)
	}
	if tables[0].Rows[1][2] != 1.2 {
		t.Errorf("expected 1.2, got %g", tables[0].Rows[1][2])
	}
	if !math.IsNaN(tables[1].Rows[1][1]) {
		t.Errorf("expected NaN for empty cell, got %g", tables[1].Rows[1][1])
	}
}
