package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TeamSunride/SunFireInjectors/internal/config"
	"github.com/TeamSunride/SunFireInjectors/internal/flow"
	"github.com/TeamSunride/SunFireInjectors/internal/fluid"
	"github.com/TeamSunride/SunFireInjectors/internal/phase"
	"github.com/TeamSunride/SunFireInjectors/internal/report"
	"github.com/TeamSunride/SunFireInjectors/internal/storage"
	"github.com/TeamSunride/SunFireInjectors/internal/sweep"
)

const zeroCelsius = 273.15

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	noSave     bool

	substance   string
	model       string
	temperature float64 // degC
	chamber     float64 // bar
	supply      float64 // bar
	orifices    int
	cd          float64
	kappa       float64
	dyer        bool
	target      float64
	dMin        float64 // mm
	dMax        float64
	dPoints     int
	tMin        float64 // degC
	tMax        float64
	tPoints     int
	workers     int
	skipFailed  bool
	tableHoles  []int

	// Phase diagram sampling
	domePoints  int
	linePoints  int
	isoPressure float64 // bar
	isoTemp     float64 // degC
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "injector",
		Short: "nitrous oxide injector sizing",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".injector", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "do not store the run")

	designCmd := &cobra.Command{
		Use:   "design",
		Short: "size the orifices with HEM, SPI and NHNE",
		Args:  cobra.NoArgs,
		RunE:  runDesign,
	}
	addScenarioFlags(designCmd)

	curveCmd := &cobra.Command{
		Use:   "curve [hem|spi|nhne]",
		Short: "mass flow against orifice diameter for one model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCurve,
	}
	addScenarioFlags(curveCmd)

	familyCmd := &cobra.Command{
		Use:   "family [hem|spi]",
		Short: "mass flow curves over a range of supply temperatures",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFamily,
	}
	addScenarioFlags(familyCmd)
	addRangeFlags(familyCmd)

	fluxCmd := &cobra.Command{
		Use:   "flux",
		Short: "HEM mass flux against supply temperature",
		Args:  cobra.NoArgs,
		RunE:  runFlux,
	}
	addScenarioFlags(fluxCmd)
	addRangeFlags(fluxCmd)

	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "design diameters over supply temperature and orifice count",
		Args:  cobra.NoArgs,
		RunE:  runTable,
	}
	addScenarioFlags(tableCmd)
	addRangeFlags(tableCmd)
	tableCmd.Flags().IntSliceVar(&tableHoles, "table-orifices", nil, "orifice counts of the table columns")

	domeCmd := &cobra.Command{
		Use:   "dome",
		Short: "tabulate the saturation dome",
		Args:  cobra.NoArgs,
		RunE:  runDome,
	}
	domeCmd.Flags().IntVar(&domePoints, "points", 200, "samples")

	isobarCmd := &cobra.Command{
		Use:   "isobar",
		Short: "density and enthalpy along an isobar",
		Args:  cobra.NoArgs,
		RunE:  runIsobar,
	}
	isobarCmd.Flags().IntVar(&linePoints, "points", 100, "samples")
	isobarCmd.Flags().Float64Var(&isoPressure, "pressure", 60, "pressure (bar)")

	isothermCmd := &cobra.Command{
		Use:   "isotherm",
		Short: "density and enthalpy along an isotherm",
		Args:  cobra.NoArgs,
		RunE:  runIsotherm,
	}
	isothermCmd.Flags().IntVar(&linePoints, "points", 100, "samples")
	isothermCmd.Flags().Float64Var(&isoTemp, "temperature", 15, "temperature (degC)")

	criticalCmd := &cobra.Command{
		Use:   "critical",
		Short: "print the critical point",
		Args:  cobra.NoArgs,
		RunE:  runCritical,
	}
	for _, c := range []*cobra.Command{domeCmd, isobarCmd, isothermCmd, criticalCmd} {
		c.Flags().StringVar(&substance, "substance", config.DefaultSubstance, "substance name")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("available presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print the tables of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id] [file]",
		Short: "write a run to an Excel workbook",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportXLSX,
	}

	rootCmd.AddCommand(designCmd, curveCmd, familyCmd, fluxCmd, tableCmd, domeCmd, isobarCmd, isothermCmd,
		criticalCmd, presetsCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, exportXLSXCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&substance, "substance", d.Substance, "substance name")
	f.StringVar(&model, "model", d.Model, "flow model (hem, spi, nhne)")
	f.Float64VarP(&temperature, "temperature", "t", d.SupplyTemperatureC, "supply temperature (degC)")
	f.Float64VarP(&chamber, "chamber", "p", d.ChamberPressureBar, "chamber pressure (bar)")
	f.Float64Var(&supply, "supply-pressure", 0, "supply pressure (bar), 0 for saturated")
	f.IntVarP(&orifices, "orifices", "n", d.Orifices, "number of orifices")
	f.Float64Var(&cd, "cd", d.Cd, "discharge coefficient")
	f.Float64VarP(&kappa, "kappa", "k", d.Kappa, "NHNE non-equilibrium parameter")
	f.BoolVar(&dyer, "dyer", false, "estimate kappa from the supply pressure")
	f.Float64Var(&target, "target", d.TargetMassFlow, "target mass flow (kg/s)")
	f.Float64Var(&dMin, "d-min", d.Diameter.MinMM, "smallest orifice diameter (mm)")
	f.Float64Var(&dMax, "d-max", d.Diameter.MaxMM, "largest orifice diameter (mm)")
	f.IntVar(&dPoints, "d-points", d.Diameter.Points, "diameter samples")
	f.IntVar(&workers, "workers", 0, "parallel workers (0 for all CPUs)")
	f.BoolVar(&skipFailed, "skip-failed", d.SkipFailed, "skip samples the property backend rejects")
}

func addRangeFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&tMin, "t-min", d.Temperatures.MinC, "lowest supply temperature (degC)")
	f.Float64Var(&tMax, "t-max", d.Temperatures.MaxC, "highest supply temperature (degC)")
	f.IntVar(&tPoints, "t-points", d.Temperatures.Points, "temperature samples")
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	overrides := map[string]func(){
		"substance":       func() { cfg.Substance = substance },
		"model":           func() { cfg.Model = model },
		"temperature":     func() { cfg.SupplyTemperatureC = temperature },
		"chamber":         func() { cfg.ChamberPressureBar = chamber },
		"supply-pressure": func() { cfg.SupplyPressureBar = supply },
		"orifices":        func() { cfg.Orifices = orifices },
		"cd":              func() { cfg.Cd = cd },
		"kappa":           func() { cfg.Kappa = kappa },
		"dyer":            func() { cfg.DyerKappa = dyer },
		"target":          func() { cfg.TargetMassFlow = target },
		"d-min":           func() { cfg.Diameter.MinMM = dMin },
		"d-max":           func() { cfg.Diameter.MaxMM = dMax },
		"d-points":        func() { cfg.Diameter.Points = dPoints },
		"t-min":           func() { cfg.Temperatures.MinC = tMin },
		"t-max":           func() { cfg.Temperatures.MaxC = tMax },
		"t-points":        func() { cfg.Temperatures.Points = tPoints },
		"workers":         func() { cfg.Workers = workers },
		"skip-failed":     func() { cfg.SkipFailed = skipFailed },
		"table-orifices":  func() { cfg.TableOrifices = tableHoles },
	}
	for name, apply := range overrides {
		if f.Lookup(name) != nil && f.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"substance": cfg.Substance,
		"model":     cfg.Model,
		"preset":    preset,
	}).Debug("configuration loaded")
	return cfg, nil
}

func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *config.Config, *sweep.Runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx, cancel, cfg, cfg.Runner(fluid.Default(), log.StandardLogger()), nil
}

// phaseRunner is the runner for phase diagram commands, which only need the
// substance and always skip samples outside the backend's range.
func phaseRunner(cmd *cobra.Command) (*sweep.Runner, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f := cmd.Flags().Lookup("substance"); f != nil && f.Changed {
		cfg.Substance = substance
	}
	cfg.SkipFailed = true
	return cfg.Runner(fluid.Default(), log.StandardLogger()), nil
}

func parameters(cfg *config.Config) map[string]float64 {
	p := map[string]float64{
		"supply_temperature_c": cfg.SupplyTemperatureC,
		"chamber_pressure_bar": cfg.ChamberPressureBar,
		"orifices":             float64(cfg.Orifices),
		"cd":                   cfg.Cd,
		"kappa":                cfg.Kappa,
		"target_kg_s":          cfg.TargetMassFlow,
	}
	if cfg.SupplyPressureBar > 0 {
		p["supply_pressure_bar"] = cfg.SupplyPressureBar
	}
	return p
}

func save(meta storage.RunMetadata, tables ...storage.Table) error {
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, tables...)
	if err != nil {
		return err
	}
	fmt.Println(report.Subtle.Render("saved: " + runID))
	return nil
}

func printFailures(failures []sweep.Failure) {
	if s := report.Failures(failures); s != "" {
		fmt.Println(s)
	}
}

func runDesign(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	d, err := r.Design(ctx, cfg.Scenario())
	if err != nil {
		return err
	}
	fmt.Println(report.Design(d))

	table, err := storage.DesignTable(d)
	if err != nil {
		return err
	}
	params := parameters(cfg)
	params["kappa"] = d.Kappa
	return save(storage.RunMetadata{
		Kind:       "design",
		Substance:  cfg.Substance,
		Parameters: params,
		Designs:    storage.DesignRecords(d.Points),
	}, table)
}

func runCurve(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	sc := cfg.Scenario()
	d, err := r.Design(ctx, sc)
	if err != nil {
		return err
	}
	var curve flow.Curve
	var point flow.DesignPoint
	switch strings.ToLower(cfg.Model) {
	case "hem":
		curve, point = d.HEM, d.Points[0]
	case "spi":
		curve, point = d.SPI, d.Points[1]
	case "nhne", "blended":
		curve, point = d.NHNE, d.Points[2]
	default:
		_, err := flow.ModelByName(cfg.Model, cfg.Kappa)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "D (mm)\tMDOT (kg/s)")
	for i := 0; i < curve.Len(); i++ {
		dia, m := curve.At(i)
		fmt.Fprintf(w, "%.4f\t%.5f\n", dia*1e3, m)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(report.Point(point, sc.Diameters))

	table, err := storage.CurvesTable("curve", curve)
	if err != nil {
		return err
	}
	params := parameters(cfg)
	params["kappa"] = d.Kappa
	return save(storage.RunMetadata{
		Kind:       "curve",
		Substance:  cfg.Substance,
		Parameters: params,
		Designs:    storage.DesignRecords([]flow.DesignPoint{point}),
	}, table)
}

func runFamily(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	name := "spi"
	if len(args) > 0 {
		name = args[0]
	}
	m, err := flow.ModelByName(name, cfg.Kappa)
	if err != nil {
		return err
	}
	if _, ok := m.(flow.Blended); ok {
		return fmt.Errorf("family supports hem and spi, got %s", name)
	}

	diameters := cfg.Diameters()
	fam, err := r.Family(ctx, m, cfg.TemperatureGrid(), float64(cfg.ChamberPressure()), cfg.Geometry(), diameters)
	if err != nil {
		return err
	}
	if _, ok := m.(flow.SPI); ok {
		env, err := r.CriticalEnvelope(float64(cfg.ChamberPressure()), cfg.Geometry(), diameters)
		if err != nil {
			log.WithError(err).Warn("critical envelope unavailable")
		} else {
			fam.Members = append(fam.Members, env)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T (C)\tD_TARGET (mm)\tMDOT_MAX (kg/s)")
	for _, mem := range fam.Members {
		p, err := flow.FindDesignDiameter(mem.Curve, cfg.TargetMassFlow)
		if err != nil {
			return err
		}
		_, hi := mem.Curve.At(mem.Curve.Len() - 1)
		fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\n", mem.Temperature-zeroCelsius, p.Diameter*1e3, hi)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(report.Status(fmt.Sprintf("%s family: %d curves", fam.Model, len(fam.Members)), len(fam.Failures)))
	printFailures(fam.Failures)

	table, err := storage.FamilyTable(fam)
	if err != nil {
		return err
	}
	return save(storage.RunMetadata{
		Kind:       "family",
		Substance:  cfg.Substance,
		Parameters: parameters(cfg),
		Failures:   storage.FailureRecords(fam.Failures),
	}, table)
}

func runFlux(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := r.Flux(ctx, cfg.TemperatureGrid(), float64(cfg.ChamberPressure()))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T (C)\tG (kg/m2/s)")
	for i := range s.Temperatures {
		fmt.Fprintf(w, "%.2f\t%.1f\n", s.Temperatures[i]-zeroCelsius, s.Flux[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFailures(s.Failures)

	return save(storage.RunMetadata{
		Kind:       "flux",
		Substance:  cfg.Substance,
		Parameters: parameters(cfg),
		Failures:   storage.FailureRecords(s.Failures),
	}, storage.FluxTable(s))
}

func runTable(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	g, err := r.DesignTable(ctx, cfg.Scenario(), cfg.TemperatureGrid(), cfg.TableOrifices)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T (C)\tN\tHEM (mm)\tSPI (mm)\tNHNE (mm)")
	for _, c := range g.Cells {
		if !c.OK {
			fmt.Fprintf(w, "%.2f\t%d\t-\t-\t-\n", c.Temperature-zeroCelsius, c.Orifices)
			continue
		}
		fmt.Fprintf(w, "%.2f\t%d\t%.4f\t%.4f\t%.4f\n", c.Temperature-zeroCelsius, c.Orifices,
			c.Points[0].Diameter*1e3, c.Points[1].Diameter*1e3, c.Points[2].Diameter*1e3)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printFailures(g.Failures)

	return save(storage.RunMetadata{
		Kind:       "table",
		Substance:  cfg.Substance,
		Parameters: parameters(cfg),
		Failures:   storage.FailureRecords(g.Failures),
	}, storage.GridTable(g))
}

func runDome(cmd *cobra.Command, args []string) error {
	r, err := phaseRunner(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	d, err := phase.NewDome(ctx, r, domePoints)
	if err != nil {
		return err
	}
	fmt.Println(report.Critical(r.Substance, d.Critical))
	fmt.Println(report.Status(fmt.Sprintf("dome: %d samples, %s, %s", d.Len(),
		report.Range(d.Temperatures, 1, zeroCelsius, "°C"),
		report.Range(d.Pressures, 1e-5, 0, "bar")), len(d.Failures)))
	printFailures(d.Failures)

	return save(storage.RunMetadata{
		Kind:      "dome",
		Substance: r.Substance,
		Parameters: map[string]float64{
			"critical_temperature_k": d.Critical.Temperature,
			"critical_pressure_bar":  d.Critical.Pressure * 1e-5,
		},
		Failures: storage.FailureRecords(d.Failures),
	}, storage.DomeTable(d))
}

func runIsobar(cmd *cobra.Command, args []string) error {
	r, err := phaseRunner(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	l, err := phase.NewIsobar(ctx, r, isoPressure*1e5, phase.DefaultIsobarTemperatures(linePoints))
	if err != nil {
		return err
	}
	printLine(l)
	return save(storage.RunMetadata{
		Kind:       "isobar",
		Substance:  r.Substance,
		Parameters: map[string]float64{"pressure_bar": isoPressure},
		Failures:   storage.FailureRecords(l.Failures),
	}, storage.LineTable(l))
}

func runIsotherm(cmd *cobra.Command, args []string) error {
	r, err := phaseRunner(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	l, err := phase.NewIsotherm(ctx, r, isoTemp+zeroCelsius, phase.DefaultIsothermPressures(linePoints))
	if err != nil {
		return err
	}
	printLine(l)
	return save(storage.RunMetadata{
		Kind:       "isotherm",
		Substance:  r.Substance,
		Parameters: map[string]float64{"temperature_c": isoTemp},
		Failures:   storage.FailureRecords(l.Failures),
	}, storage.LineTable(l))
}

func printLine(l *phase.Line) {
	msg := fmt.Sprintf("%s: %d samples", l.Kind, l.Len())
	fmt.Println(report.Status(msg, len(l.Failures)))
	if m := l.Saturation; m != nil {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SAT T (C)\tP (bar)\tRHO_L\tRHO_V\tH_L (kJ/kg)\tH_V (kJ/kg)")
		fmt.Fprintf(w, "%.2f\t%.3f\t%.1f\t%.2f\t%.2f\t%.2f\n",
			m.Temperature-zeroCelsius, m.Pressure*1e-5, m.LiquidDensity, m.VapourDensity,
			m.LiquidEnthalpy*1e-3, m.VapourEnthalpy*1e-3)
		w.Flush()
	} else {
		fmt.Println(report.Subtle.Render("does not cross the saturation dome"))
	}
	printFailures(l.Failures)
}

func runCritical(cmd *cobra.Command, args []string) error {
	src := fluid.Default()
	cp, err := src.CriticalPoint(substance)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, src.Substances())
	}
	fmt.Println(report.Critical(substance, cp))
	return nil
}
