package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TeamSunride/SunFireInjectors/internal/report"
	"github.com/TeamSunride/SunFireInjectors/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSUBSTANCE\tTIME\tTABLES\tSKIPPED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Substance,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Tables),
			len(run.Failures),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, tables, err := st.LoadTables(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.Header.Render(meta.ID))
	fmt.Printf("%s %s\n", report.Label.Render("kind:"), meta.Kind)
	fmt.Printf("%s %s\n", report.Label.Render("substance:"), meta.Substance)
	fmt.Printf("%s %s\n", report.Label.Render("time:"), meta.Timestamp.Format("2006-01-02 15:04:05"))

	keys := make([]string, 0, len(meta.Parameters))
	for k := range meta.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%g\n", k, meta.Parameters[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Designs) > 0 {
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tD (mm)\tMDOT (kg/s)\tDEVIATION")
		for _, d := range meta.Designs {
			fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%+.4f\n", d.Model, d.DiameterMM, d.MassFlow, d.Deviation)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if len(meta.Failures) > 0 {
		fmt.Println(report.Warn.Render(fmt.Sprintf("%d samples skipped", len(meta.Failures))))
	}
	for _, t := range tables {
		fmt.Printf("%s %d rows x %d columns\n", report.Value.Render(t.Name), len(t.Rows), len(t.Columns))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, tables, err := st.LoadTables(args[0])
	if err != nil {
		return err
	}
	for i, t := range tables {
		if len(tables) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("# %s\n", t.Name)
		}
		if err := storage.WriteCSV(os.Stdout, t); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, tables, err := st.LoadTables(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, meta, tables...)
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, tables, err := st.LoadTables(args[0])
	if err != nil {
		return err
	}
	path := meta.ID + ".xlsx"
	if len(args) > 1 {
		path = args[1]
	}
	if err := storage.WriteXLSX(path, tables...); err != nil {
		return err
	}
	fmt.Printf("exported %d tables to %s\n", len(tables), path)
	return nil
}
