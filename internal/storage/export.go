package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/tealeg/xlsx"
)

var nan = math.NaN()

// Table is a named block of numeric columns.
type Table struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run    *RunMetadata `json:"run,omitempty"`
	Tables []jsonTable  `json:"tables"`
}

// jsonTable replaces non-finite cells with null, which JSON cannot encode.
type jsonTable struct {
	Name    string       `json:"name"`
	Columns []string     `json:"columns"`
	Rows    [][]*float64 `json:"rows"`
}

func toJSONTable(t Table) jsonTable {
	out := jsonTable{Name: t.Name, Columns: t.Columns, Rows: make([][]*float64, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = make([]*float64, len(row))
		for j := range row {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				out.Rows[i][j] = &v
			}
		}
	}
	return out
}

func WriteJSON(w io.Writer, meta *RunMetadata, tables ...Table) error {
	data := ExportData{Run: meta, Tables: make([]jsonTable, len(tables))}
	for i, t := range tables {
		data.Tables[i] = toJSONTable(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// maxSheetName is the Excel limit on worksheet names.
const maxSheetName = 31

// WriteXLSX saves the tables to path, one worksheet per table.
func WriteXLSX(path string, tables ...Table) error {
	file := xlsx.NewFile()
	for _, t := range tables {
		name := t.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		sheet, err := file.AddSheet(name)
		if err != nil {
			return err
		}
		header := sheet.AddRow()
		for _, c := range t.Columns {
			header.AddCell().SetString(c)
		}
		for _, row := range t.Rows {
			r := sheet.AddRow()
			for _, v := range row {
				cell := r.AddCell()
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				cell.SetFloat(v)
			}
		}
	}
	return file.Save(path)
}

// ReadXLSX loads every worksheet of path back as tables. Empty cells read
// as NaN.
func ReadXLSX(path string) ([]Table, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(file.Sheets))
	for _, sheet := range file.Sheets {
		t := Table{Name: sheet.Name}
		for i, row := range sheet.Rows {
			if i == 0 {
				for _, c := range row.Cells {
					t.Columns = append(t.Columns, c.Value)
				}
				continue
			}
			vals := make([]float64, len(t.Columns))
			for j := range vals {
				vals[j] = nan
				if j < len(row.Cells) {
					if v, err := row.Cells[j].Float(); err == nil {
						vals[j] = v
					}
				}
			}
			t.Rows = append(t.Rows, vals)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
