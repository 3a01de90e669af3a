package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// DesignRecord is a design point in engineering units.
type DesignRecord struct {
	Model      string  `json:"model"`
	Target     float64 `json:"target_kg_s"`
	DiameterMM float64 `json:"diameter_mm"`
	MassFlow   float64 `json:"mass_flow_kg_s"`
	Deviation  float64 `json:"deviation_kg_s"`
}

// FailureRecord is a skipped sample.
type FailureRecord struct {
	Index int     `json:"index"`
	Param float64 `json:"param"`
	Kind  string  `json:"kind"`
	Error string  `json:"error"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Substance  string             `json:"substance"`
	Timestamp  time.Time          `json:"timestamp"`
	Parameters map[string]float64 `json:"parameters"`
	Designs    []DesignRecord     `json:"designs,omitempty"`
	Failures   []FailureRecord    `json:"failures,omitempty"`
	Tables     []string           `json:"tables"`
}

// Save writes meta and every table under a new run directory and returns
// the run id. Tables are stored as <name>.csv.
func (s *Store) Save(meta RunMetadata, tables ...Table) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Kind, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Tables = meta.Tables[:0]
	for _, t := range tables {
		meta.Tables = append(meta.Tables, t.Name)
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	for _, t := range tables {
		if err := writeTableFile(filepath.Join(runDir, t.Name+".csv"), t); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeTableFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, t)
}

// List returns the saved runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads one table of a run. Unparseable cells are read as NaN.
func (s *Store) LoadTable(runID, name string) (Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, err
	}

	t := Table{Name: name}
	if len(records) == 0 {
		return t, nil
	}
	t.Columns = records[0]

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				v = nan
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadTables reads every table listed in the run metadata.
func (s *Store) LoadTables(runID string) (*RunMetadata, []Table, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tables := make([]Table, 0, len(meta.Tables))
	for _, name := range meta.Tables {
		t, err := s.LoadTable(runID, name)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, t)
	}
	return meta, tables, nil
}
