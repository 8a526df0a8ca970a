package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/san-kum/musclesim/internal/sim"
)

type DirStore struct {
	baseDir string
}

func NewDirStore(baseDir string) *DirStore {
	return &DirStore{baseDir: baseDir}
}

func (s *DirStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *DirStore) Close() error { return nil }

func (s *DirStore) Save(meta RunMetadata, history sim.TimeHistory) (string, error) {
	stamp(&meta, history)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, "metadata.json"), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, "history.csv"), func(w io.Writer) error {
		return WriteCSV(w, history)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// writeFile creates path, runs fill and reports the Close error so a failed
// flush is not lost.
func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *DirStore) List() ([]RunMetadata, error) {
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *DirStore) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *DirStore) LoadHistory(runID string) (sim.TimeHistory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

var csvHeader = []string{"time", "theta", "omega", "force", "length", "activation", "muscle_torque", "gravity_torque", "at_limit"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes history with full float precision so ReadCSV restores it exactly.
func WriteCSV(out io.Writer, history sim.TimeHistory) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range history {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Theta),
			formatFloat(s.Omega),
			formatFloat(s.Force),
			formatFloat(s.Length),
			formatFloat(s.Activation),
			formatFloat(s.MuscleTorque),
			formatFloat(s.GravityTorque),
			strconv.FormatBool(s.AtLimit),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadCSV(in io.Reader) (sim.TimeHistory, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return sim.TimeHistory{}, nil
	}

	history := make(sim.TimeHistory, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [8]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, csvHeader[j], err)
			}
			vals[j] = v
		}
		atLimit, err := strconv.ParseBool(record[8])
		if err != nil {
			return nil, fmt.Errorf("row %d column at_limit: %w", i+1, err)
		}

		history = append(history, sim.Sample{
			Time:          vals[0],
			Theta:         vals[1],
			Omega:         vals[2],
			Force:         vals[3],
			Length:        vals[4],
			Activation:    vals[5],
			MuscleTorque:  vals[6],
			GravityTorque: vals[7],
			AtLimit:       atLimit,
		})
	}

	return history, nil
}
