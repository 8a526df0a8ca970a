// Package storage persists finished runs.
//
// Two backends share the [Backend] interface: [DirStore] writes one directory
// per run holding metadata.json and history.csv, [SQLiteStore] keeps runs and
// samples in a single SQLite database.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/musclesim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Schedule  string             `json:"schedule"`
	Muscle    map[string]float64 `json:"muscle"`
	Joint     map[string]float64 `json:"joint"`
	Metrics   map[string]float64 `json:"metrics"`
}

type Backend interface {
	Init() error
	Save(meta RunMetadata, history sim.TimeHistory) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadHistory(runID string) (sim.TimeHistory, error)
	Close() error
}

// Open selects a backend: "dir" stores under path as a directory tree,
// "sqlite" opens path as a database file.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case "", "dir":
		return NewDirStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", kind)
	}
}

func newRunID(name string) string {
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s_%s", name, strings.SplitN(uuid.New().String(), "-", 2)[0])
}

// stamp fills the fields Save derives from the history.
func stamp(meta *RunMetadata, history sim.TimeHistory) {
	if meta.ID == "" {
		meta.ID = newRunID(meta.Name)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Steps = len(history)
}
