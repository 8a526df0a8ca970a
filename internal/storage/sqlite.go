package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/musclesim/internal/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	dt          REAL NOT NULL,
	duration    REAL NOT NULL,
	steps       INTEGER NOT NULL,
	schedule    TEXT NOT NULL,
	muscle_json TEXT NOT NULL,
	joint_json  TEXT NOT NULL,
	metrics_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	run_id         TEXT NOT NULL,
	step           INTEGER NOT NULL,
	t              REAL NOT NULL,
	theta          REAL NOT NULL,
	omega          REAL NOT NULL,
	force          REAL NOT NULL,
	length         REAL NOT NULL,
	activation     REAL NOT NULL,
	muscle_torque  REAL NOT NULL,
	gravity_torque REAL NOT NULL,
	at_limit       INTEGER NOT NULL,
	PRIMARY KEY (run_id, step),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteDSN applies the pragmas on every pooled connection, not only the
// one that happens to run a PRAGMA statement.
func sqliteDSN(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + dbPath + "?" + q.Encode()
}

// SQLiteStore keeps runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(meta RunMetadata, history sim.TimeHistory) (string, error) {
	stamp(&meta, history)

	muscleJSON, err := json.Marshal(meta.Muscle)
	if err != nil {
		return "", fmt.Errorf("marshal muscle: %w", err)
	}
	jointJSON, err := json.Marshal(meta.Joint)
	if err != nil {
		return "", fmt.Errorf("marshal joint: %w", err)
	}
	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, name, created_at, dt, duration, steps, schedule, muscle_json, joint_json, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UTC().Format(timeLayout), meta.Dt, meta.Duration,
		meta.Steps, meta.Schedule, string(muscleJSON), string(jointJSON), string(metricsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO samples (run_id, step, t, theta, omega, force, length, activation, muscle_torque, gravity_torque, at_limit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for i, smp := range history {
		_, err := stmt.Exec(meta.ID, i, smp.Time, smp.Theta, smp.Omega, smp.Force, smp.Length,
			smp.Activation, smp.MuscleTorque, smp.GravityTorque, smp.AtLimit)
		if err != nil {
			return "", fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return meta.ID, nil
}

const runColumns = `run_id, name, created_at, dt, duration, steps, schedule, muscle_json, joint_json, metrics_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunMetadata, error) {
	var (
		meta                            RunMetadata
		createdAt                       string
		muscleJSON, jointJSON, metricsJ string
	)
	err := row.Scan(&meta.ID, &meta.Name, &createdAt, &meta.Dt, &meta.Duration, &meta.Steps,
		&meta.Schedule, &muscleJSON, &jointJSON, &metricsJ)
	if err != nil {
		return RunMetadata{}, err
	}

	meta.Timestamp, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return RunMetadata{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(muscleJSON), &meta.Muscle); err != nil {
		return RunMetadata{}, fmt.Errorf("unmarshal muscle: %w", err)
	}
	if err := json.Unmarshal([]byte(jointJSON), &meta.Joint); err != nil {
		return RunMetadata{}, fmt.Errorf("unmarshal joint: %w", err)
	}
	if err := json.Unmarshal([]byte(metricsJ), &meta.Metrics); err != nil {
		return RunMetadata{}, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return meta, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadHistory(runID string) (sim.TimeHistory, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT t, theta, omega, force, length, activation, muscle_torque, gravity_torque, at_limit
		 FROM samples WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	history := make(sim.TimeHistory, 0)
	for rows.Next() {
		var smp sim.Sample
		if err := rows.Scan(&smp.Time, &smp.Theta, &smp.Omega, &smp.Force, &smp.Length,
			&smp.Activation, &smp.MuscleTorque, &smp.GravityTorque, &smp.AtLimit); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		history = append(history, smp)
	}
	return history, rows.Err()
}
