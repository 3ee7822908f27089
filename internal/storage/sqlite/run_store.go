package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run describes one replay of a recorded drive through the filter.
type Run struct {
	RunID        string `json:"run_id"`
	MapPath      string `json:"map_path"`
	NumParticles int    `json:"num_particles"`
	Seed         int64  `json:"seed"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// StepRecord is the persisted outcome of one filter timestep: the best
// estimate, its weight, the matched landmark ids (JSON array), and the
// error against ground truth when available.
type StepRecord struct {
	RunID        string  `json:"run_id"`
	Step         int     `json:"step"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Theta        float64 `json:"theta"`
	Weight       float64 `json:"weight"`
	Associations string  `json:"associations,omitempty"`
	ErrX         float64 `json:"err_x"`
	ErrY         float64 `json:"err_y"`
	ErrTheta     float64 `json:"err_theta"`
}

// RunStore provides persistence for localization runs.
type RunStore struct {
	db *sql.DB
}

// Open opens (or creates) a run database at path with the standard
// pragmas applied.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return db, nil
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InitSchema creates the run tables if they do not exist.
func (s *RunStore) InitSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS mcl_runs (
			run_id        TEXT PRIMARY KEY,
			map_path      TEXT NOT NULL,
			num_particles INTEGER NOT NULL,
			seed          INTEGER NOT NULL,
			notes         TEXT,
			created_at    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS mcl_steps (
			run_id       TEXT NOT NULL REFERENCES mcl_runs(run_id),
			step         INTEGER NOT NULL,
			x            REAL NOT NULL,
			y            REAL NOT NULL,
			theta        REAL NOT NULL,
			weight       REAL NOT NULL,
			associations TEXT,
			err_x        REAL NOT NULL DEFAULT 0,
			err_y        REAL NOT NULL DEFAULT 0,
			err_theta    REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, step)
		);
	`)
	if err != nil {
		return fmt.Errorf("create run schema: %w", err)
	}
	return nil
}

// InsertRun persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO mcl_runs (run_id, map_path, num_particles, seed, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID, run.MapPath, run.NumParticles, run.Seed, run.Notes, run.CreatedAt,
		)
		return err
	})
}

// InsertStep persists one timestep record.
func (s *RunStore) InsertStep(rec *StepRecord) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO mcl_steps (run_id, step, x, y, theta, weight, associations, err_x, err_y, err_theta)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Step, rec.X, rec.Y, rec.Theta, rec.Weight,
			rec.Associations, rec.ErrX, rec.ErrY, rec.ErrTheta,
		)
		return err
	})
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, map_path, num_particles, seed, notes, created_at
		FROM mcl_runs WHERE run_id = ?`, runID)

	var r Run
	var notes sql.NullString
	if err := row.Scan(&r.RunID, &r.MapPath, &r.NumParticles, &r.Seed, &notes, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	r.Notes = notes.String
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, map_path, num_particles, seed, notes, created_at
		FROM mcl_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var notes sql.NullString
		if err := rows.Scan(&r.RunID, &r.MapPath, &r.NumParticles, &r.Seed, &notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Notes = notes.String
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// ListSteps returns a run's step records in step order.
func (s *RunStore) ListSteps(runID string) ([]*StepRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, step, x, y, theta, weight, associations, err_x, err_y, err_theta
		FROM mcl_steps WHERE run_id = ? ORDER BY step ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []*StepRecord
	for rows.Next() {
		var rec StepRecord
		var assoc sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Step, &rec.X, &rec.Y, &rec.Theta, &rec.Weight,
			&assoc, &rec.ErrX, &rec.ErrY, &rec.ErrTheta); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		rec.Associations = assoc.String
		steps = append(steps, &rec)
	}
	return steps, rows.Err()
}

// retryOnBusy retries fn a few times when SQLite reports lock
// contention. WAL mode plus busy_timeout handles most contention; this
// covers the remainder during concurrent tool access.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		msg := err.Error()
		if !strings.Contains(msg, "database is locked") && !strings.Contains(msg, "SQLITE_BUSY") {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}
