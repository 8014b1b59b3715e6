// internal/results/store.go
//
// Optional sqlite mirror of the result stream. The TSV file remains the
// source of truth; the database exists so finished tournaments can be
// queried without re-parsing the stream. Rows are keyed by the run ID so
// several runs can share one database file.

package results

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	run_id    TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	iteration TEXT NOT NULL,
	scenario  TEXT NOT NULL,
	agent_a   TEXT NOT NULL,
	agent_b   TEXT NOT NULL,
	elapsed   TEXT NOT NULL,
	winner    TEXT NOT NULL,
	crashed   TEXT NOT NULL,
	timed_out TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Store mirrors classified match records into a sqlite database.
type Store struct {
	db    *sql.DB
	runID string
	seq   int
}

// OpenStore opens (or creates) the database at path and ensures the
// schema exists.
func OpenStore(ctx context.Context, path, runID string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("results: ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("results: create schema: %w", err)
	}
	return &Store{db: db, runID: runID}, nil
}

// Observe inserts one record. Wire it as a TrackingWriter observer.
func (s *Store) Observe(r Record) error {
	s.seq++
	_, err := s.db.Exec(`
INSERT INTO matches (run_id, seq, iteration, scenario, agent_a, agent_b, elapsed, winner, crashed, timed_out)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.runID, s.seq, r.Iteration, r.Scenario, r.AgentA, r.AgentB, r.Elapsed, r.Winner, r.Crashed, r.TimedOut)
	if err != nil {
		return fmt.Errorf("results: insert match: %w", err)
	}
	return nil
}

// Count returns how many records this run has mirrored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE run_id = ?`, s.runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("results: count matches: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
