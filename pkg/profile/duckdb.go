// Package profile counts opcode dispatches into a DuckDB table, so a
// session's hot-opcode distribution can be queried with SQL after the
// fact instead of only printed as a running tally.
package profile

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// Sink is an interp.ProfileSink backed by an in-memory counter table that
// flushes to DuckDB on Close (or on demand via Flush), avoiding a
// database round trip on every single opcode dispatch.
type Sink struct {
	db *sql.DB

	mu       sync.Mutex
	counts   [256]uint64
}

// Open opens (creating if needed) a DuckDB file at path and its
// opcode_counts table.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("profile: opening database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS opcode_counts (
		opcode UTINYINT PRIMARY KEY,
		count  UBIGINT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("profile: creating table: %w", err)
	}

	return &Sink{db: db}, nil
}

// Observe satisfies interp.Machine's ProfileSink contract. Called once per
// dispatched opcode, so it must stay allocation-free and lock-cheap.
func (s *Sink) Observe(opcode byte) {
	s.mu.Lock()
	s.counts[opcode]++
	s.mu.Unlock()
}

// Flush upserts the in-memory counters into opcode_counts.
func (s *Sink) Flush() error {
	s.mu.Lock()
	snapshot := s.counts
	s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("profile: beginning flush transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO opcode_counts (opcode, count) VALUES (?, ?)
		ON CONFLICT (opcode) DO UPDATE SET count = opcode_counts.count + excluded.count`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("profile: preparing upsert: %w", err)
	}
	defer stmt.Close()

	for opcode, count := range snapshot {
		if count == 0 {
			continue
		}
		if _, err := stmt.Exec(opcode, count); err != nil {
			tx.Rollback()
			return fmt.Errorf("profile: upserting opcode %d: %w", opcode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("profile: committing flush: %w", err)
	}

	s.mu.Lock()
	for i := range s.counts {
		s.counts[i] -= snapshot[i]
	}
	s.mu.Unlock()
	return nil
}

// Close flushes pending counts and closes the database.
func (s *Sink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}
