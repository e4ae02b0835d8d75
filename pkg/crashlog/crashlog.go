// Package crashlog persists uncaught exceptions to a small SQLite
// database, the way lib/runtime/persistence.go persists Trashtalk
// instances: open, set a busy timeout, create the table if missing, then
// plain database/sql calls from there on.
package crashlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Log is a SQLite-backed interp.CrashSink.
type Log struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) a crash log at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("crashlog: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("crashlog: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS crashes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		class_name TEXT NOT NULL,
		message TEXT NOT NULL,
		trace TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("crashlog: creating table: %w", err)
	}

	return &Log{db: db}, nil
}

// OpenDefault opens the crash log at $CLASSRUN_CRASH_DB, or
// ~/.classrun/crashes.db if unset.
func OpenDefault() (*Log, error) {
	path := os.Getenv("CLASSRUN_CRASH_DB")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("crashlog: getting home dir: %w", err)
		}
		path = filepath.Join(home, ".classrun", "crashes.db")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("crashlog: creating crash log dir: %w", err)
		}
	}
	return Open(path)
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// RecordUncaught satisfies interp.Machine's CrashSink contract.
func (l *Log) RecordUncaught(className, message, trace string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(
		"INSERT INTO crashes (class_name, message, trace) VALUES (?, ?, ?)",
		className, message, trace,
	)
	if err != nil {
		return fmt.Errorf("crashlog: recording crash: %w", err)
	}
	return nil
}

// Recent returns the most recent n crash class names, most recent first,
// used by tests to assert a crash was actually recorded.
func (l *Log) Recent(n int) ([]string, error) {
	rows, err := l.db.Query("SELECT class_name FROM crashes ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("crashlog: querying recent crashes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("crashlog: scanning crash row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
