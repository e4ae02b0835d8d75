package profile

import (
	"path/filepath"
	"testing"
)

func TestObserveFlushUpsertsCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.duckdb")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.Observe(0xac) // ireturn
	}
	s.Observe(0x04) // iconst_1

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var count uint64
	if err := s.db.QueryRow("SELECT count FROM opcode_counts WHERE opcode = ?", byte(0xac)).Scan(&count); err != nil {
		t.Fatalf("querying flushed count: %v", err)
	}
	if count != 3 {
		t.Fatalf("opcode_counts[0xac] = %d, want 3", count)
	}
}

func TestFlushAccumulatesAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.duckdb")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	s.Observe(0x60)
	if err := s.Flush(); err != nil {
		t.Fatalf("first Flush: %v", err)
	}

	s.Observe(0x60)
	s.Observe(0x60)
	if err := s.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}

	var count uint64
	if err := s.db.QueryRow("SELECT count FROM opcode_counts WHERE opcode = ?", byte(0x60)).Scan(&count); err != nil {
		t.Fatalf("querying accumulated count: %v", err)
	}
	if count != 3 {
		t.Fatalf("accumulated opcode_counts[0x60] = %d, want 3 (1 + 2 across two flushes)", count)
	}
}

func TestFlushWithNoObservationsIsANoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.duckdb")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush with nothing observed: %v", err)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM opcode_counts").Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if n != 0 {
		t.Fatalf("opcode_counts has %d rows, want 0 when nothing was observed", n)
	}
}

func TestCloseFlushesPendingCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.duckdb")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Observe(0x2a)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening after Close: %v", err)
	}
	defer reopened.Close()

	var count uint64
	if err := reopened.db.QueryRow("SELECT count FROM opcode_counts WHERE opcode = ?", byte(0x2a)).Scan(&count); err != nil {
		t.Fatalf("querying count persisted by Close's flush: %v", err)
	}
	if count != 1 {
		t.Fatalf("opcode_counts[0x2a] = %d, want 1", count)
	}
}
