package classfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadResolutionCacheMissingFileIsEmpty(t *testing.T) {
	rc, err := LoadResolutionCache(filepath.Join(t.TempDir(), "does-not-exist.cbor"))
	if err != nil {
		t.Fatalf("LoadResolutionCache: %v", err)
	}
	if len(rc.Hints) != 0 {
		t.Fatalf("Hints = %v, want empty for a missing cache file", rc.Hints)
	}
}

func TestRecordThenLookupRoundTrips(t *testing.T) {
	rc := &ResolutionCache{}
	rc.Record("Derived", 3, "Base")

	target, ok := rc.Lookup("Derived", 3)
	if !ok || target != "Base" {
		t.Fatalf("Lookup(Derived, 3) = (%q, %v), want (Base, true)", target, ok)
	}

	if _, ok := rc.Lookup("Derived", 4); ok {
		t.Fatal("Lookup on an unrecorded (class, index) pair should miss")
	}
	if _, ok := rc.Lookup("Other", 3); ok {
		t.Fatal("Lookup should key on class name, not index alone")
	}
}

func TestRecordIsAppendOnly(t *testing.T) {
	rc := &ResolutionCache{}
	rc.Record("Derived", 0, "Base")
	rc.Record("Other", 1, "Other")

	if len(rc.Hints) != 2 {
		t.Fatalf("len(Hints) = %d, want 2 after two distinct records", len(rc.Hints))
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescache.cbor")

	rc := &ResolutionCache{}
	rc.Record("Derived", 0, "Base")
	rc.Record("Other", 2, "Other")

	if err := rc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadResolutionCache(path)
	if err != nil {
		t.Fatalf("LoadResolutionCache: %v", err)
	}
	if len(loaded.Hints) != 2 {
		t.Fatalf("len(Hints) = %d, want 2", len(loaded.Hints))
	}
	if target, ok := loaded.Lookup("Derived", 0); !ok || target != "Base" {
		t.Fatalf("loaded Lookup(Derived, 0) = (%q, %v), want (Base, true)", target, ok)
	}
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescache.cbor")

	first := &ResolutionCache{}
	first.Record("A", 0, "A")
	if err := first.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := &ResolutionCache{}
	second.Record("B", 1, "B")
	if err := second.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadResolutionCache(path)
	if err != nil {
		t.Fatalf("LoadResolutionCache: %v", err)
	}
	if len(loaded.Hints) != 1 {
		t.Fatalf("len(Hints) = %d, want 1 after overwrite", len(loaded.Hints))
	}
	if _, ok := loaded.Lookup("A", 0); ok {
		t.Fatal("the first cache's hints should not survive an overwrite")
	}
}

func TestLoadResolutionCacheRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescache.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0xff, 0xff}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadResolutionCache(path); err == nil {
		t.Fatal("expected an error decoding a corrupt CBOR cache file")
	}
}
