package yamlstore

import (
	"path/filepath"
	"testing"
)

func TestYAMLStoreSetGetPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Set("defaults.debounce_ms", "500"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen New: %v", err)
	}
	v, ok := s2.Get("defaults.debounce_ms")
	if !ok || v != "500" {
		t.Fatalf("expected persisted value 500, got %q (ok=%v)", v, ok)
	}
}

func TestYAMLStoreUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Set("defaults.root", "/data"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Unset("defaults.root"); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if _, ok := s.Get("defaults.root"); ok {
		t.Fatal("expected key to be gone after Unset")
	}
}

func TestYAMLStoreSetInMemoryDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetInMemory("runtime.override", "yes")
	if v, ok := s.Get("runtime.override"); !ok || v != "yes" {
		t.Fatalf("expected in-memory value visible, got %q (%v)", v, ok)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := s2.Get("runtime.override"); ok {
		t.Fatal("expected in-memory-only value to not persist")
	}
}

func TestYAMLStoreAllReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetInMemory("a", "1")
	all := s.All()
	all["a"] = "mutated"

	if v, _ := s.Get("a"); v != "1" {
		t.Fatalf("expected All() to return a copy, original mutated to %q", v)
	}
}
