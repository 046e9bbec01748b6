package vaultconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileJSON(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := `{"root": "/data/myproj", "debounce_ms": 500, "checkpoint_retain": 5}`
	if err := os.WriteFile(filepath.Join(profileDir, "myproj.profile.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := LoadProfile("myproj", SearchPath{profileDir})
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Root != "/data/myproj" || p.DebounceMS != 500 || p.CheckpointRetain != 5 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestLoadProfileTOML(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := "root = \"/data/other\"\ndebounce_ms = 250\n"
	if err := os.WriteFile(filepath.Join(profileDir, "other.profile.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := LoadProfile("other", SearchPath{profileDir})
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Root != "/data/other" || p.DebounceMS != 250 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestLoadProfileNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadProfile("missing", SearchPath{dir}); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestProfileOverlay(t *testing.T) {
	base := Default()
	p := &Profile{CheckpointRetain: 20}
	merged := p.Overlay(base)
	if merged.CheckpointRetain != 20 {
		t.Errorf("expected overlay to apply retain override, got %d", merged.CheckpointRetain)
	}
	if merged.Debounce != base.Debounce {
		t.Errorf("expected debounce to remain default when profile doesn't set it")
	}
}
