package vault

import "testing"

func TestResolveLayoutRejectsBadProjectIDs(t *testing.T) {
	cases := []string{"", ".hidden", "a/b", "a\\b"}
	for _, c := range cases {
		if _, err := ResolveLayout("/tmp/root", c); err == nil {
			t.Errorf("expected error for project id %q", c)
		}
	}
}

func TestValidateChunkName(t *testing.T) {
	if err := ValidateChunkName("notes-01.v2"); err != nil {
		t.Errorf("expected valid name to pass: %v", err)
	}
	if err := ValidateChunkName(""); err == nil {
		t.Error("expected empty name to fail")
	}
	if err := ValidateChunkName("has space"); err == nil {
		t.Error("expected name with space to fail")
	}
	if err := ValidateChunkName("../escape"); err == nil {
		t.Error("expected path traversal to fail")
	}
}

func TestChunkPaths(t *testing.T) {
	l, err := ResolveLayout("/tmp/root", "proj1")
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	jsonPath, bakPath, tmpPath, err := l.ChunkPaths("notes")
	if err != nil {
		t.Fatalf("ChunkPaths: %v", err)
	}
	if jsonPath != "/tmp/root/proj1/chunks/notes.json" {
		t.Errorf("unexpected json path: %s", jsonPath)
	}
	if bakPath != "/tmp/root/proj1/chunks_bak/notes.bak" {
		t.Errorf("unexpected backup path: %s", bakPath)
	}
	if tmpPath != "/tmp/root/proj1/chunks/notes.tmp" {
		t.Errorf("unexpected tmp path: %s", tmpPath)
	}
}

func TestSanitizeLabel(t *testing.T) {
	if got := sanitizeLabel("weekly report!"); got != "weekly_report_" {
		t.Errorf("got %q", got)
	}
	if got := sanitizeLabel(""); got != "checkpoint" {
		t.Errorf("got %q", got)
	}
}
