package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// crashingFS wraps osFS and fails, writing nothing, any SyncFile call that
// would take the cumulative bytes written past crashAfterBytes, simulating a process death partway
// through the atomic write pipeline (spec.md §4.3.1). Grounded on the
// teacher's filesystem.CrashingFS (filesystem/crash_test.go), adapted to
// this package's FS interface.
type crashingFS struct {
	osFS
	crashAfterBytes int
	written         int
}

var errSimulatedCrash = errors.New("simulated crash during write")

func (c *crashingFS) SyncFile(path string, data []byte, perm os.FileMode) error {
	if c.crashAfterBytes > 0 && c.written+len(data) > c.crashAfterBytes {
		c.written += len(data)
		return errSimulatedCrash
	}
	c.written += len(data)
	return c.osFS.SyncFile(path, data, perm)
}

// tamperingFS writes different bytes than it was asked to for any path
// ending in .tmp, simulating on-disk corruption between the write and the
// readback step of persist_chunk (spec.md §4.3.1 step 4).
type tamperingFS struct {
	osFS
}

func (t *tamperingFS) SyncFile(path string, data []byte, perm os.FileMode) error {
	if filepath.Ext(path) == ".tmp" {
		return t.osFS.SyncFile(path, []byte(`{"tampered":true}`), perm)
	}
	return t.osFS.SyncFile(path, data, perm)
}

// TestPersistChunkRejectsTmpReadbackMismatch verifies that persist_chunk
// refuses to promote a tmp file whose readback doesn't structurally equal
// the staged payload, and leaves no .tmp or promoted primary behind.
func TestPersistChunkRejectsTmpReadbackMismatch(t *testing.T) {
	root := t.TempDir()
	layout, err := ResolveLayout(root, "proj1")
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	fs := &tamperingFS{}
	if err := layout.EnsureDirs(fs); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	shard := NewShardIO(layout, fs)

	v, _ := FromMap(map[string]interface{}{"hello": "world"})
	err = shard.PersistChunk("notes", &v)
	if GetKindOrFail(t, err) != KindIntegrityFault {
		t.Fatalf("expected KindIntegrityFault, got %v", err)
	}

	jsonPath, _, tmpPath, perr := layout.ChunkPaths("notes")
	if perr != nil {
		t.Fatalf("ChunkPaths: %v", perr)
	}
	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Error("primary should not have been promoted from a mismatched tmp")
	}
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("tmp file should have been unlinked after the readback mismatch")
	}
}

// TestCrashDuringPersistLeavesNoOrphan verifies that a crash while writing
// the tmp file never promotes a partial write: the primary is untouched
// and SweepOrphans cleans up whatever tmp bytes did land.
func TestCrashDuringPersistLeavesNoOrphan(t *testing.T) {
	root := t.TempDir()
	layout, err := ResolveLayout(root, "proj1")
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	fs := &crashingFS{crashAfterBytes: 5}
	if err := layout.EnsureDirs(fs); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	shard := NewShardIO(layout, fs)

	v, _ := FromMap(map[string]interface{}{"long": "enough data to exceed the crash threshold"})
	if err := shard.PersistChunk("notes", &v); err == nil {
		t.Fatal("expected PersistChunk to fail under simulated crash")
	}

	if _, err := shard.FetchChunk("notes"); GetKindOrFail(t, err) != KindNotFound {
		t.Fatalf("expected no primary to have been promoted, got %v", err)
	}

	removed, err := shard.SweepOrphans()
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	_ = removed // may or may not contain a partial tmp depending on crash point

	jsonPath, _, tmpPath, err := layout.ChunkPaths("notes")
	if err != nil {
		t.Fatalf("ChunkPaths: %v", err)
	}
	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Error("primary should not exist after a crashed write")
	}
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("tmp file should have been swept")
	}
}
