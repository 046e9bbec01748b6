package vault

import (
	"path/filepath"
	"regexp"
	"strings"
)

// nameCharset matches the charset allowed for chunk names and sanitized
// checkpoint labels (spec.md §3 "Chunk (shard)").
var nameCharset = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Layout resolves every path the engine touches for one (root, projectID)
// pair. It is a pure function of its inputs (spec.md §4.1): building one
// never touches disk.
type Layout struct {
	Root           string
	ProjectID      string
	ProjectDir     string
	ChunksDir      string
	BackupDir      string
	CheckpointsDir string
	LockFile       string
	VersionFile    string
}

// ResolveLayout derives the canonical paths for a project. It rejects a
// projectID containing path separators or a leading dot (spec.md §4.1).
func ResolveLayout(root, projectID string) (*Layout, error) {
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}
	projectDir := filepath.Join(root, projectID)
	return &Layout{
		Root:           root,
		ProjectID:      projectID,
		ProjectDir:     projectDir,
		ChunksDir:      filepath.Join(projectDir, "chunks"),
		BackupDir:      filepath.Join(projectDir, "chunks_bak"),
		CheckpointsDir: filepath.Join(projectDir, "checkpoints"),
		LockFile:       filepath.Join(projectDir, ".lock"),
		VersionFile:    filepath.Join(projectDir, "version.json"),
	}, nil
}

func validateProjectID(id string) error {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, "/\\") {
		return newInvalidNameErr("project_id", id)
	}
	return nil
}

// ValidateChunkName checks a chunk name against the shard charset
// (spec.md §3): [A-Za-z0-9_.-]+.
func ValidateChunkName(name string) error {
	if name == "" || !nameCharset.MatchString(name) {
		return newInvalidNameErr("chunk_name", name)
	}
	return nil
}

// EnsureDirs creates the project's directory tree if missing. Idempotent.
func (l *Layout) EnsureDirs(fs FS) error {
	for _, dir := range []string{l.ProjectDir, l.ChunksDir, l.BackupDir, l.CheckpointsDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return newIOFault("mkdir", dir, err)
		}
	}
	return nil
}

// ChunkPaths returns the primary, backup, and in-flight paths for name.
func (l *Layout) ChunkPaths(name string) (jsonPath, bakPath, tmpPath string, err error) {
	if verr := ValidateChunkName(name); verr != nil {
		return "", "", "", verr
	}
	return filepath.Join(l.ChunksDir, name+".json"),
		filepath.Join(l.BackupDir, name+".bak"),
		filepath.Join(l.ChunksDir, name+".tmp"),
		nil
}

// sanitizeLabel restricts a checkpoint label to the shard charset, the way
// §4.5 requires ("sanitized to the chunk-name charset").
func sanitizeLabel(label string) string {
	if label == "" {
		return "checkpoint"
	}
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "checkpoint"
	}
	return out
}
