package vault

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// manifestName is the fixed name of the metadata file written into every
// checkpoint archive (spec.md §4.5).
const manifestName = "_manifest.json"

// CheckpointManifest describes a checkpoint archive's contents
// (spec.md §3 "Checkpoint archive": `{label, notes, created_at,
// shard_names[]}`). The engine/schema version fields are the
// supplemented addition from SPEC_FULL.md §5; they are recorded only, and
// Restore does not compare them against the running build.
type CheckpointManifest struct {
	Label         string    `json:"label"`
	Notes         string    `json:"notes"`
	ProjectID     string    `json:"project_id"`
	CreatedAt     time.Time `json:"created_at"`
	ShardNames    []string  `json:"shard_names"`
	EngineVersion string    `json:"engine_version"`
	SchemaVersion int       `json:"schema_version"`
}

// CheckpointInfo is the summary CheckpointManager.List returns per
// archive, without requiring the caller to open and parse each one.
type CheckpointInfo struct {
	FileName string
	Manifest CheckpointManifest
}

// CheckpointManager creates, lists, and restores zip checkpoint archives
// of a project's chunks directory (spec.md §4.5), and prunes archives
// beyond the configured retention count.
type CheckpointManager struct {
	layout    *Layout
	fs        FS
	shard     *ShardIO
	retention int
}

// NewCheckpointManager builds a CheckpointManager. retention <= 0 means
// unlimited retention.
func NewCheckpointManager(layout *Layout, fs FS, shard *ShardIO, retention int) *CheckpointManager {
	return &CheckpointManager{layout: layout, fs: fs, shard: shard, retention: retention}
}

// Create snapshots every chunk currently in the chunks and chunks_bak
// directories into a new zip archive under the checkpoints directory,
// named from label and a UTC timestamp with one-second resolution, so
// repeated labels collide only within the same second, in which case the
// later archive replaces the earlier one. It prunes older checkpoints
// beyond the retention count afterward.
func (c *CheckpointManager) Create(label, notes string, now time.Time) (string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	shardNames, err := c.archiveDir(zw, c.layout.ChunksDir, "chunks")
	if err != nil {
		zw.Close()
		return "", err
	}
	if _, err := c.archiveDir(zw, c.layout.BackupDir, "chunks_bak"); err != nil {
		zw.Close()
		return "", err
	}

	manifest := CheckpointManifest{
		Label:         sanitizeLabel(label),
		Notes:         notes,
		ProjectID:     c.layout.ProjectID,
		CreatedAt:     now,
		ShardNames:    shardNames,
		EngineVersion: EngineVersion,
		SchemaVersion: SchemaVersion,
	}
	mdata, merr := json.MarshalIndent(manifest, "", "  ")
	if merr != nil {
		zw.Close()
		return "", newCheckpointFault("create", merr)
	}
	mw, werr := zw.Create(manifestName)
	if werr != nil {
		zw.Close()
		return "", newCheckpointFault("create", werr)
	}
	if _, werr := mw.Write(mdata); werr != nil {
		zw.Close()
		return "", newCheckpointFault("create", werr)
	}

	if err := zw.Close(); err != nil {
		return "", newCheckpointFault("create", err)
	}

	fileName := fmt.Sprintf("checkpoint_%s_%s.zip", manifest.Label, now.UTC().Format("20060102_150405"))
	path := filepath.Join(c.layout.CheckpointsDir, fileName)
	if err := c.fs.SyncFile(path, buf.Bytes(), 0o644); err != nil {
		return "", newCheckpointFault("create", err)
	}

	if err := c.prune(); err != nil {
		return fileName, err
	}
	return fileName, nil
}

// archiveDir writes every *.json/*.bak file in dir into zw under the
// top-level archiveDir directory (spec.md §6 "Zip internal layout: top-
// level directories chunks/ and chunks_bak/"), returning the shard names
// of the *.json files it wrote (extension stripped); *.bak files are
// archived but not named in the result.
func (c *CheckpointManager) archiveDir(zw *zip.Writer, dir, archiveDir string) ([]string, error) {
	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newCheckpointFault("create", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".json") && !strings.HasSuffix(e.Name(), ".bak")) {
			continue
		}
		data, rerr := c.fs.ReadFile(filepath.Join(dir, e.Name()))
		if rerr != nil {
			return nil, newCheckpointFault("create", rerr)
		}
		w, werr := zw.Create(archiveDir + "/" + e.Name())
		if werr != nil {
			return nil, newCheckpointFault("create", werr)
		}
		if _, werr := w.Write(data); werr != nil {
			return nil, newCheckpointFault("create", werr)
		}
		if strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return names, nil
}

// List returns every checkpoint in the checkpoints directory, newest
// first, with its manifest parsed.
func (c *CheckpointManager) List() ([]CheckpointInfo, error) {
	entries, err := c.fs.ReadDir(c.layout.CheckpointsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newCheckpointFault("list", err)
	}

	var infos []CheckpointInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		path := filepath.Join(c.layout.CheckpointsDir, e.Name())
		data, rerr := c.fs.ReadFile(path)
		if rerr != nil {
			continue
		}
		manifest, merr := readManifestFromZip(data)
		if merr != nil {
			continue
		}
		infos = append(infos, CheckpointInfo{FileName: e.Name(), Manifest: manifest})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Manifest.CreatedAt.After(infos[j].Manifest.CreatedAt)
	})
	return infos, nil
}

// Restore replaces the project's current chunks and backups with the
// contents of the named checkpoint archive: every entry under the
// archive's top-level chunks/ and chunks_bak/ directories is extracted,
// and anything left on disk that isn't in the archive is removed, so the
// post-restore state matches the archive exactly (spec.md §4.5 "restore
// is a full replace, not a merge").
func (c *CheckpointManager) Restore(fileName string) error {
	path := filepath.Join(c.layout.CheckpointsDir, fileName)
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return newCheckpointFault("restore", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return newCheckpointFault("restore", err)
	}
	if _, err := readManifestFromZip(data); err != nil {
		return newCheckpointFault("restore", err)
	}

	restoredChunks := make(map[string]bool)
	restoredBackups := make(map[string]bool)
	for _, f := range zr.File {
		var destDir string
		var restored map[string]bool
		switch {
		case strings.HasPrefix(f.Name, "chunks/"):
			destDir, restored = c.layout.ChunksDir, restoredChunks
		case strings.HasPrefix(f.Name, "chunks_bak/"):
			destDir, restored = c.layout.BackupDir, restoredBackups
		default:
			continue
		}
		base := filepath.Base(f.Name)

		rc, err := f.Open()
		if err != nil {
			return newCheckpointFault("restore", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return newCheckpointFault("restore", err)
		}
		if err := c.fs.SyncFile(filepath.Join(destDir, base), content, 0o644); err != nil {
			return newCheckpointFault("restore", err)
		}
		restored[base] = true
	}

	if err := c.removeUnrestored(c.layout.ChunksDir, ".json", restoredChunks); err != nil {
		return err
	}
	if err := c.removeUnrestored(c.layout.BackupDir, ".bak", restoredBackups); err != nil {
		return err
	}
	return nil
}

// removeUnrestored deletes every file in dir with the given suffix whose
// base name isn't a key in restored, so a restore leaves no stale entry
// the archive didn't itself provide.
func (c *CheckpointManager) removeUnrestored(dir, suffix string, restored map[string]bool) error {
	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newCheckpointFault("restore", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) || restored[e.Name()] {
			continue
		}
		if err := c.fs.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return newCheckpointFault("restore", err)
		}
	}
	return nil
}

// prune deletes the oldest checkpoints beyond the retention count.
func (c *CheckpointManager) prune() error {
	if c.retention <= 0 {
		return nil
	}
	infos, err := c.List()
	if err != nil {
		return err
	}
	if len(infos) <= c.retention {
		return nil
	}
	for _, info := range infos[c.retention:] {
		path := filepath.Join(c.layout.CheckpointsDir, info.FileName)
		if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return newCheckpointFault("prune", err)
		}
	}
	return nil
}

func readManifestFromZip(data []byte) (CheckpointManifest, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return CheckpointManifest{}, err
	}
	for _, f := range zr.File {
		if f.Name != manifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return CheckpointManifest{}, err
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return CheckpointManifest{}, err
		}
		var m CheckpointManifest
		if err := json.Unmarshal(content, &m); err != nil {
			return CheckpointManifest{}, err
		}
		return m, nil
	}
	return CheckpointManifest{}, fmt.Errorf("missing %s", manifestName)
}
