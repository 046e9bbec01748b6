package vault

import (
	"encoding/json"
	"time"
)

// EngineVersion and SchemaVersion are stamped into every project's
// version.json and checkpoint manifest (spec.md §4.7, and the
// checkpoint-manifest enrichment this implementation adds beyond the
// original spec — see SPEC_FULL.md §5).
const (
	EngineVersion = "1.0.0"
	SchemaVersion = 1
)

// VersionMetadata is the contents of a project's version.json (spec.md
// §3 "Version metadata": `{engine_version, schema_version, project_id,
// created_at}`). It records the engine and schema versions that created
// a project (a reopen keeps the existing values), so a future engine build can detect a
// forward-incompatible store before attempting to read it. CreatedAt is
// stamped once, on first initialization, and carried forward unchanged
// on every reopen.
type VersionMetadata struct {
	EngineVersion string    `json:"engine_version"`
	SchemaVersion int       `json:"schema_version"`
	ProjectID     string    `json:"project_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func writeVersionFile(fs FS, path string, meta VersionMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return newSerializationFault("write_version", err)
	}
	tmp := path + ".tmp"
	if err := fs.SyncFile(tmp, data, 0o644); err != nil {
		return newIOFault("write_version", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		fs.Remove(tmp)
		return newIOFault("write_version", path, err)
	}
	return nil
}

func readVersionFile(fs FS, path string) (VersionMetadata, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return VersionMetadata{}, newIOFault("read_version", path, err)
	}
	var meta VersionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return VersionMetadata{}, newIntegrityFault(path, err)
	}
	return meta, nil
}
