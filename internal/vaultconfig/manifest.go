package vaultconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Profile bundles the engine options a project wants to launch with, so
// vaultctl can load one by name instead of repeating flags (the dual
// JSON/TOML loading pattern mirrors the teacher's formula loader at
// internal/meow/loader.go).
type Profile struct {
	Root             string `json:"root" toml:"root"`
	DebounceMS       int    `json:"debounce_ms" toml:"debounce_ms"`
	CheckpointRetain int    `json:"checkpoint_retain" toml:"checkpoint_retain"`
}

// SearchPath is an ordered list of directories to search for profile
// files; earlier entries take priority.
type SearchPath []string

// DefaultSearchPath returns the two-tier search path (highest priority
// first): the profiles directory under configDir, then
// ~/.vault/profiles.
func DefaultSearchPath(configDir string) SearchPath {
	var path SearchPath
	path = append(path, filepath.Join(configDir, "profiles"))
	if home, err := os.UserHomeDir(); err == nil {
		path = append(path, filepath.Join(home, ".vault", "profiles"))
	}
	return path
}

// LoadProfile searches path for <name>.profile.json or
// <name>.profile.toml, in that priority order within each directory, and
// parses the first match. The file extension determines which parser
// runs.
func LoadProfile(name string, path SearchPath) (*Profile, error) {
	extensions := []string{".profile.json", ".profile.toml"}

	for _, dir := range path {
		for _, ext := range extensions {
			filePath := filepath.Join(dir, name+ext)
			data, err := os.ReadFile(filePath)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, fmt.Errorf("reading profile %s: %w", filePath, err)
			}

			p := &Profile{}
			if strings.HasSuffix(filePath, ".profile.json") {
				if err := json.Unmarshal(data, p); err != nil {
					return nil, fmt.Errorf("parsing JSON profile %s: %w", filePath, err)
				}
			} else {
				if err := toml.Unmarshal(data, p); err != nil {
					return nil, fmt.Errorf("parsing TOML profile %s: %w", filePath, err)
				}
			}
			return p, nil
		}
	}

	return nil, fmt.Errorf("profile %q not found in search path: %s", name, strings.Join(path, ", "))
}

// Overlay applies any non-zero field of p onto v, returning the merged
// result. A profile wins over the flat store's resolved defaults.
func (p *Profile) Overlay(v Values) Values {
	if p == nil {
		return v
	}
	if p.Root != "" {
		v.Root = p.Root
	}
	if p.DebounceMS > 0 {
		v.Debounce = msToDuration(p.DebounceMS)
	}
	if p.CheckpointRetain > 0 {
		v.CheckpointRetain = p.CheckpointRetain
	}
	return v
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
