package vaultconfig

import (
	"strconv"
	"time"
)

// Key names used in the flat store. Grouped here so callers never
// hand-type a dotted key.
const (
	KeyDebounceMS       = "defaults.debounce_ms"
	KeyCheckpointRetain = "defaults.checkpoint_retain"
	KeyRoot             = "defaults.root"
)

// Values bundles the engine defaults in their native types, after
// resolving them from a Store (spec.md §4 "Options" maps onto these).
type Values struct {
	Debounce         time.Duration
	CheckpointRetain int
	Root             string
}

// Default returns the built-in fallback values, used for any key the
// store and its profile manifest both leave unset.
func Default() Values {
	return Values{
		Debounce:         1500 * time.Millisecond,
		CheckpointRetain: 10,
		Root:             "",
	}
}

// ApplyDefaults resolves Values from store, falling back to Default for
// any key that is absent or unparseable. Store values always win over the
// built-in defaults; they never win over a profile manifest explicitly
// passed to the caller, which is expected to overlay afterward.
func ApplyDefaults(store Store) Values {
	v := Default()
	if store == nil {
		return v
	}

	if raw, ok := store.Get(KeyDebounceMS); ok {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			v.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if raw, ok := store.Get(KeyCheckpointRetain); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			v.CheckpointRetain = n
		}
	}
	if raw, ok := store.Get(KeyRoot); ok && raw != "" {
		v.Root = raw
	}
	return v
}
