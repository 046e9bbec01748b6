package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures New and Open. Debounce and Retention have package
// defaults; Liveness and Sinks may be left nil to use DefaultLiveness and
// NoopSinks respectively.
type Options struct {
	Root              string
	Debounce          time.Duration
	CheckpointRetain  int
	Liveness          LivenessFunc
	DiskUsage         DiskUsageFunc
	Sinks             *Sinks
	FS                FS
}

// DefaultOptions returns the package defaults for everything but Root,
// which the caller must always supply.
func DefaultOptions(root string) Options {
	return Options{
		Root:             root,
		Debounce:         1500 * time.Millisecond,
		CheckpointRetain: 10,
	}
}

func (o Options) resolve() Options {
	if o.Debounce <= 0 {
		o.Debounce = 1500 * time.Millisecond
	}
	if o.CheckpointRetain == 0 {
		o.CheckpointRetain = 10
	}
	if o.Liveness == nil {
		o.Liveness = DefaultLiveness
	}
	if o.DiskUsage == nil {
		o.DiskUsage = DefaultDiskUsage
	}
	if o.Sinks == nil {
		o.Sinks = NoopSinks()
	}
	if o.FS == nil {
		o.FS = osFS{}
	}
	return o
}

// New creates a brand-new project under root, choosing a unique
// projectID derived from base by appending the smallest free `_N` suffix
// if base already exists (spec.md §3 "Project" invariant, §4.7 "new").
// It returns the status tag "created" when base itself was free, or
// "renamed:<newid>" when a collision forced a suffixed id.
func New(base string, opts Options) (*Engine, string, error) {
	opts = opts.resolve()
	if err := validateProjectID(base); err != nil {
		return nil, "", err
	}

	id := base
	status := "created"
	for i := 1; ; i++ {
		layout, err := ResolveLayout(opts.Root, id)
		if err != nil {
			return nil, "", err
		}
		if _, err := opts.FS.Stat(layout.ProjectDir); os.IsNotExist(err) {
			e, err := open(layout, opts, true)
			if err != nil {
				return nil, "", err
			}
			return e, status, nil
		}
		id = fmt.Sprintf("%s_%d", base, i)
		status = fmt.Sprintf("renamed:%s", id)
	}
}

// Open acquires an existing (or freshly created) project by exact
// projectID, claiming its lock or reclaiming it from a dead owner
// (spec.md §4.2). It returns a KindLocked error if the lock is held by a
// live process.
func Open(projectID string, opts Options) (*Engine, error) {
	opts = opts.resolve()
	layout, err := ResolveLayout(opts.Root, projectID)
	if err != nil {
		return nil, err
	}
	return open(layout, opts, false)
}

func open(layout *Layout, opts Options, fresh bool) (*Engine, error) {
	if err := layout.EnsureDirs(opts.FS); err != nil {
		return nil, err
	}

	lm := NewLockManager(layout.LockFile, opts.FS)
	state, heldPID, err := lm.TryAcquire(opts.Liveness)
	if err != nil {
		return nil, err
	}
	switch state {
	case LockAcquired:
		// claimed by TryAcquire already
	case LockStale:
		if err := lm.ReclaimAndAcquire(); err != nil {
			return nil, err
		}
		opts.Sinks.onStatus(fmt.Sprintf("reclaimed stale lock from pid %d", heldPID))
	case LockHeldByLive:
		return nil, newLockedErr(heldPID)
	}

	shard := NewShardIO(layout, opts.FS)
	if _, err := shard.SweepOrphans(); err != nil {
		lm.Release()
		return nil, err
	}

	meta := VersionMetadata{
		EngineVersion: EngineVersion,
		SchemaVersion: SchemaVersion,
		ProjectID:     layout.ProjectID,
		CreatedAt:     time.Now().UTC(),
	}
	if !fresh {
		if existing, err := readVersionFile(opts.FS, layout.VersionFile); err == nil {
			meta = existing
		}
	}
	if err := writeVersionFile(opts.FS, layout.VersionFile, meta); err != nil {
		lm.Release()
		return nil, err
	}

	checkpoints := NewCheckpointManager(layout, opts.FS, shard, opts.CheckpointRetain)
	gate := newLifecycleGate()

	e := &Engine{
		layout:      layout,
		fs:          opts.FS,
		lock:        lm,
		shard:       shard,
		checkpoints: checkpoints,
		gate:        gate,
		sinks:       opts.Sinks,
		version:     meta,
		diskUsage:   opts.DiskUsage,
	}
	e.buffer = NewBuffer(opts.Debounce, shard.PersistChunk, opts.Sinks)
	return e, nil
}

// ListAllProjects scans root for directories that look like projects
// (those containing a version.json file; a directory without one is
// skipped, even if it holds a .lock or chunks/) and reports their IDs
// and current lock state, without acquiring anything (spec.md §5
// "list-projects", a supplemented operation — SPEC_FULL.md §5).
func ListAllProjects(root string, alive LivenessFunc, fs FS) ([]ProjectSummary, error) {
	if fs == nil {
		fs = osFS{}
	}
	if alive == nil {
		alive = DefaultLiveness
	}

	entries, err := fs.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newIOFault("list_projects", root, err)
	}

	var summaries []ProjectSummary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		layout, err := ResolveLayout(root, e.Name())
		if err != nil {
			continue
		}
		if _, err := fs.Stat(layout.VersionFile); err != nil {
			continue
		}

		s := ProjectSummary{ProjectID: e.Name(), Locked: false}
		if data, err := fs.ReadFile(layout.LockFile); err == nil {
			if pid, perr := parsePID(data); perr == nil {
				s.Locked = alive(pid)
				s.LockPID = pid
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ProjectSummary is one entry of ListAllProjects's result.
type ProjectSummary struct {
	ProjectID string
	Locked    bool
	LockPID   int
}

// isReservedName reports whether name would collide with the engine's own
// layout entries if used as a chunk name, guarding against accidental
// shadowing of version.json et al. by a user-chosen chunk.
func isReservedName(name string) bool {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	switch base {
	case "version", "_manifest":
		return true
	default:
		return false
	}
}
