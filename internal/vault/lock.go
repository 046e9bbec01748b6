package vault

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LockState is the result of a lock acquisition attempt (spec.md §4.2).
type LockState int

const (
	LockAcquired LockState = iota
	LockHeldByLive
	LockStale
)

// LockManager owns the project's exclusive PID lock at path.
type LockManager struct {
	path string
	fs   FS
}

// NewLockManager creates a LockManager for the lock file at path.
func NewLockManager(path string, fs FS) *LockManager {
	return &LockManager{path: path, fs: fs}
}

// TryAcquire reads the lock file, if any, and classifies the result. If no
// lock file exists it claims the lock immediately and returns LockAcquired.
// Otherwise it consults alive to tell a live owner from a stale one, and
// never writes on that path — reclaiming a stale lock is a separate,
// explicit step (ReclaimAndAcquire) so callers can log/confirm first.
func (m *LockManager) TryAcquire(alive LivenessFunc) (state LockState, heldPID int, err error) {
	data, rerr := m.fs.ReadFile(m.path)
	if rerr != nil {
		if os.IsNotExist(rerr) {
			if err := m.claim(); err != nil {
				return 0, 0, err
			}
			return LockAcquired, os.Getpid(), nil
		}
		return 0, 0, newIOFault("read_lock", m.path, rerr)
	}

	pid, perr := parsePID(data)
	if perr != nil {
		// A corrupt lock file can't correspond to any live process; treat
		// it the same as a stale one so it can be reclaimed.
		return LockStale, 0, nil
	}
	if alive == nil {
		alive = DefaultLiveness
	}
	if alive(pid) {
		return LockHeldByLive, pid, nil
	}
	return LockStale, pid, nil
}

// ReclaimAndAcquire removes a stale lock and claims it for this process.
func (m *LockManager) ReclaimAndAcquire() error {
	if err := m.fs.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return newIOFault("reclaim_lock", m.path, err)
	}
	return m.claim()
}

// claim writes the current PID to the lock file atomically (write-to-tmp +
// rename) and re-reads it to mitigate the TOCTOU race spec.md §4.2
// describes: on filesystems without O_EXCL semantics two simultaneous
// claims could otherwise both believe they won.
func (m *LockManager) claim() error {
	tmp := m.path + ".tmp"
	pid := os.Getpid()
	if err := m.fs.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return newIOFault("write_lock", m.path, err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		m.fs.Remove(tmp)
		return newIOFault("write_lock", m.path, err)
	}

	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		return newIOFault("verify_lock", m.path, err)
	}
	got, perr := parsePID(data)
	if perr != nil || got != pid {
		return newIOFault("verify_lock", m.path, fmt.Errorf("lock ownership race: wrote pid %d, read back %q", pid, strings.TrimSpace(string(data))))
	}
	return nil
}

// Release deletes the lock file only if it currently records this
// process's PID (the defensive check spec.md §4.2 mandates).
func (m *LockManager) Release() error {
	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return newIOFault("read_lock", m.path, err)
	}
	pid, perr := parsePID(data)
	if perr != nil || pid != os.Getpid() {
		return nil
	}
	if err := m.fs.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return newIOFault("release_lock", m.path, err)
	}
	return nil
}

func parsePID(data []byte) (int, error) {
	s := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return pid, nil
}
