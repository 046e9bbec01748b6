package vault

import (
	"errors"
	"os"
	"syscall"
)

// LivenessFunc reports whether a process with the given PID is currently
// alive on this host. The engine never assumes a specific implementation
// of this (spec.md §9 "Process-liveness") — it is supplied as a
// configuration hook so tests can inject deterministic values (spec.md §8
// scenario 4). DefaultLiveness is used when Options.Liveness is nil.
type LivenessFunc func(pid int) bool

// DefaultLiveness reports liveness by sending the null signal to pid, the
// same technique the pack's lock implementations use (see
// other_examples' gastown lock.go, whose processExists helper this
// mirrors). A nil error or EPERM means the process exists; ESRCH (wrapped
// as os.ErrProcessDone on recent Go versions) means it does not.
func DefaultLiveness(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) {
		return false
	}
	// EPERM means the process exists but we lack permission to signal it —
	// still alive. Anything else (ESRCH, etc.) means it is gone.
	return errors.Is(err, syscall.EPERM)
}
