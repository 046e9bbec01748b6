package vault

import (
	"errors"
	"fmt"
)

// Kind discriminates the engine's error taxonomy (spec.md §7). It is
// deliberately a flat set of kinds rather than a type hierarchy: callers
// switch on Kind, not on Go types.
type Kind int

const (
	KindInactive Kind = iota
	KindLocked
	KindNotFound
	KindInvalidName
	KindIOFault
	KindSerializationFault
	KindIntegrityFault
	KindCorruptionUnrecoverable
	KindCheckpointFault
	KindConfirmationRequired
)

func (k Kind) String() string {
	switch k {
	case KindInactive:
		return "inactive"
	case KindLocked:
		return "locked"
	case KindNotFound:
		return "not_found"
	case KindInvalidName:
		return "invalid_name"
	case KindIOFault:
		return "io_fault"
	case KindSerializationFault:
		return "serialization_fault"
	case KindIntegrityFault:
		return "integrity_fault"
	case KindCorruptionUnrecoverable:
		return "corruption_unrecoverable"
	case KindCheckpointFault:
		return "checkpoint_fault"
	case KindConfirmationRequired:
		return "confirmation_required"
	default:
		return "unknown"
	}
}

// Error is the engine's concrete error type. Op and Path describe where the
// failure occurred; PID and Phase are only meaningful for KindLocked and
// KindCheckpointFault respectively.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	Phase string
	PID   int
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindLocked:
		return fmt.Sprintf("vault: project locked by pid %d", e.PID)
	case KindCheckpointFault:
		if e.Err != nil {
			return fmt.Sprintf("vault: checkpoint %s failed: %v", e.Phase, e.Err)
		}
		return fmt.Sprintf("vault: checkpoint %s failed", e.Phase)
	}

	msg := "vault: " + e.Kind.String()
	if e.Op != "" {
		msg += " during " + e.Op
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, vault.ErrInactive) (and friends) match by Kind,
// ignoring the Op/Path/Err fields that vary per call site.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Kind == e.Kind
}

// Sentinel errors for errors.Is comparisons. Only the Kind field is
// meaningful on these; use GetKind or errors.As to recover the full detail
// from an actual returned error.
var (
	ErrInactive            = &Error{Kind: KindInactive}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidName         = &Error{Kind: KindInvalidName}
	ErrIntegrityFault      = &Error{Kind: KindIntegrityFault}
	ErrCorruptionUnrecover = &Error{Kind: KindCorruptionUnrecoverable}
	ErrConfirmationReq     = &Error{Kind: KindConfirmationRequired}
)

func newInactiveErr() *Error { return &Error{Kind: KindInactive} }

func newLockedErr(pid int) *Error { return &Error{Kind: KindLocked, PID: pid} }

func newNotFoundErr(path string) *Error { return &Error{Kind: KindNotFound, Path: path} }

func newInvalidNameErr(op, name string) *Error {
	return &Error{Kind: KindInvalidName, Op: op, Path: name}
}

func newIOFault(op, path string, cause error) *Error {
	return &Error{Kind: KindIOFault, Op: op, Path: path, Err: cause}
}

func newSerializationFault(op string, cause error) *Error {
	return &Error{Kind: KindSerializationFault, Op: op, Err: cause}
}

func newIntegrityFault(path string, cause error) *Error {
	return &Error{Kind: KindIntegrityFault, Path: path, Err: cause}
}

func newCorruptionUnrecoverable(path string, cause error) *Error {
	return &Error{Kind: KindCorruptionUnrecoverable, Path: path, Err: cause}
}

func newCheckpointFault(phase string, cause error) *Error {
	return &Error{Kind: KindCheckpointFault, Phase: phase, Err: cause}
}

// GetKind returns the Kind of err if it (or something it wraps) is a *Error,
// and ok=false otherwise.
func GetKind(err error) (k Kind, ok bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}
