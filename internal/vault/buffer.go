package vault

import (
	"sync"
	"time"
)

// flushFunc persists one staged chunk. Buffer calls this with its mutex
// released, so the callback may itself take time without blocking new
// Stage calls from being accepted (spec.md §4.4 "staging never blocks on
// disk").
type flushFunc func(name string, payload *Value) error

// Buffer is the debounced staging area in front of ShardIO.PersistChunk
// (spec.md §4.4). Staging a chunk collapses with any pending stage of the
// same name and (re)starts a debounce timer; ForceSync flushes
// immediately and waits for completion, including any write already in
// flight.
type Buffer struct {
	mu       sync.Mutex
	debounce time.Duration
	flush    flushFunc
	sinks    *Sinks

	pending  map[string]*Value
	timer    *time.Timer
	flushing bool
	// flushDone is closed and replaced each time a flush cycle completes,
	// letting ForceSync wait on an in-flight flush it didn't itself start.
	flushDone chan struct{}
}

// NewBuffer builds a Buffer that calls flush no sooner than debounce after
// the last Stage of a given chunk, or immediately on ForceSync.
func NewBuffer(debounce time.Duration, flush flushFunc, sinks *Sinks) *Buffer {
	if sinks == nil {
		sinks = NoopSinks()
	}
	return &Buffer{
		debounce:  debounce,
		flush:     flush,
		sinks:     sinks,
		pending:   make(map[string]*Value),
		flushDone: make(chan struct{}),
	}
}

// Stage records payload for name, overwriting any not-yet-flushed value
// already staged under that name, and (re)arms the debounce timer. It
// never touches disk itself.
func (b *Buffer) Stage(name string, payload *Value) {
	b.mu.Lock()
	defer b.mu.Unlock()

	staged := payload.Clone()
	b.pending[name] = &staged
	b.sinks.onStatus("staged: " + name)

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, b.fireDebounce)
}

func (b *Buffer) fireDebounce() {
	b.runFlush()
}

// ForceSync flushes every currently staged chunk synchronously, waiting
// for a flush already in progress to finish first if one is running (the
// "detach waits for in-flight write" semantics of spec.md §4.6).
func (b *Buffer) ForceSync() error {
	b.mu.Lock()
	if b.flushing {
		done := b.flushDone
		b.mu.Unlock()
		<-done
		b.mu.Lock()
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	return b.runFlush()
}

// runFlush drains the pending map and persists each entry, serialized
// against concurrent flushes by the flushing flag.
func (b *Buffer) runFlush() error {
	b.mu.Lock()
	if b.flushing {
		done := b.flushDone
		b.mu.Unlock()
		<-done
		return nil
	}
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	b.flushing = true
	batch := b.pending
	b.pending = make(map[string]*Value)
	done := b.flushDone
	b.mu.Unlock()

	var firstErr error
	wrote := false
	for name, payload := range batch {
		if err := b.flush(name, payload); err != nil {
			b.sinks.onFault(name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		wrote = true
	}

	b.mu.Lock()
	b.flushing = false
	b.flushDone = make(chan struct{})
	b.mu.Unlock()
	close(done)

	// on_sync fires exactly once per successful force_sync that actually
	// wrote at least one shard, never per chunk.
	if firstErr == nil && wrote {
		b.sinks.onSync()
	}

	return firstErr
}

// Discard clears every currently staged chunk without persisting it,
// stopping the debounce timer if one is armed. Used when a caller is
// about to replace the underlying data out from under the buffer (a
// checkpoint restore) and a pending write would otherwise clobber it.
func (b *Buffer) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = make(map[string]*Value)
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Pending reports the names currently staged but not yet flushed, for
// diagnostics (spec.md §5 "doctor"/health report).
func (b *Buffer) Pending() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.pending))
	for name := range b.pending {
		names = append(names, name)
	}
	return names
}
