package vault

import (
	"sync"
	"testing"
	"time"
)

func TestBufferDebounceCollapsesRepeatedStages(t *testing.T) {
	var mu sync.Mutex
	var writes []string

	buf := NewBuffer(20*time.Millisecond, func(name string, payload *Value) error {
		mu.Lock()
		writes = append(writes, name)
		mu.Unlock()
		return nil
	}, nil)

	v1, _ := FromMap(map[string]interface{}{"n": 1})
	v2, _ := FromMap(map[string]interface{}{"n": 2})
	v3, _ := FromMap(map[string]interface{}{"n": 3})

	buf.Stage("notes", &v1)
	buf.Stage("notes", &v2)
	buf.Stage("notes", &v3)

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(writes) != 1 {
		t.Fatalf("expected exactly one debounced write, got %d: %v", len(writes), writes)
	}
}

func TestBufferForceSyncFlushesImmediately(t *testing.T) {
	var flushed []string
	buf := NewBuffer(time.Hour, func(name string, payload *Value) error {
		flushed = append(flushed, name)
		return nil
	}, nil)

	v, _ := FromMap(map[string]interface{}{"x": true})
	buf.Stage("a", &v)
	buf.Stage("b", &v)

	if err := buf.ForceSync(); err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if len(flushed) != 2 {
		t.Fatalf("expected both chunks flushed, got %v", flushed)
	}
	if len(buf.Pending()) != 0 {
		t.Fatalf("expected no pending chunks after ForceSync, got %v", buf.Pending())
	}
}

func TestBufferForceSyncWaitsForInFlightFlush(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	buf := NewBuffer(time.Millisecond, func(name string, payload *Value) error {
		close(started)
		<-release
		return nil
	}, nil)

	v, _ := FromMap(map[string]interface{}{"x": 1})
	buf.Stage("slow", &v)

	<-started // the debounce timer's flush is now running

	done := make(chan struct{})
	go func() {
		buf.ForceSync()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("ForceSync returned before the in-flight flush finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	<-done
}

func TestBufferForceSyncFiresOnSyncOnceForWholeBatch(t *testing.T) {
	var syncCount int
	sinks := &Sinks{OnSync: func() { syncCount++ }}

	buf := NewBuffer(time.Hour, func(name string, payload *Value) error {
		return nil
	}, sinks)

	v, _ := FromMap(map[string]interface{}{"x": 1})
	buf.Stage("a", &v)
	buf.Stage("b", &v)
	buf.Stage("c", &v)

	if err := buf.ForceSync(); err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if syncCount != 1 {
		t.Fatalf("expected on_sync to fire exactly once per force_sync regardless of chunk count, got %d", syncCount)
	}

	// A force_sync with nothing staged wrote no shard, so on_sync must not
	// fire again.
	if err := buf.ForceSync(); err != nil {
		t.Fatalf("ForceSync (empty): %v", err)
	}
	if syncCount != 1 {
		t.Fatalf("expected on_sync not to fire for an empty force_sync, got %d", syncCount)
	}
}

func TestBufferSurfacesFlushErrorViaFaultSink(t *testing.T) {
	var faulted string
	sinks := &Sinks{OnFault: func(chunk string, err error) { faulted = chunk }}

	buf := NewBuffer(time.Hour, func(name string, payload *Value) error {
		return newIOFault("flush", name, nil)
	}, sinks)

	v, _ := FromMap(map[string]interface{}{"x": 1})
	buf.Stage("broken", &v)

	if err := buf.ForceSync(); err == nil {
		t.Fatal("expected ForceSync to surface the flush error")
	}
	if faulted != "broken" {
		t.Fatalf("expected fault sink to fire for 'broken', got %q", faulted)
	}
}
