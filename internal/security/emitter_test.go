package security

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Write(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memorySink) snapshot() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func TestEmitterDeliversAndStops(t *testing.T) {
	sink := &memorySink{}
	em := NewEmitter([]Sink{sink}, 16, 2, zap.NewNop())
	em.Start()

	for i := 0; i < 5; i++ {
		em.Emit(NewBlockEvent("analyze", "off_topic", 0.9, "req", time.Millisecond, 100))
	}
	em.Stop()

	if got := len(sink.snapshot()); got != 5 {
		t.Errorf("delivered %d events, want 5", got)
	}
	if !sink.closed {
		t.Error("sink not closed on stop")
	}

	// Emitting after stop is a quiet no-op.
	em.Emit(NewBlockEvent("analyze", "off_topic", 0.9, "req", time.Millisecond, 100))
	if got := len(sink.snapshot()); got != 5 {
		t.Errorf("event accepted after stop: %d", got)
	}
}

func TestEmitterFullQueueDoesNotBlock(t *testing.T) {
	// No workers started, so the queue fills and extra events are dropped.
	em := NewEmitter([]Sink{&memorySink{}}, 2, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			em.Emit(NewBlockEvent("analyze", "jailbreak", 0.9, "req", time.Millisecond, 100))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
}

func TestFileSinkWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "security.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	first := NewBlockEvent("analyze", "prompt_injection", 0.85, "req-1", 40*time.Millisecond, 321)
	second := NewBlockEvent("analyze", "content_moderation", 0.92, "req-2", 55*time.Millisecond, 87)
	for _, ev := range []Event{first, second} {
		if err := sink.Write(context.Background(), ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid json: %v", err)
		}
		lines = append(lines, ev)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].CheckKind != "prompt_injection" || lines[1].CheckKind != "content_moderation" {
		t.Errorf("events out of order: %s, %s", lines[0].CheckKind, lines[1].CheckKind)
	}
}
