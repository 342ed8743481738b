package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobfit/analyzer/internal/guardrails"
	"jobfit/analyzer/internal/models"
)

const testInput = "Senior Go engineer wanted: build and operate backend services for a logistics platform."

const testModelResponse = `{
	"confidence": "high",
	"alignments": [
		{"title": "Go services", "description": "d", "evidence": [{"type": "experience", "title": "Backend role", "excerpt": "years of service work"}]}
	],
	"gaps": [
		{"title": "Logistics domain", "description": "d", "severity": "minor"}
	],
	"recommendation": {"type": "proceed", "summary": "s", "rationale": "r"}
}`

// stubGemini satisfies GeminiService without any network involvement.
type stubGemini struct {
	response    string
	err         error
	delay       time.Duration
	streamCalls int
}

func (s *stubGemini) GenerateText(_ context.Context, _ string, _ float32) (string, error) {
	return s.response, s.err
}

func (s *stubGemini) GenerateTextStream(ctx context.Context, _ string, _ float32, onDelta func(string)) (string, error) {
	s.streamCalls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	// Deliver the response in a few chunks like the real stream does.
	for _, part := range splitChunks(s.response, 4) {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		onDelta(part)
	}
	return s.response, nil
}

func splitChunks(s string, n int) []string {
	runes := []rune(s)
	size := (len(runes) + n - 1) / n
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

type stubPortfolio struct{ context string }

func (s *stubPortfolio) Reload() error   { return nil }
func (s *stubPortfolio) Context() string { return s.context }
func (s *stubPortfolio) Facts() []Fact   { return nil }

// passClassifier approves everything; blockClassifier fails one kind.
type passClassifier struct{}

func (passClassifier) Classify(_ context.Context, kind guardrails.CheckKind, _ string) (guardrails.CheckResult, error) {
	return guardrails.CheckResult{Kind: kind, Passed: true}, nil
}

type blockClassifier struct{ kind guardrails.CheckKind }

func (b blockClassifier) Classify(_ context.Context, kind guardrails.CheckKind, _ string) (guardrails.CheckResult, error) {
	if kind == b.kind {
		return guardrails.CheckResult{Kind: kind, Passed: false, Confidence: 0.95}, nil
	}
	return guardrails.CheckResult{Kind: kind, Passed: true}, nil
}

func newTestAnalyzer(gemini GeminiService, classifier guardrails.Classifier, timeout time.Duration) *Analyzer {
	guard := guardrails.NewValidator(guardrails.DefaultConfig(), classifier, nil, zap.NewNop())
	return NewAnalyzer(guard, gemini, &stubPortfolio{context: "portfolio facts"}, timeout, 100, zap.NewNop())
}

func collect(t *testing.T, events <-chan models.StreamEvent) []models.StreamEvent {
	t.Helper()
	var out []models.StreamEvent
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("timed out draining the event stream")
		}
	}
}

func terminalOf(t *testing.T, events []models.StreamEvent) models.StreamEvent {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	last := events[len(events)-1]
	if !last.Terminal() {
		t.Fatalf("last event %+v is not terminal", last)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Terminal() {
			t.Fatalf("terminal event %+v before the end of the stream", ev)
		}
	}
	return last
}

func TestAnalyzeHappyPath(t *testing.T) {
	gemini := &stubGemini{response: testModelResponse}
	a := newTestAnalyzer(gemini, passClassifier{}, time.Minute)

	events := collect(t, a.Analyze(context.Background(), testInput, "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Type != models.EventComplete {
		t.Fatalf("terminal = %+v, want complete", last)
	}
	if last.Assessment == nil || !models.ValidAssessment(last.Assessment) {
		t.Fatal("complete event carries no valid assessment")
	}

	// Progress starts at preparing and percent never decreases.
	if events[0].Phase != models.PhasePreparing || events[0].Percent != 5 {
		t.Errorf("first event = %+v", events[0])
	}
	lastPercent := -1
	for _, ev := range events[:len(events)-1] {
		if ev.Type != models.EventProgress {
			t.Errorf("non-progress event before terminal: %+v", ev)
		}
		if ev.Percent < lastPercent {
			t.Errorf("percent went backwards: %d after %d", ev.Percent, lastPercent)
		}
		lastPercent = ev.Percent
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	gemini := &stubGemini{response: testModelResponse}
	a := newTestAnalyzer(gemini, passClassifier{}, time.Minute)

	events := collect(t, a.Analyze(context.Background(), "   ", "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Code != models.CodeEmptyJobDescription {
		t.Errorf("code = %s", last.Code)
	}
	if gemini.streamCalls != 0 {
		t.Error("generation ran for rejected input")
	}
}

func TestAnalyzeBlockedInput(t *testing.T) {
	gemini := &stubGemini{response: testModelResponse}
	a := newTestAnalyzer(gemini, blockClassifier{kind: guardrails.CheckPromptInjection}, time.Minute)

	events := collect(t, a.Analyze(context.Background(), testInput, "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Code != models.CodeGuardrailBlocked {
		t.Fatalf("code = %s, want %s", last.Code, models.CodeGuardrailBlocked)
	}
	if gemini.streamCalls != 0 {
		t.Error("generation ran for a blocked request")
	}
	lower := strings.ToLower(last.Message)
	for _, word := range []string{"injection", "jailbreak", "detected", "blocked", "security", "attack", "malicious"} {
		if strings.Contains(lower, word) {
			t.Errorf("refusal message contains %q: %q", word, last.Message)
		}
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	gemini := &stubGemini{response: testModelResponse, delay: 500 * time.Millisecond}
	a := newTestAnalyzer(gemini, passClassifier{}, 50*time.Millisecond)

	events := collect(t, a.Analyze(context.Background(), testInput, "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Code != models.CodeTimeout {
		t.Errorf("code = %s, want %s", last.Code, models.CodeTimeout)
	}
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	gemini := &stubGemini{err: errors.New("googleapi: quota exceeded")}
	a := newTestAnalyzer(gemini, passClassifier{}, time.Minute)

	events := collect(t, a.Analyze(context.Background(), testInput, "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Code != models.CodeLLMError {
		t.Fatalf("code = %s, want %s", last.Code, models.CodeLLMError)
	}
	if strings.Contains(last.Message, "googleapi") {
		t.Errorf("provider error text leaked to the user: %q", last.Message)
	}
}

func TestAnalyzeUnparsableResponse(t *testing.T) {
	gemini := &stubGemini{response: "the model rambled instead of returning json"}
	a := newTestAnalyzer(gemini, passClassifier{}, time.Minute)

	events := collect(t, a.Analyze(context.Background(), testInput, "analyze", "req-1"))
	last := terminalOf(t, events)

	if last.Code != models.CodeParseError {
		t.Errorf("code = %s, want %s", last.Code, models.CodeParseError)
	}
}

func TestAnalyzeCancelledCallerGetsNoTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gemini := &stubGemini{response: testModelResponse, delay: time.Second}
	a := newTestAnalyzer(gemini, passClassifier{}, time.Minute)

	events := a.Analyze(ctx, testInput, "analyze", "req-1")
	// Drain the early progress, then walk away.
	<-events
	cancel()

	collected := collect(t, events)
	for _, ev := range collected {
		if ev.Terminal() {
			t.Errorf("terminal event after caller cancellation: %+v", ev)
		}
	}
}

func TestGenerationProgress(t *testing.T) {
	a := newTestAnalyzer(&stubGemini{}, passClassifier{}, time.Minute)

	tests := []struct {
		received int
		phase    models.Phase
	}{
		{received: 10, phase: models.PhaseFindingAlign},
		{received: 50, phase: models.PhaseIdentifyingGaps},
		{received: 90, phase: models.PhaseRecommending},
		{received: 10_000, phase: models.PhaseRecommending},
	}
	for _, tc := range tests {
		phase, percent := a.generationProgress(tc.received)
		if phase != tc.phase {
			t.Errorf("received=%d: phase = %s, want %s", tc.received, phase, tc.phase)
		}
		if percent < 20 || percent > 80 {
			t.Errorf("received=%d: percent %d outside [20,80]", tc.received, percent)
		}
	}
}
