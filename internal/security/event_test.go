package security

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizeStripsControlBytes(t *testing.T) {
	in := "first line\nsecond\rthird\x00fourth"
	got := Sanitize(in)
	if strings.ContainsAny(got, "\r\n\x00") {
		t.Errorf("control bytes survived: %q", got)
	}
}

func TestSanitizeMasksIdentifiers(t *testing.T) {
	tests := []struct{ in, want string }{
		{"contact me at jane.doe+hr@example.com please", "contact me at [email] please"},
		{"seen from 203.0.113.42 twice", "seen from [ip] twice"},
		{"nothing sensitive here", "nothing sensitive here"},
	}
	for _, tc := range tests {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAnonymizeRequestID(t *testing.T) {
	a := AnonymizeRequestID("uuid-1", "198.51.100.7", "curl/8.0")
	b := AnonymizeRequestID("uuid-1", "198.51.100.7", "curl/8.0")
	c := AnonymizeRequestID("uuid-2", "198.51.100.7", "curl/8.0")

	if a != b {
		t.Error("same parts must yield the same id")
	}
	if a == c {
		t.Error("different parts must yield different ids")
	}
	if len(a) != 16 {
		t.Errorf("id length = %d", len(a))
	}
	if strings.Contains(a, "198.51.100.7") {
		t.Error("raw ip visible in the anonymized id")
	}
}

func TestNewBlockEventNeverCarriesInputText(t *testing.T) {
	ev := NewBlockEvent("analyze", "off_topic", 0.91, "req\nid", 120*time.Millisecond, 432)

	if ev.Type != EventGuardrailBlock || !ev.Blocked {
		t.Errorf("event = %+v", ev)
	}
	if ev.ID == "" || ev.Timestamp.IsZero() {
		t.Error("event missing id or timestamp")
	}
	if strings.Contains(ev.RequestID, "\n") {
		t.Errorf("request id not sanitized: %q", ev.RequestID)
	}
	if ev.DurationMs != 120 {
		t.Errorf("duration = %d", ev.DurationMs)
	}
	if ev.InputLength != 432 {
		t.Errorf("input length = %d", ev.InputLength)
	}
}
