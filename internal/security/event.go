package security

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the security-relevant outcomes worth auditing.
type EventType string

const (
	EventGuardrailBlock EventType = "guardrail_block"
)

// Event is one structured security log entry. It never carries the original
// input text, only non-identifying metadata about it.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"event_type"`
	Endpoint    string    `json:"endpoint"`
	CheckKind   string    `json:"check_kind"`
	Confidence  float64   `json:"confidence"`
	Blocked     bool      `json:"blocked"`
	RequestID   string    `json:"request_id"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
	InputLength int       `json:"input_length,omitempty"`
}

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	ipv4Re    = regexp.MustCompile(`\b\d{1,3}(\.\d{1,3}){3}\b`)
	controlRe = regexp.MustCompile("[\r\n\x00]")
)

// Sanitize strips newline, carriage-return and null bytes from a string
// field and masks email and IP address patterns, so a crafted value can
// neither forge log lines nor leak identifying data.
func Sanitize(s string) string {
	s = controlRe.ReplaceAllString(s, " ")
	s = emailRe.ReplaceAllString(s, "[email]")
	s = ipv4Re.ReplaceAllString(s, "[ip]")
	return strings.TrimSpace(s)
}

// AnonymizeRequestID derives a stable, non-reversible request identifier
// from caller metadata. Raw IPs or user agents never reach the log.
func AnonymizeRequestID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// NewBlockEvent assembles a sanitized guardrail-block entry.
func NewBlockEvent(endpoint, checkKind string, confidence float64, requestID string, duration time.Duration, inputLength int) Event {
	return Event{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Type:        EventGuardrailBlock,
		Endpoint:    Sanitize(endpoint),
		CheckKind:   Sanitize(checkKind),
		Confidence:  confidence,
		Blocked:     true,
		RequestID:   Sanitize(requestID),
		DurationMs:  duration.Milliseconds(),
		InputLength: inputLength,
	}
}
