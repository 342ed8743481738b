package guardrails

import "time"

// CheckKind identifies one automated classifier run against input text.
type CheckKind string

const (
	CheckPromptInjection CheckKind = "prompt_injection"
	CheckJailbreak       CheckKind = "jailbreak"
	CheckOffTopic        CheckKind = "off_topic"
	CheckModeration      CheckKind = "content_moderation"
)

// AllChecks is the full check set in its canonical order.
var AllChecks = []CheckKind{
	CheckPromptInjection,
	CheckJailbreak,
	CheckOffTopic,
	CheckModeration,
}

func ValidCheckKind(k CheckKind) bool {
	for _, known := range AllChecks {
		if k == known {
			return true
		}
	}
	return false
}

const DefaultBlockThreshold = 0.8

// Config drives which checks run and when a failed check blocks. It is an
// immutable per-endpoint value, never ambient state.
type Config struct {
	// Enabled lists the checks to run, in tie-break priority order.
	Enabled []CheckKind
	// BlockThreshold is the confidence at or above which a failed check
	// blocks the request.
	BlockThreshold float64
	// AllowedTopics scope the off-topic check; empty means the endpoint
	// default ("job descriptions and hiring").
	AllowedTopics []string
	// CheckTimeout bounds each individual classifier call.
	CheckTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:        append([]CheckKind(nil), AllChecks...),
		BlockThreshold: DefaultBlockThreshold,
		CheckTimeout:   10 * time.Second,
	}
}

// CheckResult is the verdict of a single classifier. A failed check is only
// authoritative for blocking once its confidence is compared to the
// threshold; below it, the result is advisory.
type CheckResult struct {
	Kind       CheckKind `json:"kind"`
	Passed     bool      `json:"passed"`
	Confidence float64   `json:"confidence"`
	Detail     string    `json:"detail,omitempty"`
}

// ValidationResult aggregates all check results for one input. Results holds
// exactly one entry per enabled check, in config order.
type ValidationResult struct {
	Passed    bool          `json:"passed"`
	Results   []CheckResult `json:"results"`
	BlockedBy CheckKind     `json:"blocked_by,omitempty"`
	Message   string        `json:"message,omitempty"`
}
