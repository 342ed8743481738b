package models

type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Phase tags the progress events in their fixed pipeline order.
type Phase string

const (
	PhasePreparing        Phase = "preparing"
	PhaseAnalyzing        Phase = "analyzing"
	PhaseFindingAlign     Phase = "finding-alignments"
	PhaseIdentifyingGaps  Phase = "identifying-gaps"
	PhaseRecommending     Phase = "generating-recommendation"
	PhaseFinalizing       Phase = "finalizing"
)

type ErrorCode string

const (
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeEmptyJobDescription ErrorCode = "EMPTY_JOB_DESCRIPTION"
	CodeGuardrailBlocked    ErrorCode = "GUARDRAIL_BLOCKED"
	CodeTimeout             ErrorCode = "TIMEOUT"
	CodeLLMError            ErrorCode = "LLM_ERROR"
	CodeParseError          ErrorCode = "PARSE_ERROR"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// StreamEvent is one JSON-lines message on the analysis stream. Exactly one
// terminal event (complete or error) ends every stream.
type StreamEvent struct {
	Type       EventType        `json:"type"`
	Phase      Phase            `json:"phase,omitempty"`
	Message    string           `json:"message,omitempty"`
	Percent    int              `json:"percent,omitempty"`
	Assessment *MatchAssessment `json:"assessment,omitempty"`
	Code       ErrorCode        `json:"code,omitempty"`
}

func ProgressEvent(phase Phase, message string, percent int) StreamEvent {
	return StreamEvent{Type: EventProgress, Phase: phase, Message: message, Percent: percent}
}

func CompleteEvent(a *MatchAssessment) StreamEvent {
	return StreamEvent{Type: EventComplete, Assessment: a, Percent: 100}
}

func ErrorEvent(code ErrorCode, message string) StreamEvent {
	return StreamEvent{Type: EventError, Code: code, Message: message}
}

// Terminal reports whether no further events follow this one.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// AnalyzeRequest is the body of one submission.
type AnalyzeRequest struct {
	JobDescription string `json:"job_description"`
}
