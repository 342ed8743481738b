package session

import (
	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/validation"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
)

// MaxHistoryEntries caps the history list; inserting into a full list
// evicts the oldest entry.
const MaxHistoryEntries = 10

// AnalysisError is the error surfaced to the user. Local errors never
// involved the network.
type AnalysisError struct {
	Code    models.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Local   bool             `json:"local"`
}

// State is the full client-side request lifecycle state. It is treated as
// immutable: Reduce returns a new value and never mutates its input.
type State struct {
	Status          Status                  `json:"status"`
	Input           string                  `json:"input"`
	Current         *models.MatchAssessment `json:"current,omitempty"`
	Err             *AnalysisError          `json:"error,omitempty"`
	LastFailedInput string                  `json:"last_failed_input,omitempty"`
	History         []models.HistoryEntry   `json:"history"`
	ActiveRequestID string                  `json:"-"`
}

// Action is one state transition input.
type Action interface{ isAction() }

// Submit starts a new analysis. Empty input is rejected locally with no
// network involvement.
type Submit struct {
	RequestID string
	Input     string
}

// SubmitSucceeded completes the active request with an assessment.
type SubmitSucceeded struct {
	RequestID  string
	Assessment models.MatchAssessment
}

// SubmitFailed completes the active request with an error.
type SubmitFailed struct {
	RequestID string
	Code      models.ErrorCode
	Message   string
}

// Retry resubmits the last failed input, if any.
type Retry struct {
	RequestID string
}

// LoadHistoryItem restores a past assessment into the current view.
type LoadHistoryItem struct {
	ID string
}

// ClearHistory empties the history list.
type ClearHistory struct{}

// Rehydrate installs history recovered from persisted storage.
type Rehydrate struct {
	History []models.HistoryEntry
}

func (Submit) isAction()          {}
func (SubmitSucceeded) isAction() {}
func (SubmitFailed) isAction()    {}
func (Retry) isAction()           {}
func (LoadHistoryItem) isAction() {}
func (ClearHistory) isAction()    {}
func (Rehydrate) isAction()       {}

// Reduce applies one action to the state and returns the next state. It is
// a pure function; responses for requests other than the active one are
// ignored so a stale in-flight result can never clobber a newer submission.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case Submit:
		return reduceSubmit(s, a.RequestID, a.Input)

	case Retry:
		if s.LastFailedInput == "" {
			return s
		}
		return reduceSubmit(s, a.RequestID, s.LastFailedInput)

	case SubmitSucceeded:
		if s.Status != StatusAnalyzing || a.RequestID != s.ActiveRequestID {
			return s
		}
		next := s
		next.Status = StatusIdle
		assessment := a.Assessment
		next.Current = &assessment
		next.Err = nil
		next.LastFailedInput = ""
		next.ActiveRequestID = ""
		next.History = prependCapped(s.History, models.HistoryEntry{
			Assessment: assessment,
			Input:      s.Input,
		})
		return next

	case SubmitFailed:
		if s.Status != StatusAnalyzing || a.RequestID != s.ActiveRequestID {
			return s
		}
		// Input and any prior result are preserved so the user can retry
		// without retyping.
		next := s
		next.Status = StatusIdle
		next.Err = &AnalysisError{Code: a.Code, Message: a.Message}
		next.LastFailedInput = s.Input
		next.ActiveRequestID = ""
		return next

	case LoadHistoryItem:
		for _, entry := range s.History {
			if entry.Assessment.ID == a.ID {
				next := s
				assessment := entry.Assessment
				next.Current = &assessment
				next.Input = entry.Input
				next.Err = nil
				return next
			}
		}
		return s

	case ClearHistory:
		next := s
		next.History = nil
		return next

	case Rehydrate:
		next := s
		next.History = append([]models.HistoryEntry(nil), a.History...)
		return next

	default:
		return s
	}
}

func reduceSubmit(s State, requestID, input string) State {
	if s.Status == StatusAnalyzing {
		return s
	}
	if check := validation.CheckInput(input); !check.OK {
		next := s
		next.Err = &AnalysisError{
			Code:    check.Code,
			Message: check.Message,
			Local:   true,
		}
		return next
	}

	next := s
	next.Status = StatusAnalyzing
	next.Input = input
	next.Err = nil
	next.ActiveRequestID = requestID
	return next
}

func prependCapped(history []models.HistoryEntry, entry models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	out = append(out, history...)
	if len(out) > MaxHistoryEntries {
		out = out[:MaxHistoryEntries]
	}
	return out
}
