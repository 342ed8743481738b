package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/validation"
)

// Submitter is the network side the manager drives; satisfied by
// client.Client.
type Submitter interface {
	Analyze(ctx context.Context, input string, onEvent func(models.StreamEvent)) error
}

// Manager owns the state machine and its persistence. Every dispatched
// action persists the resulting state; no other component touches the
// session store.
type Manager struct {
	mu        sync.Mutex
	state     State
	store     *Store
	submitter Submitter
	logger    *zap.Logger
}

func NewManager(store *Store, submitter Submitter, logger *zap.Logger) *Manager {
	m := &Manager{
		state:     State{Status: StatusIdle},
		store:     store,
		submitter: submitter,
		logger:    logger,
	}
	m.dispatch(Rehydrate{History: store.Load()})
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PreflightWarning returns the non-blocking quality warning for an input,
// if any.
func (m *Manager) PreflightWarning(input string) string {
	return validation.CheckInput(input).Warning
}

// Submit runs one full analysis attempt: local validation, network
// submission, and terminal-event handling. The onProgress callback receives
// each progress event; hard-length violations and empty input never reach
// the network.
func (m *Manager) Submit(ctx context.Context, input string, onProgress func(models.StreamEvent)) State {
	requestID := uuid.NewString()

	m.mu.Lock()
	m.dispatch(Submit{RequestID: requestID, Input: input})
	if m.state.Status != StatusAnalyzing || m.state.ActiveRequestID != requestID {
		defer m.mu.Unlock()
		return m.state
	}
	m.mu.Unlock()

	m.runRequest(ctx, requestID, input, onProgress)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Retry resubmits the last failed input; it does nothing when no failed
// input is recorded.
func (m *Manager) Retry(ctx context.Context, onProgress func(models.StreamEvent)) State {
	m.mu.Lock()
	input := m.state.LastFailedInput
	if input == "" {
		defer m.mu.Unlock()
		return m.state
	}

	requestID := uuid.NewString()
	m.dispatch(Retry{RequestID: requestID})
	if m.state.Status != StatusAnalyzing {
		defer m.mu.Unlock()
		return m.state
	}
	m.mu.Unlock()

	m.runRequest(ctx, requestID, input, onProgress)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) runRequest(ctx context.Context, requestID, input string, onProgress func(models.StreamEvent)) {
	var terminal *models.StreamEvent

	err := m.submitter.Analyze(ctx, input, func(ev models.StreamEvent) {
		if ev.Terminal() {
			captured := ev
			terminal = &captured
			return
		}
		if onProgress != nil {
			onProgress(ev)
		}
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil {
		// Aborted submission: whatever arrived is stale now.
		m.dispatch(SubmitFailed{
			RequestID: requestID,
			Code:      models.CodeInternalError,
			Message:   "The analysis was cancelled.",
		})
		return
	}

	switch {
	case err != nil:
		m.logger.Debug("analysis transport failed", zap.Error(err))
		m.dispatch(SubmitFailed{
			RequestID: requestID,
			Code:      models.CodeInternalError,
			Message:   "Could not reach the analysis service. Please check the server and try again.",
		})
	case terminal == nil:
		m.dispatch(SubmitFailed{
			RequestID: requestID,
			Code:      models.CodeInternalError,
			Message:   "The analysis ended unexpectedly. Please try again.",
		})
	case terminal.Type == models.EventComplete && terminal.Assessment != nil:
		m.dispatch(SubmitSucceeded{RequestID: requestID, Assessment: *terminal.Assessment})
	default:
		m.dispatch(SubmitFailed{
			RequestID: requestID,
			Code:      terminal.Code,
			Message:   terminal.Message,
		})
	}
}

// LoadHistoryItem restores a past assessment into the current view.
func (m *Manager) LoadHistoryItem(id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(LoadHistoryItem{ID: id})
	return m.state
}

// ClearHistory empties in-memory and persisted history.
func (m *Manager) ClearHistory() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(ClearHistory{})
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
	return m.state
}

// dispatch reduces the action and persists the new state. Callers must hold
// the mutex.
func (m *Manager) dispatch(action Action) {
	m.state = Reduce(m.state, action)
	if err := m.store.Save(m.state); err != nil {
		m.logger.Warn("failed to persist session", zap.Error(err))
	}
}
