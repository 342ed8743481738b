package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"jobfit/analyzer/internal/guardrails"
	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/parser"
	"jobfit/analyzer/internal/validation"
)

const (
	timeoutMessage    = "The analysis took too long and was stopped. You can retry with the same text."
	parseErrorMessage = "The analysis finished but the result could not be read. Retrying usually resolves this."
	internalMessage   = "Something went wrong while processing the request. Please try again."

	generationTemperature = 0.3
)

// Analyzer sequences validate, prompt build, streaming generation and parse
// into an ordered event stream. It holds no state across requests.
type Analyzer struct {
	guard         *guardrails.Validator
	gemini        GeminiService
	portfolio     PortfolioService
	prompts       *PromptBuilder
	timeout       time.Duration
	expectedChars int
	logger        *zap.Logger
}

func NewAnalyzer(
	guard *guardrails.Validator,
	gemini GeminiService,
	portfolio PortfolioService,
	timeout time.Duration,
	expectedChars int,
	logger *zap.Logger,
) *Analyzer {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if expectedChars <= 0 {
		expectedChars = 4000
	}
	return &Analyzer{
		guard:         guard,
		gemini:        gemini,
		portfolio:     portfolio,
		prompts:       NewPromptBuilder(),
		timeout:       timeout,
		expectedChars: expectedChars,
		logger:        logger,
	}
}

// Analyze runs the full pipeline for one submission. The returned channel
// delivers progress events in phase order, then exactly one terminal event,
// and is closed. Cancelling ctx abandons the run.
func (a *Analyzer) Analyze(ctx context.Context, input, endpoint, requestID string) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent, 16)
	go a.run(ctx, input, endpoint, requestID, events)
	return events
}

func (a *Analyzer) run(ctx context.Context, input, endpoint, requestID string, events chan<- models.StreamEvent) {
	defer close(events)

	em := &emitState{ctx: ctx, events: events}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis pipeline panicked",
				zap.String("request_id", requestID), zap.Any("panic", r))
			em.terminal(models.ErrorEvent(models.CodeInternalError, internalMessage))
		}
	}()

	em.progress(models.PhasePreparing, "Preparing the analysis", 5)

	if check := validation.CheckInput(input); !check.OK {
		em.terminal(models.ErrorEvent(check.Code, check.Message))
		return
	}

	em.progress(models.PhaseAnalyzing, "Reviewing the submission", 10)

	outcome := a.guard.Validate(ctx, input, endpoint, requestID)
	if !outcome.Passed {
		em.terminal(models.ErrorEvent(models.CodeGuardrailBlocked, outcome.Message))
		return
	}

	// One timeout spans prompt assembly and the whole generation call.
	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := a.prompts.BuildAnalysisPrompt(a.portfolio.Context(), input)
	em.progress(models.PhaseAnalyzing, "Assessing fit against the portfolio", 15)

	received := 0
	raw, err := a.gemini.GenerateTextStream(genCtx, prompt, generationTemperature, func(chunk string) {
		received += utf8.RuneCountInString(chunk)
		phase, percent := a.generationProgress(received)
		em.progress(phase, generationMessage(phase), percent)
	})
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; nobody is listening for a terminal event.
			return
		}
		if errors.Is(err, context.DeadlineExceeded) || genCtx.Err() != nil {
			em.terminal(models.ErrorEvent(models.CodeTimeout, timeoutMessage))
			return
		}
		a.logger.Warn("generation failed",
			zap.String("request_id", requestID), zap.Error(err))
		em.terminal(models.ErrorEvent(models.CodeLLMError, generationErrorMessage(err)))
		return
	}

	em.progress(models.PhaseFinalizing, "Validating the result", 95)

	result := parser.Parse(raw, input, parser.Options{})
	if !result.Success {
		a.logger.Warn("model response failed validation",
			zap.String("request_id", requestID),
			zap.String("stage", result.Err.Stage),
			zap.String("detail", result.Err.Detail),
		)
		em.terminal(models.ErrorEvent(models.CodeParseError, parseErrorMessage))
		return
	}

	em.terminal(models.CompleteEvent(result.Assessment))
}

// generationProgress maps streamed content to a phase and a percent in
// [20,80], based on how much of the expected response has arrived.
func (a *Analyzer) generationProgress(receivedChars int) (models.Phase, int) {
	fraction := float64(receivedChars) / float64(a.expectedChars)
	if fraction > 0.99 {
		fraction = 0.99
	}

	percent := 20 + int(fraction*60)

	switch {
	case fraction < 0.35:
		return models.PhaseFindingAlign, percent
	case fraction < 0.7:
		return models.PhaseIdentifyingGaps, percent
	default:
		return models.PhaseRecommending, percent
	}
}

func generationMessage(phase models.Phase) string {
	switch phase {
	case models.PhaseFindingAlign:
		return "Finding areas of alignment"
	case models.PhaseIdentifyingGaps:
		return "Identifying gaps"
	default:
		return "Weighing the overall recommendation"
	}
}

// generationErrorMessage maps provider failures onto one generic,
// non-technical message per subtype. Raw provider error text never reaches
// the user.
func generationErrorMessage(err error) string {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "api key") || strings.Contains(s, "credential") ||
		strings.Contains(s, "unauthorized") || strings.Contains(s, "permission denied"):
		return "The analysis service is not configured correctly. Please try again later."
	case strings.Contains(s, "rate") || strings.Contains(s, "quota") || strings.Contains(s, "429"):
		return "The analysis service is busy right now. Please try again in a moment."
	case strings.Contains(s, "unavailable") || strings.Contains(s, "internal") ||
		strings.Contains(s, "503") || strings.Contains(s, "500"):
		return "The analysis service had a problem completing the request. Please try again."
	default:
		return "The analysis could not be completed. Please check your connection and try again."
	}
}

// emitState serializes event emission: percent never decreases, duplicate
// progress is suppressed, and nothing follows a terminal event.
type emitState struct {
	ctx         context.Context
	events      chan<- models.StreamEvent
	lastPercent int
	lastPhase   models.Phase
	done        bool
}

func (e *emitState) progress(phase models.Phase, message string, percent int) {
	if e.done {
		return
	}
	if percent < e.lastPercent {
		percent = e.lastPercent
	}
	if phase == e.lastPhase && percent == e.lastPercent {
		return
	}
	e.lastPercent = percent
	e.lastPhase = phase
	e.send(models.ProgressEvent(phase, message, percent))
}

func (e *emitState) terminal(ev models.StreamEvent) {
	if e.done {
		return
	}
	e.done = true
	e.send(ev)
}

func (e *emitState) send(ev models.StreamEvent) {
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
		e.done = true
	}
}
