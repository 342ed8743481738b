package guardrails

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"jobfit/analyzer/internal/security"
)

// Validator fans the enabled checks out concurrently, joins them all and
// applies the blocking rule. It never returns an error: individual check
// failures are recovered as fail-open results.
type Validator struct {
	cfg        Config
	classifier Classifier
	events     *security.Emitter
	logger     *zap.Logger
}

func NewValidator(cfg Config, classifier Classifier, events *security.Emitter, logger *zap.Logger) *Validator {
	if len(cfg.Enabled) == 0 {
		cfg.Enabled = append([]CheckKind(nil), AllChecks...)
	}
	if cfg.BlockThreshold <= 0 {
		cfg.BlockThreshold = DefaultBlockThreshold
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 10 * time.Second
	}
	return &Validator{cfg: cfg, classifier: classifier, events: events, logger: logger}
}

// Validate runs every enabled check against the input and aggregates a
// verdict. The result holds exactly one entry per enabled check, in config
// order; a blocking outcome is logged as a security event.
func (v *Validator) Validate(ctx context.Context, input, endpoint, requestID string) ValidationResult {
	started := time.Now()

	results := make([]CheckResult, len(v.cfg.Enabled))
	var wg sync.WaitGroup

	for i, kind := range v.cfg.Enabled {
		wg.Add(1)
		go func(slot int, kind CheckKind) {
			defer wg.Done()
			results[slot] = v.runCheck(ctx, kind, input)
		}(i, kind)
	}
	wg.Wait()

	outcome := ValidationResult{Passed: true, Results: results}

	// First failed check at or above the threshold wins, in config order.
	for _, res := range results {
		if !res.Passed && res.Confidence >= v.cfg.BlockThreshold {
			outcome.Passed = false
			outcome.BlockedBy = res.Kind
			outcome.Message = SafeMessage(res.Kind, endpoint)

			v.logger.Info("input validation refused a request",
				zap.String("endpoint", endpoint),
				zap.String("check", string(res.Kind)),
				zap.Float64("confidence", res.Confidence),
			)
			if v.events != nil {
				v.events.Emit(security.NewBlockEvent(
					endpoint,
					string(res.Kind),
					res.Confidence,
					requestID,
					time.Since(started),
					utf8.RuneCountInString(input),
				))
			}
			break
		}
	}

	return outcome
}

// runCheck executes one classifier under its own timeout. Any failure is
// converted to a neutral passing result so a broken check never blocks a
// legitimate request or aborts the join.
func (v *Validator) runCheck(ctx context.Context, kind CheckKind, input string) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, v.cfg.CheckTimeout)
	defer cancel()

	res, err := v.classifier.Classify(checkCtx, kind, input)
	if err != nil {
		v.logger.Warn("safety check unavailable, failing open",
			zap.String("check", string(kind)),
			zap.Error(err),
		)
		return CheckResult{Kind: kind, Passed: true, Confidence: 0, Detail: "check unavailable"}
	}

	res.Kind = kind
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	if res.Confidence > 1 {
		res.Confidence = 1
	}
	return res
}
