package handlers

import (
	"bufio"
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/security"
	"jobfit/analyzer/internal/services"
	"jobfit/analyzer/internal/validation"
)

const analyzeEndpoint = "analyze"

type AnalyzeHandler struct {
	analyzer *services.Analyzer
	logger   *zap.Logger
}

func NewAnalyzeHandler(analyzer *services.Analyzer, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// HandleAnalyze handles POST /analyze. The response is a JSON-lines event
// stream: progress events in phase order, then exactly one terminal event.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeSingleEvent(c, models.ErrorEvent(models.CodeInvalidRequest, "The request body could not be read."))
	}

	// Same pre-flight the client runs; the pipeline never sees input that
	// fails it.
	if check := validation.CheckInput(req.JobDescription); !check.OK {
		return writeSingleEvent(c, models.ErrorEvent(check.Code, check.Message))
	}

	// The request identity reaching logs is a one-way hash, never raw
	// caller metadata.
	requestID := security.AnonymizeRequestID(uuid.NewString(), c.IP(), c.Get(fiber.HeaderUserAgent))

	h.logger.Info("analysis request accepted",
		zap.String("request_id", requestID),
		zap.Int("input_length", len(req.JobDescription)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	events := h.analyzer.Analyze(ctx, req.JobDescription, analyzeEndpoint, requestID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for ev := range events {
			line, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("failed to encode stream event", zap.Error(err))
				return
			}
			if _, err := w.Write(append(line, '\n')); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// Client went away; stop the pipeline.
				return
			}
		}
	}))

	return nil
}

func writeSingleEvent(c *fiber.Ctx, ev models.StreamEvent) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.Send(append(line, '\n'))
}
