package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobfit/analyzer/internal/models"
)

// Client consumes the analysis event stream over HTTP. It performs no
// validation of its own; callers run the local pre-flight first.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall client timeout: the stream is long-lived and the
		// server enforces the analysis deadline. Dial failures still
		// surface promptly.
		httpClient: &http.Client{Timeout: 0},
	}
}

// Analyze submits the input and invokes onEvent for every stream event in
// order. It returns after the terminal event, on stream error, or when ctx
// is cancelled.
func (c *Client) Analyze(ctx context.Context, input string, onEvent func(models.StreamEvent)) error {
	body, err := json.Marshal(models.AnalyzeRequest{JobDescription: input})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit analysis: unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev models.StreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}

		onEvent(ev)
		if ev.Terminal() {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream ended without a terminal event")
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	pingClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := pingClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %s", resp.Status)
	}
	return nil
}
