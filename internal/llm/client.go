package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/metrics"
)

// Client talks to an Ollama-compatible text generation endpoint. Every
// call is best-effort from the pipeline's point of view: callers treat
// errors as a signal to fall back to the deterministic path.
type Client struct {
	baseURL string
	model   string
	retries int
	timeout time.Duration
	httpc   *http.Client
	logger  *slog.Logger

	pointsSchema map[string]any
}

func NewClient(cfg common.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:      baseURL,
		model:        cfg.Model,
		retries:      retries,
		timeout:      timeout,
		httpc:        &http.Client{Timeout: timeout},
		logger:       logger,
		pointsSchema: buildPointsSchema(),
	}
}

// Generate posts a single prompt and returns the raw completion text.
// The call is retried up to the configured retry count; each attempt
// failure is classified as http_<status>, empty_response, or exception,
// and only the final reason is counted after all attempts are exhausted.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = c.model
	}
	attempts := c.retries + 1

	var lastReason string
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, reason, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastReason, lastErr = reason, err
		c.logger.Warn("llm.generate.attempt_failed",
			"model", model,
			"attempt", attempt,
			"attempts", attempts,
			"reason", reason,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
	}

	metrics.SummaryLLMFailures.WithLabelValues(lastReason).Inc()
	return "", common.Upstream(common.ReasonLLMUnavailable,
		fmt.Sprintf("llm generate failed after %d attempts (%s)", attempts, lastReason),
		lastErr,
	)
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (text, reason string, err error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0.2,
		},
	}
	raw, status, err := SendJSON(callCtx, c.httpc, c.baseURL+"/api/generate", body, c.logger)
	if err != nil {
		if status >= 400 {
			return "", fmt.Sprintf("http_%d", status), err
		}
		return "", "exception", err
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "exception", fmt.Errorf("decode response: %w", err)
	}
	text = strings.TrimSpace(payload.Response)
	if text == "" {
		return "", "empty_response", fmt.Errorf("model returned no text")
	}
	return text, "", nil
}

// SummarizePoints asks the model for 3 to 5 bullet points and parses
// whatever shape comes back. A completion that yields no parseable
// points is an error so the caller keeps its deterministic points.
func (c *Client) SummarizePoints(ctx context.Context, model, text string) ([]string, error) {
	prompt := "Summarize the following document text into 3 to 5 concise bullet points. " +
		"Return ONLY a JSON array of strings, or a JSON object with a summary_points array. " +
		"No commentary.\n\nDocument text:\n" + text
	raw, err := c.Generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}
	points := c.parsePoints(raw)
	if len(points) == 0 {
		return nil, fmt.Errorf("no summary points parsed from completion")
	}
	return points, nil
}

// Narrative asks the model for a prose summary and returns it verbatim.
func (c *Client) Narrative(ctx context.Context, model, text string) (string, error) {
	prompt := "Write a detailed summary of the following document text. " +
		"Cover every section and all named details. Respond with plain text only.\n\nDocument text:\n" + text
	return c.Generate(ctx, model, prompt)
}
