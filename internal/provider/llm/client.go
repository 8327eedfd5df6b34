package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/provider"
)

// Client is the model-based extraction backend. It builds a natural-language
// instruction from the templates plus the normalized text and attribute name,
// submits it to an OpenAI-style chat/completions endpoint and returns the
// completion as the value. Unreachable or timed-out backends raise retryable
// errors; malformed or empty completions raise validation errors.
type Client struct {
	cfg        common.LLMConfig
	templates  Templates
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg common.LLMConfig, templates Templates, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		templates:  templates,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate implements provider.Provider.
func (c *Client) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	rid := uuid.New().String()
	start := time.Now()

	schema := BuildValueJSONSchema()
	user := c.templates.BuildUserPrompt(req.Attribute.Name, req.Text.Text, req.PriorContext)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": c.templates.SystemPrompt},
			{"role": "user", "content": user},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"attribute", req.Attribute.Name,
		"text_len", len(req.Text.Text),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, common.NewAppError("LLM_DECODE", "decode completion response",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	if len(cc.Choices) == 0 {
		return nil, common.NewAppError("LLM_EMPTY", "no choices in completion response",
			common.ErrValidation)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return nil, common.NewAppError("LLM_EMPTY", "empty completion",
			common.ErrValidation)
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(content)); err != nil {
		c.log.Error("llm.generate.schema_validation_failed",
			"req_id", rid, "error", err, "content", content,
		)
		return nil, common.NewAppError("LLM_SCHEMA", "completion does not match schema",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}

	var out struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, common.NewAppError("LLM_DECODE", "unmarshal completion value",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}

	resp := &provider.Response{
		Value:   strings.TrimSpace(out.Value),
		Found:   strings.TrimSpace(out.Value) != "",
		Latency: time.Since(start),
		Model:   c.cfg.Model,
		Usage: provider.Usage{
			PromptTokens:     cc.Usage.PromptTokens,
			CompletionTokens: cc.Usage.CompletionTokens,
		},
	}

	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"attribute", req.Attribute.Name,
		"found", resp.Found,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", resp.Latency.Milliseconds(),
	)
	return resp, nil
}

// HealthCheck probes the backend's model listing endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, common.NewAppError("LLM_REQUEST", "marshal request",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, common.NewAppError("LLM_REQUEST", "build request",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("llm response body close error", "error", cerr)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewAppError("LLM_SERVICE", "read response body",
			fmt.Errorf("%w: %w", common.ErrProviderService, err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return payload, nil
	case resp.StatusCode == http.StatusRequestTimeout:
		return nil, common.NewAppError("LLM_TIMEOUT",
			fmt.Sprintf("backend status %d", resp.StatusCode), common.ErrProviderTimeout)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, common.NewAppError("LLM_SERVICE",
			fmt.Sprintf("backend status %d: %s", resp.StatusCode, truncate(payload, 256)),
			common.ErrProviderService)
	default:
		// 4xx beyond rate limiting is a request/configuration problem;
		// retrying will not help.
		return nil, common.NewAppError("LLM_REJECTED",
			fmt.Sprintf("backend status %d: %s", resp.StatusCode, truncate(payload, 256)),
			common.ErrValidation)
	}
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return common.NewAppError("LLM_TIMEOUT", "backend call timed out",
			fmt.Errorf("%w: %w", common.ErrProviderTimeout, err))
	}
	return common.NewAppError("LLM_SERVICE", "backend unreachable",
		fmt.Errorf("%w: %w", common.ErrProviderService, err))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
