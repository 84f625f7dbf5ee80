package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"inboxagent/pkg/circuitbreaker"
	"inboxagent/pkg/config"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/metrics"
	"inboxagent/pkg/trace"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-20240620"
	DefaultVersion = "2023-06-01"
	DefaultTimeout = 30 * time.Second

	messagesPath = "/v1/messages"
)

// Client 调用 Anthropic Messages API。每次调用只发一次请求，不重试
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	version    string
	timeout    time.Duration
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker // 熔断器
	logger     *zap.Logger
}

// NewClient fails with ErrMissingCredential when cfg has no API key.
func NewClient(cfg config.LLMConfig, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		model:      orDefault(cfg.Model, DefaultModel),
		version:    orDefault(cfg.Version, DefaultVersion),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     log,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	// 连续失败后快速失败，避免每个请求都等到超时
	c.cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:    cfg.FailureThreshold,
		SuccessThreshold:    1,
		Timeout:             cfg.OpenTimeout,
		HalfOpenMaxRequests: 1,
		OnStateChange: func(from, to circuitbreaker.State) {
			log.Warn("Generative service circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the trimmed
// text of the reply. maxTokens and temperature are passed through as given.
// Every failure is an *AdapterError.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &AdapterError{Op: "complete", Err: ErrEmptyPrompt}
	}

	var text string
	// 调用方取消（客户端断开、worker 退出）不计入熔断
	err := c.cb.ExecuteContext(ctx, func() error {
		var callErr error
		text, callErr = c.call(ctx, prompt, maxTokens, temperature)
		return callErr
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
			metrics.RecordLLMCallLatency(messagesPath, "circuit_open", 0)
			err = &AdapterError{Op: "complete", Err: err}
		}
		logger.WithTrace(ctx, c.logger).Warn("Generative service call failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return "", err
	}
	return text, nil
}

func (c *Client) call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &AdapterError{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", &AdapterError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.version)
	// 传播 trace_id
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName, traceID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		metrics.RecordLLMCallLatency(messagesPath, status, latency)
		return "", &AdapterError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordLLMCallLatency(messagesPath, "error", latency)
		return "", &AdapterError{Op: "read response", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordLLMCallLatency(messagesPath, strconv.Itoa(resp.StatusCode), latency)
		return "", &AdapterError{Op: "request", StatusCode: resp.StatusCode, Err: errorMessage(raw)}
	}
	metrics.RecordLLMCallLatency(messagesPath, "success", latency)

	var decoded messagesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &AdapterError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}

	var sb strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &AdapterError{Op: "decode response", StatusCode: resp.StatusCode, Err: errors.New("response has no text content")}
	}
	return text, nil
}

func errorMessage(raw []byte) error {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return fmt.Errorf("%s: %s", e.Error.Type, e.Error.Message)
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty error body"
	}
	return errors.New(msg)
}
