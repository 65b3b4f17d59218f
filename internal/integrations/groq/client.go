package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legendai-gateway/internal/domain"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultTimeout = 30 * time.Second
)

// chatRequest is the Chat Completions request body. Sampling fields are
// pointers so an explicit zero is still sent.
type chatRequest struct {
	Model            string               `json:"model"`
	Messages         []domain.ChatMessage `json:"messages"`
	Temperature      *float64             `json:"temperature,omitempty"`
	MaxTokens        *int                 `json:"max_tokens,omitempty"`
	TopP             *float64             `json:"top_p,omitempty"`
	FrequencyPenalty *float64             `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64             `json:"presence_penalty,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int                `json:"index"`
		Message      domain.ChatMessage `json:"message"`
		FinishReason string             `json:"finish_reason"`
	} `json:"choices"`
}

// errorEnvelope is the OpenAI-compatible error body Groq returns on non-2xx.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// APIError captures a non-2xx upstream response together with its kind.
type APIError struct {
	StatusCode int
	URL        string
	Kind       domain.UpstreamKind
	Code       string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("groq: unexpected status %d from %s: %s (code=%s)", e.StatusCode, e.URL, msg, e.Code)
	}
	return fmt.Sprintf("groq: unexpected status %d from %s: %s", e.StatusCode, e.URL, msg)
}

func (e *APIError) UpstreamKind() domain.UpstreamKind {
	return e.Kind
}

// Client is a focused Groq client for chat completions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every upstream call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client authenticated with apiKey. The client holds no
// mutable state and is safe for concurrent use.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("groq: api key must not be empty")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/openai/v1/chat/completions"
}

// Complete sends one chat completion request and returns the content of the
// first choice, untrimmed.
func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (string, error) {
	if in.Model == "" {
		return "", errors.New("groq: model must not be empty")
	}

	body, err := json.Marshal(chatRequest{
		Model:            in.Model,
		Messages:         in.Messages,
		Temperature:      in.Sampling.Temperature,
		MaxTokens:        in.Sampling.MaxTokens,
		TopP:             in.Sampling.TopP,
		FrequencyPenalty: in.Sampling.FrequencyPenalty,
		PresencePenalty:  in.Sampling.PresencePenalty,
	})
	if err != nil {
		return "", fmt.Errorf("groq: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("groq: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("groq: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("groq: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("groq: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, newAPIError(res.StatusCode, url, buf)
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func newAPIError(status int, url string, body []byte) *APIError {
	e := &APIError{StatusCode: status, URL: url}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		e.Message = env.Error.Message
		e.Code = env.Error.Code
		e.Type = env.Error.Type
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	e.Kind = classify(status, e.Code, e.Type)
	return e
}

// classify prefers the provider's error code and falls back to the status.
func classify(status int, code, typ string) domain.UpstreamKind {
	switch {
	case code == "rate_limit_exceeded", strings.Contains(typ, "rate_limit"):
		return domain.UpstreamRateLimited
	case code == "invalid_api_key", code == "invalid_api_key_format":
		return domain.UpstreamAuth
	case code == "model_not_found", code == "model_decommissioned", code == "model_not_active":
		return domain.UpstreamModelUnavailable
	}
	switch status {
	case http.StatusTooManyRequests:
		return domain.UpstreamRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.UpstreamAuth
	case http.StatusNotFound:
		return domain.UpstreamModelUnavailable
	}
	return domain.UpstreamUnknown
}
