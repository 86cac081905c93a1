package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

// Generator is the capability the extraction pipeline needs from a
// text-generation backend. Implemented by Client; test doubles implement
// it directly.
type Generator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client is a minimal client for OpenAI-compatible chat completion APIs
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates an LLM client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) *Client {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("LLM_API_URL")
		if base == "" {
			base = "https://api.groq.com"
		}
	}

	model := "llama-3.1-70b-versatile"
	temperature := 0.2
	maxTokens := 4096
	timeout := 60 * time.Second
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.Temperature > 0 {
			temperature = cfg.Temperature
		}
		if cfg.MaxOutputTokens > 0 {
			maxTokens = cfg.MaxOutputTokens
		}
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     base,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// CompletionRequest carries one chat completion call
type CompletionRequest struct {
	SystemInstruction string
	UserContent       string
	ForceJSON         bool
}

// ChatRequest is the wire shape for chat completion requests
type ChatRequest struct {
	Model          string              `json:"model,omitempty"`
	Messages       []map[string]string `json:"messages,omitempty"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat     `json:"response_format,omitempty"`
}

// ResponseFormat constrains the completion output shape
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request and returns the assistant
// content. Transport and backend errors propagate to the caller; retries
// are the caller's concern.
func (c *Client) Complete(ctx context.Context, compReq CompletionRequest) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if compReq.SystemInstruction != "" {
		messages = append(messages, map[string]string{"role": "system", "content": compReq.SystemInstruction})
	}
	messages = append(messages, map[string]string{"role": "user", "content": compReq.UserContent})

	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if compReq.ForceJSON {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.observe(start, len(compReq.UserContent), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := fmt.Errorf("llm backend returned status %d", resp.StatusCode)
		c.observe(start, len(compReq.UserContent), err)
		return "", err
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		c.observe(start, len(compReq.UserContent), err)
		return "", err
	}
	if len(cr.Choices) == 0 {
		err := fmt.Errorf("empty response from llm backend")
		c.observe(start, len(compReq.UserContent), err)
		return "", err
	}

	c.observe(start, len(compReq.UserContent), nil)
	return cr.Choices[0].Message.Content, nil
}

// observe emits per-call timing and outcome telemetry
func (c *Client) observe(start time.Time, inputLen int, err error) {
	if c.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("input_length", inputLen),
	}
	if err != nil {
		c.logger.Warn("llm.completion.failed", append(fields, zap.Error(err))...)
		return
	}
	c.logger.Info("llm.completion.ok", fields...)
}

// WithBaseURL returns a copy of the client pointed at a different endpoint,
// used by tests to target an httptest server.
func (c *Client) WithBaseURL(base string) *Client {
	clone := *c
	clone.baseURL = base
	return &clone
}
