package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is a single-turn chat completion client for OpenAI-compatible
// endpoints (OpenRouter by default).
type Client struct {
	client   *resty.Client
	model    string
	endpoint string
}

// Config holds LLM client configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Usage is the token accounting reported by the API for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewClient creates an LLM client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Completion calls over large prompts can be slow
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	return &Client{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// GetModel returns the model name being used.
func (c *Client) GetModel() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one user prompt and returns the completion text plus token
// usage. Callers are expected to map errors to their own component defaults;
// a failed completion never aborts a pipeline run.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, *Usage, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return "", nil, fmt.Errorf("failed to call LLM API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", nil, fmt.Errorf("LLM API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", nil, fmt.Errorf("LLM API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no choices in LLM response (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, resp.Usage, nil
}
