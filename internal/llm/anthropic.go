package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	anthropicBaseURL       = "https://api.anthropic.com/v1"
	anthropicVersion       = "2023-06-01"
	defaultClaudeModel     = "claude-sonnet-4-20250514"
	defaultClaudeMaxTokens = 2048
)

// shared HTTP client for Anthropic API calls
var anthropicHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type AnthropicGenerator struct {
	config     GeneratorConfig
	httpClient *http.Client
}

func NewAnthropicGenerator(config GeneratorConfig) *AnthropicGenerator {
	if config.Model == "" {
		config.Model = defaultClaudeModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultClaudeMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	config.BaseURL = baseURLOr(config.BaseURL, anthropicBaseURL)

	return &AnthropicGenerator{
		config:     config,
		httpClient: anthropicHTTPClient,
	}
}

func (g *AnthropicGenerator) Model() string {
	return g.config.Model
}

// system-role messages go into the top-level system field, in order
func (g *AnthropicGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	if len(turns) == 0 {
		return "", fmt.Errorf("at least one non-system message is required")
	}

	reqBody := messagesRequest{
		Model:       g.config.Model,
		MaxTokens:   g.config.MaxTokens,
		System:      system,
		Messages:    turns,
		Temperature: g.config.Temperature,
	}

	headers := map[string]string{
		"x-api-key":         g.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp messagesResponse
	if err := postJSON(ctx, g.httpClient, anthropicRateLimiter, g.config.BaseURL+"/messages", headers, reqBody, &resp); err != nil {
		return "", err
	}

	var text strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return strings.TrimSpace(text.String()), nil
}

func splitSystem(messages []Message) (string, []Message) {
	var system []string

	turns := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}

		turns = append(turns, msg)
	}

	return strings.Join(system, "\n\n"), turns
}
