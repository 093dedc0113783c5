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
	openaiBaseURL        = "https://api.openai.com/v1"
	defaultEmbedderModel = "text-embedding-3-large"
	defaultChatModel     = "gpt-4o"
	defaultTemperature   = 0.2
)

// shared HTTP client for OpenAI API calls
// reuses connection pool and timeout configuration
var openaiHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for OpenAI API calls (50 requests/second with burst capacity of 10)
var openaiRateLimiter = rate.NewLimiter(50, 10)

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
	Encoding   string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

type OpenAIEmbedder struct {
	config     EmbedderConfig
	httpClient *http.Client
}

func NewOpenAIEmbedder(config EmbedderConfig) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultEmbedderModel
	}

	config.BaseURL = baseURLOr(config.BaseURL, openaiBaseURL)

	return &OpenAIEmbedder{
		config:     config,
		httpClient: openaiHTTPClient,
	}
}

func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.config.Dimension
}

// embeds texts in one request. callers batch; the client never splits input.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = sanitizeEmbeddingInput(text)
	}

	reqBody := embeddingRequest{
		Input:      inputs,
		Model:      e.config.Model,
		Dimensions: e.config.Dimension,
		Encoding:   "float",
	}

	headers := map[string]string{"Authorization": "Bearer " + e.config.APIKey}

	var embResp embeddingResponse
	if err := postJSON(ctx, e.httpClient, openaiRateLimiter, e.config.BaseURL+"/embeddings", headers, reqBody, &embResp); err != nil {
		return nil, err
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Data))
	}

	embeddings := make([][]float32, len(texts))

	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}

		if embeddings[data.Index] != nil {
			return nil, fmt.Errorf("duplicate embedding index %d", data.Index)
		}

		if len(data.Embedding) != e.config.Dimension {
			return nil, fmt.Errorf("%w: model %s returned %d, index expects %d",
				ErrDimensionMismatch, e.config.Model, len(data.Embedding), e.config.Dimension)
		}

		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type OpenAIGenerator struct {
	config     GeneratorConfig
	httpClient *http.Client
}

func NewOpenAIGenerator(config GeneratorConfig) *OpenAIGenerator {
	if config.Model == "" {
		config.Model = defaultChatModel
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	config.BaseURL = baseURLOr(config.BaseURL, openaiBaseURL)

	return &OpenAIGenerator{
		config:     config,
		httpClient: openaiHTTPClient,
	}
}

func (g *OpenAIGenerator) Model() string {
	return g.config.Model
}

func (g *OpenAIGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := chatRequest{
		Model:       g.config.Model,
		Messages:    messages,
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	}

	headers := map[string]string{"Authorization": "Bearer " + g.config.APIKey}

	var resp chatResponse
	if err := postJSON(ctx, g.httpClient, openaiRateLimiter, g.config.BaseURL+"/chat/completions", headers, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
