package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.pinecone.io"
	defaultModel   = "bge-reranker-v2-m3"
	apiVersion     = "2025-01"
)

// shared HTTP client for rerank calls
var rerankHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for rerank calls (20 requests/second with burst capacity of 5)
var rerankRateLimiter = rate.NewLimiter(20, 5)

// hosted cross-encoder client
type Client struct {
	config     Config
	httpClient *http.Client
}

// a missing key is a configuration error, surfaced at startup
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("reranker API key is required")
	}

	if config.Model == "" {
		config.Model = defaultModel
	}

	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: rerankHTTPClient,
	}, nil
}

func (c *Client) Model() string {
	return c.config.Model
}

// scores docs against the query and returns at most topN ids, best first
func (c *Client) Rerank(ctx context.Context, query string, docs []Document, topN int) ([]Result, error) {
	if len(docs) == 0 {
		return []Result{}, nil
	}

	if topN < 1 || topN > len(docs) {
		topN = len(docs)
	}

	reqBody := rerankRequest{
		Model:           c.config.Model,
		Query:           query,
		Documents:       docs,
		TopN:            topN,
		ReturnDocuments: false,
		RankFields:      []string{"text"},
		Parameters:      map[string]string{"truncate": "END"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.config.APIKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)

	if err := rerankRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(rerankResp.Data))

	for _, item := range rerankResp.Data {
		if item.Index < 0 || item.Index >= len(docs) {
			return nil, fmt.Errorf("rerank index %d out of range", item.Index)
		}

		results = append(results, Result{ID: docs[item.Index].ID, Score: item.Score})
	}

	return results, nil
}
