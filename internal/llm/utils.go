package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const maxEmbeddingInputChars = 6000

// newlines become spaces, then trim, then a hard cut at 6000 characters
func sanitizeEmbeddingInput(text string) string {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if utf8.RuneCountInString(s) <= maxEmbeddingInputChars {
		return s
	}

	return string([]rune(s)[:maxEmbeddingInputChars])
}

// sends a JSON request and decodes a JSON 200 response into out
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, headers map[string]string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body) //nolint:errcheck
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func baseURLOr(configured, fallback string) string {
	if configured == "" {
		return fallback
	}

	return strings.TrimRight(configured, "/")
}
