// Package llm talks to an OpenAI-compatible chat-completions backend, such as
// a local LM Studio instance.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider is the boundary the extraction pipeline calls through. Implemented
// by Client in production and by stubs in tests.
type Provider interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

const systemMessage = "You are an expert analyst of propaganda and disinformation. Always respond with valid JSON in the exact format requested."

// Client is a chat-completions API client.
type Client struct {
	URL         string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	client      *http.Client
}

// NewClient creates a backend client. timeout bounds each request; a call
// that exceeds it fails rather than blocking the batch.
func NewClient(url, model, apiKey string, temperature float64, maxTokens int, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		URL:         url,
		Model:       model,
		APIKey:      apiKey,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

// Analyze sends the analysis prompt and returns the raw response text. The
// caller is responsible for extracting structure from it.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemMessage},
			{"role": "user", "content": prompt},
		},
		"temperature": c.Temperature,
		"max_tokens":  c.MaxTokens,
		"stream":      false,
	}
	return c.complete(ctx, body)
}

// Ping verifies the backend is reachable and answering completions.
func (c *Client) Ping(ctx context.Context) error {
	body := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": "Respond with exactly: {\"status\": \"ok\"}"},
		},
		"temperature": 0,
		"max_tokens":  50,
	}
	_, err := c.complete(ctx, body)
	return err
}

func (c *Client) complete(ctx context.Context, body map[string]any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in backend response")
	}

	return result.Choices[0].Message.Content, nil
}
