// Package genai is a minimal client for the Gemini generateContent API.
// Callers treat it as optional: a nil or keyless client reports
// ErrUnavailable and the caller falls back to deterministic logic.
package genai

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

	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 10 * time.Second
)

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("generative backend not configured")

// Client communicates with the Gemini API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	group      singleflight.Group
}

// NewClient creates a Gemini client. An empty model or zero timeout
// selects the defaults. The API key may be empty; the client then answers
// every Complete call with ErrUnavailable.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(apiKey, model string, timeout time.Duration, baseURL string) *Client {
	c := NewClient(apiKey, model, timeout)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Available reports whether the client can serve completions.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Complete sends a single-turn prompt and returns the generated text.
// Identical prompts in flight at the same time share one upstream request.
// There are no retries; callers are expected to degrade gracefully.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	v, err, _ := c.group.Do(prompt, func() (any, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	text := gr.text()
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
