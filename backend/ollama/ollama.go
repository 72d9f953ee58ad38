// Package ollama provides an llmbridge.Backend backed by a local Ollama server.
package ollama

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

	"github.com/blacktop/go-llmbridge"
)

// ErrNotConfigured is returned when no server URL is set.
var ErrNotConfigured = errors.New("ollama is not configured")

// reachTimeout bounds the availability check so probing stays cheap.
const reachTimeout = 3 * time.Second

// Config configures the Ollama client.
type Config struct {
	URL     string // empty disables the backend
	APIKey  string // sent as a Bearer token when set
	Model   string // e.g., "llama3.2"
	Timeout time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		URL:     "http://localhost:11434",
		Model:   "llama3.2",
		Timeout: 120 * time.Second,
	}
}

// Client implements llmbridge.Backend using the Ollama HTTP API.
// It is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a new Ollama client.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// -- Ollama API wire types --

type tagsResponse struct {
	Models []tagModel `json:"models"`
}

type tagModel struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Size    int64  `json:"size"`
	Details struct {
		Family            string `json:"family"`
		ParameterSize     string `json:"parameter_size"`
		QuantizationLevel string `json:"quantization_level"`
	} `json:"details"`
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Availability implements llmbridge.Backend.
//
// An empty URL is Disabled, an unreachable server is Unsupported, and a
// server that does not have the configured model pulled is NotReady.
func (c *Client) Availability(ctx context.Context) (llmbridge.State, error) {
	if c.baseURL == "" {
		return llmbridge.Disabled, nil
	}

	ctx, cancel := context.WithTimeout(ctx, reachTimeout)
	defer cancel()

	var tags tagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return llmbridge.Unsupported, nil
	}
	if c.model == "" {
		return llmbridge.Ready, nil
	}
	for _, m := range tags.Models {
		if matchModel(c.model, m.Name) || matchModel(c.model, m.Model) {
			return llmbridge.Ready, nil
		}
	}
	return llmbridge.NotReady, nil
}

// Generate implements llmbridge.Backend. MaxTokens is forwarded as
// num_predict; the server enforces it.
func (c *Client) Generate(ctx context.Context, req llmbridge.Request) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	body := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: &generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	var resp generateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", body, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	if !resp.Done {
		return "", fmt.Errorf("ollama returned an incomplete response")
	}
	return resp.Response, nil
}

// ListModels returns every model pulled on the server. Listed models are
// reported Ready since the server already holds them.
func (c *Client) ListModels(ctx context.Context) ([]llmbridge.ModelInfo, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var tags tagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}

	models := make([]llmbridge.ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		models = append(models, llmbridge.ModelInfo{
			ID:        "ollama:" + name,
			Name:      name,
			Provider:  "ollama",
			Available: true,
			State:     llmbridge.Ready,
			Metadata: map[string]any{
				"family":             m.Details.Family,
				"parameter_size":     m.Details.ParameterSize,
				"quantization_level": m.Details.QuantizationLevel,
				"size_bytes":         m.Size,
			},
		})
	}
	return models, nil
}

// Info implements llmbridge.Describer.
func (c *Client) Info() llmbridge.ModelInfo {
	return llmbridge.ModelInfo{
		ID:       "ollama:" + c.model,
		Name:     c.model,
		Provider: "ollama",
	}
}

// Reason implements llmbridge.Reasoner.
func (c *Client) Reason(s llmbridge.State) string {
	switch s {
	case llmbridge.Disabled:
		return "Ollama is not configured"
	case llmbridge.NotReady:
		return fmt.Sprintf("Model %q is not pulled on the Ollama server", c.model)
	case llmbridge.Unsupported:
		return fmt.Sprintf("Ollama server at %s is not reachable", c.baseURL)
	default:
		return ""
	}
}

// ConcurrentSafe implements llmbridge.ConcurrentSafe.
func (c *Client) ConcurrentSafe() bool { return true }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// matchModel treats "llama3.2" and "llama3.2:latest" as the same model.
func matchModel(want, have string) bool {
	if have == "" {
		return false
	}
	if want == have {
		return true
	}
	return !strings.Contains(want, ":") && have == want+":latest"
}
