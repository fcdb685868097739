package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shelflift/internal/config"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

// Provider specifies which LLM backend to use.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderCustom Provider = "custom"
	ProviderMock   Provider = "mock"
)

// DefaultSystemMessage is used when a call site supplies no system message.
const DefaultSystemMessage = "You are a helpful assistant that generates content for e-commerce products."

// Generator is the text-generation capability consumed by the enricher and
// the comparison engine. Implementations may return an empty string or an
// error; callers own retry and fallback policy.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// Client communicates with a hosted LLM over HTTP.
type Client struct {
	cfg     config.LLMConfig
	client  *http.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a new LLM client. metrics may be nil.
func NewClient(cfg config.LLMConfig, metrics *observability.Metrics, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger.With("component", "llm_client"),
	}
}

// Generate sends a prompt to the configured provider and returns the raw
// response text. Format compliance is never guaranteed; callers must parse
// defensively.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", types.ErrEmptyPrompt
	}
	if system == "" {
		system = DefaultSystemMessage
	}

	if c.metrics != nil {
		c.metrics.GenerationCalls.Add(1)
	}
	response, err := c.dispatch(ctx, prompt, system)
	if err != nil && c.metrics != nil {
		c.metrics.GenerationFailures.Add(1)
	}
	return response, err
}

func (c *Client) dispatch(ctx context.Context, prompt, system string) (string, error) {
	switch Provider(c.cfg.Provider) {
	case ProviderOllama:
		return c.generateOllama(ctx, prompt, system)
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, prompt, system)
	case ProviderCustom:
		return c.generateCustom(ctx, prompt, system)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.cfg.Provider)
	}
}

func (c *Client) generateOllama(ctx context.Context, prompt, system string) (string, error) {
	payload := map[string]any{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"system": system,
		"stream": false,
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return strings.TrimSpace(result.Response), nil
}

func (c *Client) generateOpenAI(ctx context.Context, prompt, system string) (string, error) {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
	}

	body, _ := json.Marshal(payload)
	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *Client) generateCustom(ctx context.Context, prompt, system string) (string, error) {
	payload := map[string]any{
		"prompt": prompt,
		"system": system,
		"model":  c.cfg.Model,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(respBody)), nil
}
