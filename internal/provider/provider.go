package provider

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
	"unicode/utf8"

	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/logger"
)

// Name identifies a generation backend
type Name string

const (
	Ollama     Name = config.ProviderOllama
	OpenRouter Name = config.ProviderOpenRouter
	Gemini     Name = config.ProviderGemini
)

// ParseName resolves a configured provider name
func ParseName(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case Ollama, OpenRouter, Gemini:
		return n, nil
	default:
		return "", &ConfigurationError{Name: s}
	}
}

// Description identifies the backend and model behind a Provider
type Description struct {
	ProviderID string `json:"provider_id"`
	ModelID    string `json:"model_id"`
}

// Method is the generation method tag for plans produced by this provider
func (d Description) Method() string {
	return strings.ToUpper(d.ProviderID)
}

// Provider turns a prompt into raw text
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Describe() Description
}

// ProviderError reports a failed generation call. Status is 0 when the
// request never got a response.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigurationError reports an unknown provider name
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown generation provider: %q", e.Name)
}

// New builds the provider selected by cfg.AIProvider
func New(cfg *config.Config, log *logger.Logger) (Provider, error) {
	name, err := ParseName(cfg.AIProvider)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ProviderTimeoutDuration()

	switch name {
	case OpenRouter:
		return NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, timeout, log), nil
	case Gemini:
		return NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, timeout, log), nil
	default:
		return NewOllamaClient(cfg.OllamaHost, cfg.OllamaModel, timeout, log), nil
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// postJSON sends payload and decodes a 200 response into out. Non-200
// responses are returned with their body for the caller to interpret.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, respBody, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, respBody, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func transportError(provider string, err error) *ProviderError {
	msg := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &ProviderError{Provider: provider, Message: msg, Err: err}
}

// snippet trims b to at most n runes for error messages.
func snippet(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if utf8.RuneCountInString(s) > n {
		return string([]rune(s)[:n])
	}
	return s
}

func providerLogger(log *logger.Logger, name Name, model string) *logger.Logger {
	if log == nil {
		log = logger.NewNop()
	}
	return log.With("provider", string(name), "model", model)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
