package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/study-planner/internal/logger"
)

// GeminiClient handles Gemini API operations
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	c := &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		log:        providerLogger(log, Gemini, model),
	}
	c.log.Info("gemini client configured", "api_key", apiKey)
	return c
}

// geminiRequest represents the request structure for Gemini API
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse represents the response structure from Gemini API
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Describe implements Provider
func (c *GeminiClient) Describe() Description {
	return Description{ProviderID: string(Gemini), ModelID: c.model}
}

// GenerateText implements Provider
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &ProviderError{Provider: string(Gemini), Status: http.StatusUnauthorized, Message: "API key not configured"}
	}

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.3,
			TopP:            0.8,
			MaxOutputTokens: 8000,
		},
	}

	// the key travels in the query string; keep the URL out of logs and errors
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var resp geminiResponse
	status, body, err := postJSON(ctx, c.httpClient, url, nil, req, &resp)
	if err != nil {
		if status != 0 {
			return "", &ProviderError{Provider: string(Gemini), Status: status, Message: "invalid response body"}
		}
		return "", transportError(string(Gemini), redactKey(err, c.apiKey))
	}
	if status != http.StatusOK {
		return "", &ProviderError{Provider: string(Gemini), Status: status, Message: snippet(body, 200)}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: string(Gemini), Message: "no content in response"}
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", &ProviderError{Provider: string(Gemini), Message: "empty response"}
	}
	return text, nil
}

// redactKey strips the API key out of transport errors, which quote the
// request URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, logger.MaskSecret(key)), cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }
