package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/study-planner/internal/logger"
)

const (
	openRouterReferer = "https://studyplannerai.app"
	openRouterTitle   = "StudyplannerAI"
	systemPrompt      = "You are an expert educational consultant who creates comprehensive study plans. You always respond with valid, properly formatted JSON data as requested."
)

// OpenRouterClient calls the OpenRouter chat completions API
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	log         *logger.Logger
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *OpenRouterClient {
	if baseURL == "" {
		baseURL = "https://openrouter.ai"
	}
	c := &OpenRouterClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		maxTokens:   4000,
		httpClient:  newHTTPClient(timeout),
		log:         providerLogger(log, OpenRouter, model),
	}
	c.log.Info("openrouter client configured", "api_key", apiKey)
	return c
}

type openRouterRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	Stream           bool          `json:"stream"`
	TopP             float64       `json:"top_p,omitempty"`
	TopK             int           `json:"top_k,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	Transforms       []string      `json:"transforms,omitempty"`
	Route            string        `json:"route,omitempty"`
}

type openRouterResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Describe implements Provider
func (c *OpenRouterClient) Describe() Description {
	return Description{ProviderID: string(OpenRouter), ModelID: c.model}
}

func (c *OpenRouterClient) isGoogleModel() bool {
	return strings.HasPrefix(strings.ToLower(c.model), "google/")
}

func (c *OpenRouterClient) buildRequest(prompt string) openRouterRequest {
	req := openRouterRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if c.isGoogleModel() {
		req.TopP = 0.95
		req.TopK = 50
		req.FrequencyPenalty = 0.1
		req.PresencePenalty = 0.1
	} else {
		req.Transforms = []string{"middle-out"}
		req.Route = "fallback"
	}
	return req
}

// GenerateText implements Provider
func (c *OpenRouterClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &ProviderError{Provider: string(OpenRouter), Status: http.StatusUnauthorized, Message: "API key not configured"}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"HTTP-Referer":  openRouterReferer,
		"X-Title":       openRouterTitle,
	}

	var resp openRouterResponse
	status, body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/v1/chat/completions", headers, c.buildRequest(prompt), &resp)
	if err != nil {
		if status != 0 {
			return "", &ProviderError{Provider: string(OpenRouter), Status: status, Message: "invalid response body", Err: err}
		}
		return "", transportError(string(OpenRouter), err)
	}
	if status != http.StatusOK {
		c.log.Warn("openrouter request rejected", "status", status)
		return "", &ProviderError{Provider: string(OpenRouter), Status: status, Message: openRouterErrorMessage(body)}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: string(OpenRouter), Message: "no choices in response"}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ProviderError{Provider: string(OpenRouter), Message: "empty response"}
	}
	return text, nil
}

// openRouterErrorMessage reads error.message, or a plain error string, from
// an error body.
func openRouterErrorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		if s := snippet(body, 200); s != "" {
			return s
		}
		return "Unknown error"
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &detail); err == nil && detail.Message != "" {
		return detail.Message
	}
	var plain string
	if err := json.Unmarshal(payload.Error, &plain); err == nil && plain != "" {
		return plain
	}
	return snippet(payload.Error, 200)
}
