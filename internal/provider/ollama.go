package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/study-planner/internal/logger"
)

// OllamaClient talks to a local Ollama server
type OllamaClient struct {
	host       string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(host, model string, timeout time.Duration, log *logger.Logger) *OllamaClient {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaClient{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		httpClient: newHTTPClient(timeout),
		log:        providerLogger(log, Ollama, model),
	}
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   string        `json:"format"`
	Stream   bool          `json:"stream"`
}

type ollamaResponse struct {
	Message chatMessage `json:"message"`
}

// Describe implements Provider
func (c *OllamaClient) Describe() Description {
	return Description{ProviderID: string(Ollama), ModelID: c.model}
}

// GenerateText implements Provider
func (c *OllamaClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	c.log.Debug("generating text", "host", c.host, "prompt_length", len(prompt))

	req := ollamaRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Format:   "json",
	}

	var resp ollamaResponse
	status, body, err := postJSON(ctx, c.httpClient, c.host+"/api/chat", nil, req, &resp)
	if err != nil {
		if status != 0 {
			return "", &ProviderError{Provider: string(Ollama), Status: status, Message: "invalid response body", Err: err}
		}
		return "", transportError(string(Ollama), err)
	}
	if status != http.StatusOK {
		return "", &ProviderError{Provider: string(Ollama), Status: status, Message: snippet(body, 200)}
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", &ProviderError{Provider: string(Ollama), Message: "empty response"}
	}
	return text, nil
}
