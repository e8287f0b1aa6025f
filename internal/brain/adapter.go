// Package brain is the seam to the external text generator. The pipeline
// hands over a system instruction plus the accumulated transcript and gets
// back a single response string; everything about models, endpoints and
// streaming stays behind the Adapter interface.
package brain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message is one role-tagged transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request carries everything a generator needs for one turn.
type Request struct {
	System     string
	Transcript []Message
}

// DeltaHandler receives streaming text fragments as they arrive.
type DeltaHandler func(delta string) error

// Adapter produces one assistant response per request. Failures are
// recoverable by contract: callers substitute a fallback reply.
type Adapter interface {
	Generate(ctx context.Context, req Request, onDelta DeltaHandler) (string, error)
}

// Config controls adapter construction.
type Config struct {
	Mode          string
	Timeout       time.Duration
	OllamaBaseURL string
	OllamaModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
}

// NewAdapter builds the configured adapter. In auto mode an OpenAI key
// selects the OpenAI-compatible client, otherwise the local Ollama endpoint
// is preferred with the mock as a last resort behind a fallback chain.
func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			return NewFallbackAdapter(newOpenAIFromConfig(cfg), NewOllamaAdapter(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout)), nil
		}
		return NewFallbackAdapter(NewOllamaAdapter(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), NewMockAdapter()), nil
	case "ollama":
		return NewOllamaAdapter(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && strings.TrimSpace(cfg.OpenAIBaseURL) == "" {
			return nil, fmt.Errorf("openai brain mode requires an API key or base URL")
		}
		return newOpenAIFromConfig(cfg), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}

func newOpenAIFromConfig(cfg Config) *OpenAIAdapter {
	return NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
}
