package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/config"
)

// NewLLMProvider creates the provider named by cfg.Type.
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	switch cfg.Type {
	case "openai", "":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", cfg.Type)
	}
}

// OpenAIProvider implements LLMProvider with the chat completions API
type OpenAIProvider struct {
	config config.LLMConfig
	http   *HTTPClient
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{config: cfg, http: NewHTTPClient(cfg.Timeout, cfg.MaxRetries, 0)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Generate sends prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, stop []string) (string, error) {
	apiKey := p.config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return "", errors.New("OpenAI API key not configured")
	}

	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatReq struct {
		Model       string    `json:"model"`
		Messages    []chatMsg `json:"messages"`
		Temperature float64   `json:"temperature"`
		MaxTokens   int       `json:"max_tokens,omitempty"`
		Stop        []string  `json:"stop,omitempty"`
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	// the API accepts at most four stop sequences
	if len(stop) > 4 {
		stop = stop[:4]
	}
	req := chatReq{
		Model:       p.config.Model,
		Messages:    []chatMsg{{Role: "user", Content: prompt}},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		Stop:        stop,
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	if err := p.http.DoJSON(ctx, "POST", strings.TrimRight(p.config.BaseURL, "/")+"/chat/completions", headers, req, &out); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// AnthropicProvider implements LLMProvider with the messages API
type AnthropicProvider struct {
	config config.LLMConfig
	http   *HTTPClient
}

const anthropicVersion = "2023-06-01"

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg config.LLMConfig) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	return &AnthropicProvider{config: cfg, http: NewHTTPClient(cfg.Timeout, cfg.MaxRetries, 0)}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate sends prompt as a single user turn and concatenates the text blocks
// of the reply.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, stop []string) (string, error) {
	apiKey := p.config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return "", errors.New("Anthropic API key not configured")
	}

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type messagesReq struct {
		Model         string    `json:"model"`
		MaxTokens     int       `json:"max_tokens"`
		Temperature   float64   `json:"temperature"`
		Messages      []message `json:"messages"`
		StopSequences []string  `json:"stop_sequences,omitempty"`
	}
	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	req := messagesReq{
		Model:         p.config.Model,
		MaxTokens:     maxTokens,
		Temperature:   p.config.Temperature,
		Messages:      []message{{Role: "user", Content: prompt}},
		StopSequences: stop,
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := p.http.DoJSON(ctx, "POST", strings.TrimRight(p.config.BaseURL, "/")+"/messages", headers, req, &out); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: empty response")
	}
	return b.String(), nil
}
