package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// Anthropic implements Generator for the Messages API.
type Anthropic struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
	Client    *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h Anthropic) Configured() bool {
	return strings.TrimSpace(h.APIKey) != ""
}

func (h Anthropic) Generate(ctx context.Context, system, prompt string) (string, error) {
	maxTokens := h.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	payload := anthropicRequest{
		Model:     h.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	b, _ := json.Marshal(payload)

	base := h.BaseURL
	if strings.TrimSpace(base) == "" {
		base = defaultAnthropicBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/v1/messages", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", h.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := h.Client
	if client == nil {
		client = newTracedClient(ctx, h.Timeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", mapTransportError(err)
	}
	defer resp.Body.Close()

	var r anthropicResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&r)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", RateLimitError{}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && r.Error != nil {
			return "", fmt.Errorf("llm http error: %s: %s: %s", resp.Status, r.Error.Type, r.Error.Message)
		}
		return "", fmt.Errorf("llm http error: %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode llm response: %w", decodeErr)
	}

	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty llm response")
	}
	return sb.String(), nil
}
