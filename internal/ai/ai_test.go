package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsConfigured(t *testing.T) {
	assert.False(t, IsConfigured(nil))
	assert.False(t, IsConfigured(OpenAICompat{Model: "gpt-4o"}))
	assert.True(t, IsConfigured(OpenAICompat{Model: "gpt-4o", APIKey: "sk-test"}))
	assert.False(t, IsConfigured(Anthropic{}))
	assert.True(t, IsConfigured(MockGenerator{}))
}

func TestOpenAICompatSendsSystemAndUserTurns(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"status\":\"OK\"}"}}]}`))
	}))
	defer srv.Close()

	g := OpenAICompat{BaseURL: srv.URL + "/v1", Model: "gpt-4o", APIKey: "sk-test", Client: srv.Client()}
	text, err := g.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"OK"}`, text)
	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAICompatRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"7s"}]}}`))
	}))
	defer srv.Close()

	g := OpenAICompat{BaseURL: srv.URL, Model: "m", APIKey: "k", Client: srv.Client()}
	_, err := g.Generate(context.Background(), "s", "p")
	var rl RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "7s", rl.RetryAfter.String())
}

func TestOpenAICompatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := OpenAICompat{BaseURL: srv.URL, Model: "m", APIKey: "k", Client: srv.Client()}
	_, err := g.Generate(context.Background(), "s", "p")
	assert.Error(t, err)
}

func TestAnthropicJoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, 1024, req.MaxTokens)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"status\":"},{"type":"text","text":"\"NG\"}"}]}`))
	}))
	defer srv.Close()

	g := Anthropic{BaseURL: srv.URL, Model: "claude", APIKey: "k", Client: srv.Client()}
	text, err := g.Generate(context.Background(), "sys", "p")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"NG"}`, text)
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	g := Anthropic{BaseURL: srv.URL, Model: "claude", APIKey: "k", Client: srv.Client()}
	_, err := g.Generate(context.Background(), "sys", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMockGenerator(t *testing.T) {
	g := MockGenerator{ModelVersion: "mock-v1"}
	ok, err := g.Generate(context.Background(), "sys", "## タイトル\nメニュー変更\n\n## 指示内容\n全部書いた")
	require.NoError(t, err)
	assert.Contains(t, ok, `"status": "OK"`)
	assert.Contains(t, ok, "メニュー変更")

	ng, err := g.Generate(context.Background(), "sys", "## タイトル\nx\n\n## 指示内容\n画像は後で送ります")
	require.NoError(t, err)
	assert.Contains(t, ng, `"status": "NG"`)
}
