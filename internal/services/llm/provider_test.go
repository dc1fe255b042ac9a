package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/interfaces"
)

func newTestFactory(t *testing.T, baseURL string, timeout string) *ProviderFactory {
	t.Helper()
	config := common.NewDefaultConfig()
	config.OpenAI.APIKey = "sk-test"
	config.OpenAI.BaseURL = baseURL
	config.LLM.Timeout = timeout
	config.LLM.RateLimit = 0

	factory, err := NewProviderFactory(config, arbor.NewLogger())
	require.NoError(t, err)
	return factory
}

func testRequest() *interfaces.GenerationRequest {
	return &interfaces.GenerationRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "hello"},
		},
		Model:       "gpt-4o",
		MaxTokens:   500,
		Temperature: 0.3,
		JSONMode:    true,
	}
}

func TestDetectProvider(t *testing.T) {
	factory := newTestFactory(t, "", "30s")

	tests := map[string]ProviderType{
		"gpt-4o":                  ProviderOpenAI,
		"openai/gpt-4o-mini":      ProviderOpenAI,
		"claude-sonnet-4-5":       ProviderClaude,
		"anthropic/claude-haiku":  ProviderClaude,
		"gemini-2.5-flash":        ProviderGemini,
		"google/gemini-2.5-flash": ProviderGemini,
		"":                        ProviderOpenAI,
		"some-local-model":        ProviderOpenAI,
	}
	for model, want := range tests {
		assert.Equal(t, want, factory.DetectProvider(model), model)
	}

	assert.Equal(t, "gpt-4o-mini", NormalizeModel("openai/gpt-4o-mini"))
	assert.Equal(t, "claude-sonnet-4-5", NormalizeModel("claude-sonnet-4-5"))
}

func TestNewProviderFactory_RejectsUnknownProvider(t *testing.T) {
	config := common.NewDefaultConfig()
	config.LLM.DefaultProvider = "mystery"

	_, err := NewProviderFactory(config, arbor.NewLogger())
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestGenerate_OpenAI(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"response\":\"hi\"}"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`)
	}))
	defer server.Close()

	factory := newTestFactory(t, server.URL, "5s")

	result, err := factory.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, `{"response":"hi"}`, result.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", result.Model)
	assert.Equal(t, 120, result.InputTokens)
	assert.Equal(t, 30, result.OutputTokens)
	assert.GreaterOrEqual(t, result.LatencyMs, int64(0))

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, float64(500), captured["max_tokens"])
	assert.InDelta(t, 0.3, captured["temperature"], 0.0001)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, captured["response_format"])
	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestGenerate_OpenAIErrorStatus(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer server.Close()

	factory := newTestFactory(t, server.URL, "5s")

	_, err := factory.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))
	assert.Equal(t, "rate_limit", ErrorKind(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGenerate_ClaudeDoesNotRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error","message":"Too many requests"}}`)
	}))
	defer server.Close()

	config := common.NewDefaultConfig()
	config.Claude.APIKey = "sk-ant-test"
	config.Claude.BaseURL = server.URL
	config.LLM.Timeout = "5s"
	config.LLM.RateLimit = 0

	factory, err := NewProviderFactory(config, arbor.NewLogger())
	require.NoError(t, err)

	req := testRequest()
	req.Model = "claude-haiku-4-5"

	_, err = factory.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "rate_limit", ErrorKind(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	factory := newTestFactory(t, server.URL, "50ms")

	_, err := factory.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "timeout", ErrorKind(err))
}

func TestGenerate_NoMessages(t *testing.T) {
	factory := newTestFactory(t, "", "5s")
	_, err := factory.Generate(context.Background(), &interfaces.GenerationRequest{})
	assert.Error(t, err)
}

func TestSplitSystem(t *testing.T) {
	system, conversation, err := splitSystem([]interfaces.Message{
		{Role: "system", Content: "prompt"},
		{Role: "system", Content: "[Earlier context]"},
		{Role: "assistant", Content: "a"},
		{Role: "user", Content: "u"},
	})
	require.NoError(t, err)
	assert.Equal(t, "prompt\n\n[Earlier context]", system)
	assert.Len(t, conversation, 2)

	_, _, err = splitSystem([]interfaces.Message{{Role: "system", Content: "only"}})
	assert.Error(t, err)
}

func TestConvertMessages(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}

	claudeMessages, claudeSystem, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "prompt", claudeSystem)
	assert.Len(t, claudeMessages, 3)

	contents, geminiSystem, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "prompt", geminiSystem)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].Role)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "timeout", ErrorKind(fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
	assert.Equal(t, "rate_limit", ErrorKind(errors.New("RESOURCE_EXHAUSTED")))
	assert.Equal(t, "transport", ErrorKind(errors.New("connection refused")))
}
