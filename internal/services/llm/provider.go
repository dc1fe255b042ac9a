package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/interfaces"
)

// ErrUnsupportedProvider is returned for provider names the factory does not know
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderOpenAI uses an OpenAI compatible chat completions endpoint
	ProviderOpenAI ProviderType = "openai"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
)

// jsonInstruction is appended to the system prompt for providers without a native JSON mode
const jsonInstruction = "Respond with a single JSON object and no other text."

// ProviderFactory is the generation gateway. It routes each request to a
// provider based on the model name, bounds every call by the configured
// timeout and shares one client-side rate limiter across providers.
// Clients are created lazily and are safe for concurrent use.
type ProviderFactory struct {
	config     *common.Config
	logger     arbor.ILogger
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration

	mu           sync.Mutex
	geminiClient *genai.Client
	claudeClient *anthropic.Client
	openaiClient *openai.Client
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, logger arbor.ILogger) (*ProviderFactory, error) {
	timeout, err := config.GenerationTimeout()
	if err != nil {
		return nil, err
	}

	switch ProviderType(config.LLM.DefaultProvider) {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.LLM.DefaultProvider)
	}

	var limiter *rate.Limiter
	if config.LLM.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.LLM.RateLimit), config.LLM.RateLimit)
	}

	return &ProviderFactory{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{},
		limiter:    limiter,
		timeout:    timeout,
	}, nil
}

// Provider returns the default provider name
func (f *ProviderFactory) Provider() string {
	return string(f.config.LLM.DefaultProvider)
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "gpt-4o" -> OpenAI
// - "claude-sonnet-4-5" or "claude/claude-sonnet-4-5" -> Claude
// - "gemini-2.5-flash" or "gemini/gemini-2.5-flash" -> Gemini
// - Empty or unrecognized -> the configured default provider
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(model, "openai/"), strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return ProviderOpenAI
	}
	return ProviderType(f.config.LLM.DefaultProvider)
}

// NormalizeModel removes provider prefix from model name if present
func NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/", "openai/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Generate runs one completion. It waits on the rate limiter, applies the
// configured timeout and does not retry.
func (f *ProviderFactory) Generate(ctx context.Context, req *interfaces.GenerationRequest) (*interfaces.GenerationResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("generation request has no messages")
	}

	provider := f.DetectProvider(req.Model)
	model := NormalizeModel(req.Model)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("message_count", len(req.Messages)).
		Bool("json_mode", req.JSONMode).
		Msg("Generating content with provider")

	start := time.Now()
	var (
		result *interfaces.GenerationResult
		err    error
	)
	switch provider {
	case ProviderClaude:
		result, err = f.generateWithClaude(ctx, req, model)
	case ProviderGemini:
		result, err = f.generateWithGemini(ctx, req, model)
	case ProviderOpenAI:
		result, err = f.generateWithOpenAI(ctx, req, model)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s generation timed out after %s: %w", provider, f.timeout, context.DeadlineExceeded)
		}
		return nil, err
	}

	result.LatencyMs = time.Since(start).Milliseconds()
	if result.Model == "" {
		result.Model = model
	}
	return result, nil
}

// getGeminiClient returns a Gemini client, creating one if necessary
func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}
	if f.config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

// getClaudeClient returns a Claude client, creating one if necessary
func (f *ProviderFactory) getClaudeClient() (*anthropic.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claudeClient != nil {
		return f.claudeClient, nil
	}
	if f.config.Claude.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is not configured")
	}

	// Retries are disabled, a failed call goes straight to the caller
	opts := []option.RequestOption{
		option.WithAPIKey(f.config.Claude.APIKey),
		option.WithHTTPClient(f.httpClient),
		option.WithMaxRetries(0),
	}
	if f.config.Claude.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(f.config.Claude.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	f.claudeClient = &client
	return f.claudeClient, nil
}

// getOpenAIClient returns an OpenAI client, creating one if necessary
func (f *ProviderFactory) getOpenAIClient() (*openai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openaiClient != nil {
		return f.openaiClient, nil
	}
	if f.config.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(f.config.OpenAI.APIKey),
		openaioption.WithHTTPClient(f.httpClient),
		openaioption.WithMaxRetries(0),
	}
	if f.config.OpenAI.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(f.config.OpenAI.BaseURL))
	}

	client := openai.NewClient(opts...)
	f.openaiClient = &client
	return f.openaiClient, nil
}

// splitSystem separates system messages from the conversation. Providers
// that take a single system instruction get all system messages joined.
func splitSystem(messages []interfaces.Message) (string, []interfaces.Message, error) {
	var system []string
	conversation := make([]interfaces.Message, 0, len(messages))
	hasUser := false

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		default:
			if msg.Role == "user" {
				hasUser = true
			}
			conversation = append(conversation, msg)
		}
	}
	if !hasUser {
		return "", nil, fmt.Errorf("at least one message must have role 'user'")
	}
	return strings.Join(system, "\n\n"), conversation, nil
}

// Close releases provider clients
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geminiClient = nil
	f.claudeClient = nil
	return nil
}
