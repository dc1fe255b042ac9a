package interfaces

import (
	"context"
)

// Message represents a single message in a generation prompt
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// GenerationRequest is the input of one text generation call
type GenerationRequest struct {
	// Messages in prompt order. System messages may appear anywhere; providers
	// without inline system turns hoist them into their system instruction.
	Messages []Message

	// Model overrides the provider default when set
	Model string

	MaxTokens   int
	Temperature float32

	// JSONMode requests a machine-parseable JSON object reply. It is best-effort:
	// callers must still handle malformed output.
	JSONMode bool
}

// GenerationResult carries the generated text and its usage metadata
type GenerationResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

// GenerationService defines the text generation gateway.
// Implementations enforce their own timeout bound and do not retry.
type GenerationService interface {
	// Generate runs one completion.
	//
	// Parameters:
	//   - ctx: Context for cancellation; the implementation adds its configured timeout
	//   - req: Messages and sampling parameters
	//
	// Returns:
	//   - *GenerationResult: Generated text, resolved model, token counts and latency
	//   - error: Transport, quota or timeout failure
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)

	// Provider returns the provider name ("openai", "claude", "gemini")
	Provider() string
}
