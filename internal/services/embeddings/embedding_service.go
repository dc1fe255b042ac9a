package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
)

// ErrUnsupportedProvider is returned for unknown embedding providers
var ErrUnsupportedProvider = errors.New("unsupported embedding provider")

// provider is one embedding backend
type provider interface {
	embed(ctx context.Context, text string) ([]float32, error)
}

// Service implements EmbeddingService on top of a configured provider
type Service struct {
	provider  provider
	model     string
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewService creates the embedding service selected by config.Embedding.Provider
func NewService(config *common.Config, logger arbor.ILogger) (*Service, error) {
	timeout, err := config.EmbeddingTimeout()
	if err != nil {
		return nil, err
	}

	var p provider
	httpClient := &http.Client{}
	switch config.Embedding.Provider {
	case "openai":
		p = newOpenAIProvider(httpClient, config.Embedding.BaseURL, config.OpenAI, config.Embedding.Model)
	case "ollama":
		p = newOllamaProvider(httpClient, config.Embedding.BaseURL, config.Embedding.Model)
	case "gemini":
		p = newGeminiProvider(config.Gemini.APIKey, config.Embedding.Model, config.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Embedding.Provider)
	}

	return newService(p, config.Embedding.Model, config.Embedding.Dimension, timeout, logger), nil
}

func newService(p provider, model string, dimension int, timeout time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		provider:  p,
		model:     model,
		dimension: dimension,
		timeout:   timeout,
		logger:    logger,
	}
}

// Embed creates a vector embedding for text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	embedding, err := s.provider.embed(ctx, text)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("provider returned empty embedding")
	}
	if s.dimension > 0 && len(embedding) != s.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(embedding))
	}

	s.logger.Debug().
		Str("model", s.model).
		Int("embedding_dim", len(embedding)).
		Dur("duration", duration).
		Msg("Generated embedding")

	return embedding, nil
}

// ModelName returns the embedding model identifier
func (s *Service) ModelName() string {
	return s.model
}
