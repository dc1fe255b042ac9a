package interfaces

import (
	"context"
)

// EmbeddingService converts text to a fixed-length vector
type EmbeddingService interface {
	// Embed generates an embedding for text. May fail with a transport or quota error.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the embedding model identifier
	ModelName() string
}
