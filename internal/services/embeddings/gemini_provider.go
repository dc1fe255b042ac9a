package embeddings

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// geminiProvider generates embeddings with the Gemini embedding models
type geminiProvider struct {
	apiKey    string
	model     string
	dimension int

	mu     sync.Mutex
	client *genai.Client
}

func newGeminiProvider(apiKey, model string, dimension int) *geminiProvider {
	return &geminiProvider{apiKey: apiKey, model: model, dimension: dimension}
}

func (p *geminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *geminiProvider) embed(ctx context.Context, text string) ([]float32, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	config := &genai.EmbedContentConfig{}
	if p.dimension > 0 {
		outputDim := int32(p.dimension)
		config.OutputDimensionality = &outputDim
	}

	result, err := client.Models.EmbedContent(ctx, p.model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini: no embedding returned")
	}
	return result.Embeddings[0].Values, nil
}
