package embeddings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// BackfillStats summarizes one backfill run
type BackfillStats struct {
	Embedded int           `json:"embedded"`
	Failed   int           `json:"failed"`
	Skipped  bool          `json:"skipped"` // Another run was in progress
	Duration time.Duration `json:"duration"`
}

// Backfiller embeds corpus documents that were curated without an embedding
type Backfiller struct {
	documents interfaces.DocumentStorage
	embedder  interfaces.EmbeddingService
	limit     int
	logger    arbor.ILogger

	mu           sync.Mutex
	isProcessing bool
}

// NewBackfiller creates a backfiller embedding at most limit documents per run (0 = no limit)
func NewBackfiller(documents interfaces.DocumentStorage, embedder interfaces.EmbeddingService, limit int, logger arbor.ILogger) *Backfiller {
	return &Backfiller{
		documents: documents,
		embedder:  embedder,
		limit:     limit,
		logger:    logger,
	}
}

// DocumentText is the text embedded for a document
func DocumentText(doc *models.Document) string {
	return doc.Question + "\n" + doc.Answer
}

// Run embeds documents lacking an embedding. Concurrent runs are skipped.
// A failure on one document is logged and does not stop the run.
func (b *Backfiller) Run(ctx context.Context) (*BackfillStats, error) {
	b.mu.Lock()
	if b.isProcessing {
		b.mu.Unlock()
		b.logger.Warn().Msg("Embedding backfill already in progress - skipping concurrent run")
		return &BackfillStats{Skipped: true}, nil
	}
	b.isProcessing = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.isProcessing = false
		b.mu.Unlock()
	}()

	start := time.Now()
	stats := &BackfillStats{}

	docs, err := b.documents.ListDocumentsWithoutEmbedding(ctx, b.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents without embedding: %w", err)
	}

	for _, doc := range docs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		vector, err := b.embedder.Embed(ctx, DocumentText(doc))
		if err != nil {
			stats.Failed++
			b.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to embed document")
			continue
		}

		doc.Embedding = models.Embedding{Values: vector}
		if err := b.documents.SaveDocument(ctx, doc); err != nil {
			stats.Failed++
			b.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to save embedded document")
			continue
		}
		stats.Embedded++
	}

	stats.Duration = time.Since(start)
	b.logger.Info().
		Int("embedded", stats.Embedded).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Embedding backfill completed")

	return stats, nil
}
