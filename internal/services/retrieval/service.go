// Package retrieval scores the FAQ corpus against a query embedding.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/tracing"
)

// StepName is the trace step recorded by Search
const StepName = "faq_search"

var errEmptyCorpus = errors.New("no FAQ documents in corpus")

// Service is the semantic retrieval engine. The corpus is small enough to
// score with a full scan on every query.
type Service struct {
	documents interfaces.DocumentStorage
	embedder  interfaces.EmbeddingService
	threshold float64
	limit     int
	logger    arbor.ILogger
}

// NewService creates a retrieval service returning at most limit candidates
// with similarity at or above threshold.
func NewService(documents interfaces.DocumentStorage, embedder interfaces.EmbeddingService, threshold float64, limit int, logger arbor.ILogger) *Service {
	if limit <= 0 {
		limit = 3
	}
	return &Service{
		documents: documents,
		embedder:  embedder,
		threshold: threshold,
		limit:     limit,
		logger:    logger,
	}
}

// Search embeds query and returns the best matching documents, highest
// similarity first. It never fails: gateway or storage errors yield an empty
// result and are recorded on the trace step. trace may be nil.
func (s *Service) Search(ctx context.Context, query string, trace *tracing.Trace) []models.ScoredCandidate {
	var step *tracing.Step
	if trace != nil {
		step = trace.StartStep(StepName)
	}

	results, stats, err := s.search(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("step", StepName).Msg("FAQ search failed, continuing without matches")
		if step != nil {
			step.Stop(tracing.Fields{
				"error":   tracing.String(err.Error()),
				"matches": tracing.Int(0),
			})
		}
		return []models.ScoredCandidate{}
	}

	topScore := 0.0
	if len(results) > 0 {
		topScore = results[0].Similarity
	}

	s.logger.Debug().
		Int("total_faqs", stats.total).
		Int("above_threshold", stats.aboveThreshold).
		Int("skipped", stats.skipped).
		Int("returned", len(results)).
		Str("top_score", fmt.Sprintf("%.4f", topScore)).
		Msg("FAQ search completed")

	if step != nil {
		step.Stop(tracing.Fields{
			"total_faqs":              tracing.Int(stats.total),
			"matches_above_threshold": tracing.Int(stats.aboveThreshold),
			"returned":                tracing.Int(len(results)),
			"top_score":               tracing.Number(topScore),
			"threshold":               tracing.Number(s.threshold),
			"skipped":                 tracing.Int(stats.skipped),
			"embedding_model":         tracing.String(s.embedder.ModelName()),
		})
	}

	return results
}

type searchStats struct {
	total          int
	aboveThreshold int
	skipped        int
}

func (s *Service) search(ctx context.Context, query string) ([]models.ScoredCandidate, searchStats, error) {
	var stats searchStats

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to embed query: %w", err)
	}

	docs, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(docs) == 0 {
		return nil, stats, errEmptyCorpus
	}
	stats.total = len(docs)

	scored := make([]models.ScoredCandidate, 0, len(docs))
	for _, doc := range docs {
		if doc == nil || doc.Embedding.IsEmpty() {
			continue
		}
		vector, err := doc.Embedding.Vector()
		if err != nil || len(vector) != len(queryVector) {
			stats.skipped++
			continue
		}

		similarity := CosineSimilarity(queryVector, vector)
		if similarity < s.threshold {
			continue
		}
		scored = append(scored, models.ScoredCandidate{
			Document:   *doc,
			Similarity: round4(similarity),
		})
	}
	stats.aboveThreshold = len(scored)

	// Stable so that equal scores keep corpus scan order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > s.limit {
		scored = scored[:s.limit]
	}
	for i := range scored {
		scored[i].Rank = i
	}

	return scored, stats, nil
}
