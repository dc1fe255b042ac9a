package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// SeedDocument is one FAQ entry in a seed file. Embedding may be a numeric
// array or a bracketed string and may be omitted for later backfill.
//
// TOML:
//
//	[[faqs]]
//	id = "reset-password"
//	question = "How do I reset my password?"
//	answer = "Open Settings > Account > Reset password."
//	source_url = "https://help.example.com/reset"
type SeedDocument struct {
	ID        string      `json:"id" yaml:"id" toml:"id"`
	Question  string      `json:"question" yaml:"question" toml:"question"`
	Answer    string      `json:"answer" yaml:"answer" toml:"answer"`
	SourceURL string      `json:"source_url" yaml:"source_url" toml:"source_url"`
	Embedding interface{} `json:"embedding" yaml:"embedding" toml:"embedding"`
}

// SeedFile is the top level of a seed file
type SeedFile struct {
	FAQs []SeedDocument `json:"faqs" yaml:"faqs" toml:"faqs"`
}

// LoadDocumentsFromFiles upserts the FAQ entries of every seed file into the
// corpus. Missing files are skipped. Invalid entries are logged and skipped.
func LoadDocumentsFromFiles(ctx context.Context, documents interfaces.DocumentStorage, paths []string, logger arbor.ILogger) (int, error) {
	loaded := 0
	skipped := 0

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("file", path).Msg("Seed file does not exist, skipping")
				continue
			}
			return loaded, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}

		seeds, err := parseSeedFile(path, content)
		if err != nil {
			return loaded, fmt.Errorf("failed to parse seed file %s: %w", path, err)
		}

		for i, seed := range seeds {
			doc, err := seed.toDocument()
			if err != nil {
				logger.Warn().
					Err(err).
					Str("file", filepath.Base(path)).
					Int("index", i).
					Msg("Skipping seed document")
				skipped++
				continue
			}

			// Keep a stored embedding when the seed carries none
			if doc.Embedding.IsEmpty() {
				if existing, err := documents.GetDocument(ctx, doc.ID); err == nil {
					doc.Embedding = existing.Embedding
					doc.CreatedAt = existing.CreatedAt
				}
			}

			if err := documents.SaveDocument(ctx, doc); err != nil {
				return loaded, fmt.Errorf("failed to save seed document %s: %w", doc.ID, err)
			}
			loaded++
		}
	}

	logger.Info().
		Int("loaded", loaded).
		Int("skipped", skipped).
		Int("files", len(paths)).
		Msg("Corpus seed files loaded")

	return loaded, nil
}

func parseSeedFile(path string, content []byte) ([]SeedDocument, error) {
	var file SeedFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(content, &file); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &file); err != nil {
			return nil, err
		}
	case ".json":
		trimmed := bytes.TrimSpace(content)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &file.FAQs); err != nil {
				return nil, err
			}
		} else if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", filepath.Ext(path))
	}

	return file.FAQs, nil
}

func (s SeedDocument) toDocument() (*models.Document, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if s.Question == "" || s.Answer == "" {
		return nil, fmt.Errorf("document %s: question and answer are required", s.ID)
	}

	embedding, err := models.NewEmbedding(s.Embedding)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", s.ID, err)
	}
	if !embedding.IsEmpty() {
		if _, err := embedding.Vector(); err != nil {
			return nil, fmt.Errorf("document %s: %w", s.ID, err)
		}
	}

	return &models.Document{
		ID:        s.ID,
		Question:  s.Question,
		Answer:    s.Answer,
		SourceURL: s.SourceURL,
		Embedding: embedding,
	}, nil
}
