package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidEmbedding is returned when a stored embedding cannot be turned into a vector
var ErrInvalidEmbedding = errors.New("invalid embedding")

// Document is a curated FAQ entry eligible for retrieval
type Document struct {
	ID        string    `json:"id" yaml:"id" toml:"id"`
	Question  string    `json:"question" yaml:"question" toml:"question"`
	Answer    string    `json:"answer" yaml:"answer" toml:"answer"`
	SourceURL string    `json:"source_url,omitempty" yaml:"source_url" toml:"source_url"`
	Embedding Embedding `json:"embedding" yaml:"-" toml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"-" toml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-" toml:"-"`
}

// ScoredCandidate is a Document matched against a query. It is never persisted.
type ScoredCandidate struct {
	Document
	Similarity float64 `json:"similarity"` // Cosine similarity rounded to 4 decimals
	Rank       int     `json:"rank"`
}

// Embedding holds a document vector in one of its two stored encodings:
// a native numeric sequence or a bracketed, comma separated text ("[0.1, 0.2]").
// Vector normalizes either form.
type Embedding struct {
	Values []float32
	Text   string
}

// NewEmbedding builds an Embedding from a loosely typed value as produced by
// TOML, YAML or JSON decoders into interface{}.
func NewEmbedding(v interface{}) (Embedding, error) {
	switch val := v.(type) {
	case nil:
		return Embedding{}, nil
	case string:
		return Embedding{Text: val}, nil
	case []float32:
		return Embedding{Values: val}, nil
	case []float64:
		values := make([]float32, len(val))
		for i, f := range val {
			values[i] = float32(f)
		}
		return Embedding{Values: values}, nil
	case []interface{}:
		values := make([]float32, len(val))
		for i, item := range val {
			f, ok := toFloat(item)
			if !ok {
				return Embedding{}, fmt.Errorf("%w: element %d has type %T", ErrInvalidEmbedding, i, item)
			}
			values[i] = float32(f)
		}
		return Embedding{Values: values}, nil
	default:
		return Embedding{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidEmbedding, v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// IsEmpty reports whether the document carries no embedding at all
func (e Embedding) IsEmpty() bool {
	return len(e.Values) == 0 && strings.TrimSpace(e.Text) == ""
}

// Vector returns the canonical numeric form of the embedding
func (e Embedding) Vector() ([]float32, error) {
	if len(e.Values) > 0 {
		return e.Values, nil
	}

	raw := strings.TrimSpace(e.Text)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidEmbedding)
	}

	parts := strings.Split(raw, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidEmbedding, i, err)
		}
		values[i] = float32(f)
	}
	return values, nil
}

// MarshalJSON writes the embedding in the encoding it was stored with
func (e Embedding) MarshalJSON() ([]byte, error) {
	if len(e.Values) == 0 && e.Text != "" {
		return json.Marshal(e.Text)
	}
	if len(e.Values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(e.Values)
}

// UnmarshalJSON accepts a numeric array, a bracketed string or null
func (e *Embedding) UnmarshalJSON(data []byte) error {
	var raw interface{}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	parsed, err := NewEmbedding(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
