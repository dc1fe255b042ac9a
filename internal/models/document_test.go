package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingVector(t *testing.T) {
	tests := []struct {
		name      string
		embedding Embedding
		want      []float32
		wantErr   bool
	}{
		{name: "native values", embedding: Embedding{Values: []float32{0.1, 0.2}}, want: []float32{0.1, 0.2}},
		{name: "bracketed text", embedding: Embedding{Text: "[0.1, 0.2,0.3]"}, want: []float32{0.1, 0.2, 0.3}},
		{name: "unbracketed text", embedding: Embedding{Text: "1,2"}, want: []float32{1, 2}},
		{name: "empty brackets", embedding: Embedding{Text: "[]"}, wantErr: true},
		{name: "garbage", embedding: Embedding{Text: "[0.1, abc]"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.embedding.Vector()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmbedding)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}

func TestEmbeddingIsEmpty(t *testing.T) {
	assert.True(t, Embedding{}.IsEmpty())
	assert.True(t, Embedding{Text: "  "}.IsEmpty())
	assert.False(t, Embedding{Text: "[1]"}.IsEmpty())
	assert.False(t, Embedding{Values: []float32{1}}.IsEmpty())
}

func TestNewEmbedding(t *testing.T) {
	e, err := NewEmbedding([]interface{}{int64(1), 0.5})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5}, e.Values)

	e, err = NewEmbedding("[1,2]")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", e.Text)

	e, err = NewEmbedding(nil)
	require.NoError(t, err)
	assert.True(t, e.IsEmpty())

	_, err = NewEmbedding([]interface{}{"x"})
	assert.ErrorIs(t, err, ErrInvalidEmbedding)

	_, err = NewEmbedding(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidEmbedding)
}

func TestDocumentJSONAcceptsBothEncodings(t *testing.T) {
	var native, text Document
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","question":"q","embedding":[0.5,1]}`), &native))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","question":"q","embedding":"[0.5,1]"}`), &text))

	a, err := native.Embedding.Vector()
	require.NoError(t, err)
	b, err := text.Embedding.Vector()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	out, err := json.Marshal(text)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"embedding":"[0.5,1]"`)
}
