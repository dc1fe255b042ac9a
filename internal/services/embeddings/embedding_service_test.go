package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/models"
)

type stubProvider struct {
	vector []float32
	err    error
}

func (p *stubProvider) embed(ctx context.Context, text string) ([]float32, error) {
	return p.vector, p.err
}

func TestService_Embed(t *testing.T) {
	logger := arbor.NewLogger()

	service := newService(&stubProvider{vector: []float32{1, 2, 3}}, "m", 3, time.Second, logger)
	v, err := service.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	_, err = service.Embed(context.Background(), "")
	assert.Error(t, err)

	mismatch := newService(&stubProvider{vector: []float32{1, 2}}, "m", 3, time.Second, logger)
	_, err = mismatch.Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "dimension mismatch")

	empty := newService(&stubProvider{}, "m", 0, time.Second, logger)
	_, err = empty.Embed(context.Background(), "hello")
	assert.Error(t, err)

	failing := newService(&stubProvider{err: errors.New("quota exceeded")}, "m", 0, time.Second, logger)
	_, err = failing.Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewService_Providers(t *testing.T) {
	config := common.NewDefaultConfig()
	logger := arbor.NewLogger()

	for _, name := range []string{"openai", "ollama", "gemini"} {
		config.Embedding.Provider = name
		service, err := NewService(config, logger)
		require.NoError(t, err, name)
		assert.Equal(t, config.Embedding.Model, service.ModelName())
	}

	config.Embedding.Provider = "word2vec"
	_, err := NewService(config, logger)
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestOpenAIProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req["model"])
		assert.Equal(t, "reset password", req["input"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}],"usage":{"prompt_tokens":2,"total_tokens":2}}`)
	}))
	defer server.Close()

	p := newOpenAIProvider(server.Client(), server.URL+"/v1/", common.OpenAIConfig{APIKey: "sk-test"}, "text-embedding-3-small")
	v, err := p.embed(context.Background(), "reset password")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, v)
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"insufficient_quota","type":"insufficient_quota"}}`)
	}))
	defer server.Close()

	p := newOpenAIProvider(server.Client(), server.URL, common.OpenAIConfig{APIKey: "sk-test"}, "m")
	_, err := p.embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestOllamaProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"embedding":[1,0,0]}`)
	}))
	defer server.Close()

	p := newOllamaProvider(server.Client(), server.URL, "nomic-embed-text")
	v, err := p.embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)
}

// MockDocumentStorage is a mock implementation of DocumentStorage
type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentStorage) SaveDocuments(ctx context.Context, docs []*models.Document) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockDocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDocumentStorage) CountDocuments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStorage) ListDocumentsWithoutEmbedding(ctx context.Context, limit int) ([]*models.Document, error) {
	args := m.Called(ctx, limit)
	docs, _ := args.Get(0).([]*models.Document)
	return docs, args.Error(1)
}

type mapEmbedder struct {
	vectors map[string][]float32
}

func (e *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, errors.New("gateway unavailable")
}

func (e *mapEmbedder) ModelName() string { return "map" }

func TestBackfiller_Run(t *testing.T) {
	good := &models.Document{ID: "a", Question: "Reset password?", Answer: "Use Settings > Reset"}
	bad := &models.Document{ID: "b", Question: "Unknown", Answer: "?"}

	storage := new(MockDocumentStorage)
	storage.On("ListDocumentsWithoutEmbedding", mock.Anything, 10).Return([]*models.Document{good, bad}, nil)
	storage.On("SaveDocument", mock.Anything, mock.MatchedBy(func(d *models.Document) bool { return d.ID == "a" })).Return(nil)

	embedder := &mapEmbedder{vectors: map[string][]float32{DocumentText(good): {0.6, 0.8}}}
	backfiller := NewBackfiller(storage, embedder, 10, arbor.NewLogger())

	stats, err := backfiller.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, stats.Skipped)
	assert.Equal(t, []float32{0.6, 0.8}, good.Embedding.Values)
	storage.AssertNumberOfCalls(t, "SaveDocument", 1)
}

func TestBackfiller_ListError(t *testing.T) {
	storage := new(MockDocumentStorage)
	storage.On("ListDocumentsWithoutEmbedding", mock.Anything, 0).Return(nil, errors.New("closed"))

	_, err := NewBackfiller(storage, &mapEmbedder{}, 0, arbor.NewLogger()).Run(context.Background())
	assert.Error(t, err)
}
