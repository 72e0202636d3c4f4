package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laochendeai/tradingagents-go/internal/config"
)

// stubEmbedder maps known texts to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestVectorStore(t *testing.T, embedder Embedder) *VectorStore {
	t.Helper()
	store, err := NewVectorStore(config.MemoryConfig{
		PersistDir:     t.TempDir(),
		CollectionName: "test_memory",
	}, embedder)
	require.NoError(t, err)
	return store
}

func TestVectorStoreRequiresEmbedder(t *testing.T) {
	_, err := NewVectorStore(config.MemoryConfig{PersistDir: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestVectorStoreSimilarityRanking(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"查询":   {1, 0, 0},
		"非常相似": {0.9, 0.1, 0},
		"不太相似": {0.5, 0.5, 0},
		"完全无关": {0, 1, 0},
	}}
	store := newTestVectorStore(t, embedder)
	ctx := context.Background()

	for _, content := range []string{"非常相似", "不太相似", "完全无关"} {
		_, err := store.Add(ctx, content, nil)
		require.NoError(t, err)
	}

	hits, err := store.Search(ctx, "查询", "", 10, 0.6)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "非常相似", hits[0].Content)
	assert.Equal(t, "不太相似", hits[1].Content)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestVectorStoreAgentScope(t *testing.T) {
	store := newTestVectorStore(t, &stubEmbedder{})
	ctx := context.Background()

	_, err := store.Add(ctx, "甲的记忆", map[string]string{MetaAgentID: "trader"})
	require.NoError(t, err)
	_, err = store.Add(ctx, "乙的记忆", map[string]string{MetaAgentID: "risk_manager"})
	require.NoError(t, err)

	hits, err := store.Search(ctx, "记忆", "trader", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "甲的记忆", hits[0].Content)
}

func TestVectorStorePersistsAcrossReopen(t *testing.T) {
	embedder := &stubEmbedder{}
	cfg := config.MemoryConfig{
		PersistDir:     t.TempDir(),
		CollectionName: "reopen",
	}

	store, err := NewVectorStore(cfg, embedder)
	require.NoError(t, err)
	_, err = store.Add(context.Background(), "持久化的记忆", map[string]string{MetaAgentID: "trader"})
	require.NoError(t, err)

	reopened, err := NewVectorStore(cfg, embedder)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())

	hits, err := reopened.Search(context.Background(), "持久化的记忆", "trader", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "持久化的记忆", hits[0].Content)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestNewFactorySelectsBackend(t *testing.T) {
	store, err := New(config.MemoryConfig{Backend: config.MemoryBackendKeyword})
	require.NoError(t, err)
	assert.IsType(t, &KeywordStore{}, store)

	_, err = New(config.MemoryConfig{Backend: "chroma"})
	assert.Error(t, err)
}
