package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStoreAddAndCount(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	id, err := store.Add(ctx, "600519 技术分析：上涨趋势", map[string]string{MetaAgentID: "market_analyst"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.Count())
}

func TestKeywordStoreScoring(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	_, err := store.Add(ctx, "600519", nil)
	require.NoError(t, err)
	_, err = store.Add(ctx, "600519 的一段很长很长的历史分析记录内容", nil)
	require.NoError(t, err)

	hits, err := store.Search(ctx, "600519", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// exact-length match scores highest and sorts first
	assert.Equal(t, "600519", hits[0].Content)
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestKeywordStoreThresholdFiltersLowScores(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	_, err := store.Add(ctx, "600519 加上一大段冗长内容让分数变得很低很低很低很低", nil)
	require.NoError(t, err)

	hits, err := store.Search(ctx, "600519", "", 10, 0.7)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.Search(ctx, "600519", "", 10, 0.01)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestKeywordStoreAgentScope(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	_, err := store.Add(ctx, "600519 技术观点", map[string]string{MetaAgentID: "market_analyst"})
	require.NoError(t, err)
	_, err = store.Add(ctx, "600519 新闻观点", map[string]string{MetaAgentID: "news_analyst"})
	require.NoError(t, err)

	hits, err := store.Search(ctx, "600519", "market_analyst", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "market_analyst", hits[0].Metadata[MetaAgentID])

	// empty agent id searches across all agents
	hits, err = store.Search(ctx, "600519", "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestKeywordStoreEmptyQueryMatchesAll(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	_, err := store.Add(ctx, "完全不相关的内容", map[string]string{MetaAgentID: "trader"})
	require.NoError(t, err)

	hits, err := store.Search(ctx, "", "trader", 10, 0.7)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1.0, hits[0].Score)
}

func TestKeywordStoreEvictsOldest(t *testing.T) {
	store := NewKeywordStore(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Add(ctx, fmt.Sprintf("记录-%d", i), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Count())

	hits, err := store.Search(ctx, "记录", "", 10, 0)
	require.NoError(t, err)
	contents := make([]string, 0, len(hits))
	for _, h := range hits {
		contents = append(contents, h.Content)
	}
	assert.NotContains(t, contents, "记录-0")
	assert.NotContains(t, contents, "记录-1")
	assert.Contains(t, contents, "记录-4")
}

func TestKeywordStoreLimit(t *testing.T) {
	store := NewKeywordStore(0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := store.Add(ctx, fmt.Sprintf("600519 分析记录 %d", i), nil)
		require.NoError(t, err)
	}

	hits, err := store.Search(ctx, "600519", "", 5, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}
