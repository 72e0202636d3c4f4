package agents

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/llm"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/memory"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// stubInvoker records the last prompt and replies with fixed text.
type stubInvoker struct {
	mu         sync.Mutex
	lastPrompt string
	reply      string
	err        error
}

func (s *stubInvoker) Invoke(ctx context.Context, messages []*schema.Message, agentID string, opts ...llm.InvokeOption) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	for _, m := range messages {
		if m.Role == schema.User {
			s.lastPrompt = m.Content
		}
	}
	s.mu.Unlock()
	return s.reply, nil
}

func testSpec() Spec {
	return Spec{
		ID:           "market_analyst",
		Type:         "analyst",
		AnalysisType: "technical_analysis",
		SystemPrompt: "你是技术分析师。",
		BuildUser: func(in *Input) string {
			return "请分析 " + in.Symbol
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return &models.MarketContent{Symbol: symbol, Summary: raw}
		},
	}
}

func newTestBase(invoker llm.Invoker, store memory.Store) (*Base, *memory.Writer) {
	cfg := config.DefaultConfig()
	var w *memory.Writer
	if store != nil {
		w = memory.NewWriter(store, &log.NoOpLogger{})
	}
	return NewBase(testSpec(), invoker, w, cfg, &log.NoOpLogger{}), w
}

func TestAnalyzeSuccess(t *testing.T) {
	invoker := &stubInvoker{reply: "趋势上涨，建议买入"}
	base, _ := newTestBase(invoker, nil)

	result := base.Analyze(context.Background(), &Input{Symbol: "600519", Depth: models.DepthMedium})
	require.NotNil(t, result)
	assert.True(t, result.OK())
	assert.Equal(t, "market_analyst", result.AgentID)
	assert.Equal(t, "600519", result.Symbol)
	assert.Equal(t, "趋势上涨，建议买入", result.RawResponse)

	content, ok := result.Content.(*models.MarketContent)
	require.True(t, ok)
	assert.Equal(t, "600519", content.Symbol)
}

func TestAnalyzeCancellationYieldsErrorResult(t *testing.T) {
	invoker := &stubInvoker{err: context.Canceled}
	base, _ := newTestBase(invoker, nil)

	result := base.Analyze(context.Background(), &Input{Symbol: "600519"})
	require.NotNil(t, result)
	assert.False(t, result.OK())
	assert.Equal(t, models.ResultError, result.Status)
	assert.Contains(t, result.Error, "context canceled")
	assert.Nil(t, result.Content)
}

func TestAnalyzePersistsMemory(t *testing.T) {
	store := memory.NewKeywordStore(0)
	invoker := &stubInvoker{reply: "看涨"}
	base, w := newTestBase(invoker, store)

	base.Analyze(context.Background(), &Input{Symbol: "600519"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Close(ctx))
	require.Equal(t, 1, store.Count())

	hits, err := store.Search(ctx, "", "market_analyst", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Content, "600519")
	assert.Contains(t, hits[0].Content, "看涨")
}

func TestAnalyzeIncludesRecalledMemories(t *testing.T) {
	store := memory.NewKeywordStore(0)
	_, err := store.Add(context.Background(), "600519 technical_analysis 之前的分析结论",
		map[string]string{memory.MetaAgentID: "market_analyst"})
	require.NoError(t, err)

	invoker := &stubInvoker{reply: "回复"}
	cfg := config.DefaultConfig()
	cfg.Memory.SimilarityThreshold = 0 // recall everything for the test
	w := memory.NewWriter(store, &log.NoOpLogger{})
	base := NewBase(testSpec(), invoker, w, cfg, &log.NoOpLogger{})

	base.Analyze(context.Background(), &Input{Symbol: "600519"})
	assert.Contains(t, invoker.lastPrompt, "历史分析参考")
	assert.Contains(t, invoker.lastPrompt, "之前的分析结论")
}

func TestDigestMemoriesTruncates(t *testing.T) {
	long := strings.Repeat("长", 500)
	digest := digestMemories([]memory.Memory{
		{Content: long}, {Content: "b"}, {Content: "c"}, {Content: "d"}, {Content: "e"},
	})

	// at most three items, each capped
	assert.Equal(t, 3, strings.Count(digest, "\n"))
	assert.Contains(t, digest, "…")
	assert.NotContains(t, digest, "d")
	assert.Less(t, len([]rune(digest)), 3*260)
}

func TestRebutCarriesHistory(t *testing.T) {
	invoker := &stubInvoker{reply: "反驳观点"}
	base, _ := newTestBase(invoker, nil)

	history := []models.DebateRound{
		{Round: 1, Responses: map[string]string{"bull_researcher": "看多理由", "bear_researcher": "看空理由"}},
	}
	text, err := base.Rebut(context.Background(), &Input{Symbol: "600519", Depth: models.DepthMedium}, 2, history)
	require.NoError(t, err)
	assert.Equal(t, "反驳观点", text)
	assert.Contains(t, invoker.lastPrompt, "第1轮")
	assert.Contains(t, invoker.lastPrompt, "看多理由")
	assert.Contains(t, invoker.lastPrompt, "现在是第2轮辩论")
}

func TestFormatSnapshotHandlesMissingSections(t *testing.T) {
	assert.Equal(t, "市场数据暂不可用。", FormatSnapshot(nil))
	assert.Equal(t, "市场数据暂不可用。", FormatSnapshot(&models.MarketSnapshot{}))

	snapshot := &models.MarketSnapshot{
		Symbol: "600519",
		Comprehensive: &models.ComprehensiveData{
			Symbol: "600519",
			Price:  &models.PriceData{Symbol: "600519", Name: "贵州茅台", CurrentPrice: 1500},
		},
	}
	out := FormatSnapshot(snapshot)
	assert.Contains(t, out, "贵州茅台")
	assert.Contains(t, out, "1500")
}

func TestFormatReportsMarksFailures(t *testing.T) {
	reports := &models.AnalystReports{
		MarketAnalysis: &models.AgentResult{
			AgentID: "market_analyst", Status: models.ResultSuccess, RawResponse: "看涨",
		},
		NewsAnalysis: &models.AgentResult{
			AgentID: "news_analyst", Status: models.ResultError, Error: "超时",
		},
	}
	out := FormatReports(reports)
	assert.Contains(t, out, "看涨")
	assert.Contains(t, out, "分析失败")
	assert.Contains(t, out, "超时")
}
