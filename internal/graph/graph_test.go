package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/dataflows"
	"github.com/laochendeai/tradingagents-go/internal/llm"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// scriptedProvider replies with canned prose so the deterministic parsers
// produce predictable structured content.
type scriptedProvider struct {
	calls atomic.Int32
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.calls.Add(1)
	return "技术面明确上涨，利好消息较多，建议买入，仓位：15%，风险较低。较为确信。", nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.RetryBaseDelay = time.Millisecond
	cfg.Memory.Backend = config.MemoryBackendKeyword
	cfg.OnlineData = false
	return cfg
}

func newTestGraph(t *testing.T, cfg *config.Config, provider llm.Provider, opts ...Option) *TradingGraph {
	t.Helper()

	bindings := llm.NewBindings(nil, "scripted:model-x")
	gw := llm.NewGatewayWithProviders(
		map[string]llm.Provider{"scripted": provider},
		map[string]string{"scripted": "model-x"},
		cfg, bindings, &log.NoOpLogger{})

	opts = append(opts, WithGateway(gw))
	g, err := New(cfg, &log.NoOpLogger{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = g.Close(ctx)
	})
	return g
}

func TestAnalyzeStockCompletesAllStages(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})

	session, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Equal(t, "600519", session.Symbol)
	assert.False(t, session.EndTime.IsZero())

	results := session.Results
	require.NotNil(t, results.MarketData)
	assert.NotNil(t, results.MarketData.Comprehensive)

	require.NotNil(t, results.AnalystReports)
	assert.Len(t, results.AnalystReports.All(), 4)
	for _, r := range results.AnalystReports.All() {
		assert.True(t, r.OK(), "analyst %s", r.AgentID)
		assert.NotNil(t, r.Content)
	}

	require.NotNil(t, results.Research)
	assert.True(t, results.Research.BullResearch.OK())
	assert.True(t, results.Research.BearResearch.OK())
	assert.True(t, results.Research.Recommendation.OK())

	require.NotNil(t, results.TradingStrategy)
	strategy, ok := results.TradingStrategy.Content.(*models.StrategyContent)
	require.True(t, ok)
	assert.Equal(t, "买入", strategy.Action)
	assert.Equal(t, "15%", strategy.PositionSize)

	require.NotNil(t, results.Risk)
	assert.True(t, results.Risk.AggressiveAnalysis.OK())
	assert.True(t, results.Risk.ConservativeAnalysis.OK())
	assert.True(t, results.Risk.NeutralAnalysis.OK())
	require.True(t, results.Risk.FinalDecision.OK())

	decision, ok := results.Risk.FinalDecision.Content.(*models.DecisionContent)
	require.True(t, ok)
	assert.Equal(t, models.DecisionBuy, decision.FinalDecision)
}

func TestDebateRoundsFollowDepth(t *testing.T) {
	tests := []struct {
		depth  models.Depth
		rounds int
	}{
		{models.DepthShallow, 1},
		{models.DepthMedium, 3},
		{models.DepthDeep, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.depth), func(t *testing.T) {
			g := newTestGraph(t, testConfig(), &scriptedProvider{})

			session, err := g.AnalyzeStock(context.Background(), "600519", tt.depth)
			require.NoError(t, err)

			research := session.Results.Research
			require.NotNil(t, research)
			assert.Equal(t, tt.rounds, research.Rounds)
			require.Len(t, research.DebateRounds, tt.rounds)
			for i, round := range research.DebateRounds {
				assert.Equal(t, i+1, round.Round)
				assert.Contains(t, round.Responses, consts.BullResearcher)
				assert.Contains(t, round.Responses, consts.BearResearcher)
			}
		})
	}
}

func TestDeepDepthRevisesStrategyOnce(t *testing.T) {
	shallowProvider := &scriptedProvider{}
	g := newTestGraph(t, testConfig(), shallowProvider)
	_, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.NoError(t, err)

	deepProvider := &scriptedProvider{}
	g2 := newTestGraph(t, testConfig(), deepProvider)
	_, err = g2.AnalyzeStock(context.Background(), "600519", models.DepthDeep)
	require.NoError(t, err)

	// deep runs 4 extra debate rounds plus one trader revision
	assert.Equal(t, shallowProvider.calls.Load()+4*2+1, deepProvider.calls.Load())
}

func TestAnalyzeStockInvalidInput(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})

	_, err := g.AnalyzeStock(context.Background(), "", models.DepthShallow)
	assert.Error(t, err)

	_, err = g.AnalyzeStock(context.Background(), "600519", models.Depth("extreme"))
	assert.Error(t, err)
}

func TestAnalyzeStockDefaultsDepthToMedium(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})

	session, err := g.AnalyzeStock(context.Background(), "600519", "")
	require.NoError(t, err)
	assert.Equal(t, models.DepthMedium, session.Depth)
}

func TestAnalyzeStockCancellation(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := g.AnalyzeStock(ctx, "600519", models.DepthShallow)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionCancelled, session.Status)
	assert.NotEmpty(t, session.Error)
}

func TestWithAnalystsRestrictsFanOut(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{},
		WithAnalysts(consts.MarketAnalyst, consts.NewsAnalyst))

	session, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.NoError(t, err)

	reports := session.Results.AnalystReports
	require.NotNil(t, reports)
	assert.NotNil(t, reports.MarketAnalysis)
	assert.NotNil(t, reports.NewsAnalysis)
	assert.Nil(t, reports.SentimentAnalysis)
	assert.Nil(t, reports.FundamentalsAnalysis)
}

func TestNewRejectsUnknownAnalyst(t *testing.T) {
	cfg := testConfig()
	bindings := llm.NewBindings(nil, "scripted:model-x")
	gw := llm.NewGatewayWithProviders(
		map[string]llm.Provider{"scripted": &scriptedProvider{}},
		map[string]string{"scripted": "model-x"},
		cfg, bindings, &log.NoOpLogger{})

	_, err := New(cfg, &log.NoOpLogger{}, WithGateway(gw), WithAnalysts("chart_wizard"))
	assert.Error(t, err)
}

func TestSessionHistoryIsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.HistoryLimit = 3
	g := newTestGraph(t, cfg, &scriptedProvider{})

	var ids []string
	for i := 0; i < 5; i++ {
		session, err := g.AnalyzeStock(context.Background(), fmt.Sprintf("60051%d", i), models.DepthShallow)
		require.NoError(t, err)
		ids = append(ids, session.ID)
	}

	history := g.History()
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[4], history[2].ID)

	_, err := g.GetSession(ids[0])
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = g.GetSession(ids[4])
	assert.NoError(t, err)
}

func TestReflectStoresOutcome(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})

	session, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.NoError(t, err)

	before := g.Memory().Count()
	require.NoError(t, g.Reflect(context.Background(), session.ID, 0.12))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, g.Close(ctx))
	assert.Greater(t, g.Memory().Count(), before)

	hits, err := g.Memory().Search(context.Background(), "复盘", consts.Trader, 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestReflectUnknownSession(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{})
	err := g.Reflect(context.Background(), "missing-id", 0.05)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDebateParticipantsSeeOnlyPriorRounds(t *testing.T) {
	// the round-2 prompt must include round 1 text but not the concurrent
	// round-2 reply; capture the prompts to check
	provider := &capturingProvider{}
	g := newTestGraph(t, testConfig(), provider)

	_, err := g.AnalyzeStock(context.Background(), "600519", models.DepthMedium)
	require.NoError(t, err)

	sawHistory := false
	for _, p := range provider.Prompts() {
		if strings.Contains(p, "第1轮") && strings.Contains(p, "现在是第2轮辩论") {
			sawHistory = true
		}
	}
	assert.True(t, sawHistory, "round-2 rebuttal prompt should carry round-1 history")
}

type capturingProvider struct {
	mu      sync.Mutex
	prompts []string
}

func (p *capturingProvider) Name() string { return "scripted" }

func (p *capturingProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

func (p *capturingProvider) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	for _, m := range messages {
		if m.Role == schema.User {
			p.prompts = append(p.prompts, m.Content)
		}
	}
	p.mu.Unlock()
	return "建议买入，较为确信。", nil
}

type failingData struct{}

func (failingData) GetComprehensiveData(ctx context.Context, symbol string) (*models.ComprehensiveData, error) {
	return nil, dataflows.ErrDataUnavailable
}

func (failingData) GetMarketOverview(ctx context.Context) (*models.MarketOverview, error) {
	return nil, dataflows.ErrDataUnavailable
}

func TestDataCollectionFailureFailsSession(t *testing.T) {
	g := newTestGraph(t, testConfig(), &scriptedProvider{}, WithData(failingData{}))

	session, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataflows.ErrDataUnavailable)

	require.NotNil(t, session)
	assert.Equal(t, models.SessionFailed, session.Status)
	assert.NotEmpty(t, session.Error)
	assert.Nil(t, session.Results.AnalystReports)
	assert.Nil(t, session.Results.Risk)
}

// selectiveInvoker fails calls for one agent and delegates the rest.
type selectiveInvoker struct {
	inner   llm.Invoker
	failFor string
}

func (s *selectiveInvoker) Invoke(ctx context.Context, messages []*schema.Message, agentID string, opts ...llm.InvokeOption) (string, error) {
	if agentID == s.failFor {
		return "", fmt.Errorf("model backend down for %s", agentID)
	}
	return s.inner.Invoke(ctx, messages, agentID, opts...)
}

func TestFailingAnalystDoesNotAbortSession(t *testing.T) {
	cfg := testConfig()
	bindings := llm.NewBindings(nil, "scripted:model-x")
	gw := llm.NewGatewayWithProviders(
		map[string]llm.Provider{"scripted": &scriptedProvider{}},
		map[string]string{"scripted": "model-x"},
		cfg, bindings, &log.NoOpLogger{})

	g, err := New(cfg, &log.NoOpLogger{},
		WithGateway(&selectiveInvoker{inner: gw, failFor: consts.NewsAnalyst}))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = g.Close(ctx)
	})

	session, err := g.AnalyzeStock(context.Background(), "600519", models.DepthShallow)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)

	reports := session.Results.AnalystReports
	require.NotNil(t, reports)
	require.NotNil(t, reports.NewsAnalysis)
	assert.Equal(t, models.ResultError, reports.NewsAnalysis.Status)
	assert.Contains(t, reports.NewsAnalysis.Error, "model backend down")

	for _, r := range []*models.AgentResult{
		reports.MarketAnalysis, reports.SentimentAnalysis, reports.FundamentalsAnalysis,
	} {
		assert.True(t, r.OK())
	}

	require.NotNil(t, session.Results.Risk)
	assert.True(t, session.Results.Risk.FinalDecision.OK())
}
