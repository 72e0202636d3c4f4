package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSession(id string, started time.Time) *models.AnalysisSession {
	return &models.AnalysisSession{
		ID:        id,
		Symbol:    "600519",
		Depth:     models.DepthMedium,
		Status:    models.SessionCompleted,
		StartTime: started,
		EndTime:   started.Add(30 * time.Second),
		Results: models.StageResults{
			TradingStrategy: &models.AgentResult{
				AgentID: "trader",
				Status:  models.ResultSuccess,
				Content: &models.StrategyContent{Symbol: "600519", Action: "买入", PositionSize: "15%"},
			},
			Risk: &models.RiskResults{
				FinalDecision: &models.AgentResult{
					AgentID: "risk_manager",
					Status:  models.ResultSuccess,
					Content: &models.DecisionContent{
						Symbol:        "600519",
						FinalDecision: models.DecisionBuy,
						FinalPosition: "15-20%",
					},
				},
			},
		},
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	session := sampleSession("sess-1", started)
	require.NoError(t, store.SaveSession(ctx, session))

	loaded, err := store.LoadSession(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "600519", loaded.Symbol)
	assert.Equal(t, models.DepthMedium, loaded.Depth)
	assert.Equal(t, models.SessionCompleted, loaded.Status)
	assert.WithinDuration(t, started, loaded.StartTime, time.Second)

	strategy, ok := loaded.Results.TradingStrategy.Content.(*models.StrategyContent)
	require.True(t, ok)
	assert.Equal(t, "买入", strategy.Action)

	decision, ok := loaded.Results.Risk.FinalDecision.Content.(*models.DecisionContent)
	require.True(t, ok)
	assert.Equal(t, models.DecisionBuy, decision.FinalDecision)
}

func TestSaveSessionUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession("sess-1", time.Now().UTC())
	session.Status = models.SessionRunning
	require.NoError(t, store.SaveSession(ctx, session))

	session.Status = models.SessionCompleted
	session.Error = ""
	require.NoError(t, store.SaveSession(ctx, session))

	loaded, err := store.LoadSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, loaded.Status)

	summaries, err := store.ListSessions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestListSessionsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		s := sampleSession(fmt.Sprintf("sess-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveSession(ctx, s))
	}

	summaries, err := store.ListSessions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "sess-4", summaries[0].ID)
	assert.Equal(t, "sess-3", summaries[1].ID)
	assert.Equal(t, "sess-2", summaries[2].ID)
	assert.Equal(t, "BUY", summaries[0].FinalDecision)
}

func TestListSessionsDefaultLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, sampleSession("sess-1", time.Now().UTC())))

	summaries, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestLoadSessionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveFailedSessionKeepsError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession("sess-err", time.Now().UTC())
	session.Status = models.SessionFailed
	session.Error = "市场数据获取失败"
	session.Results = models.StageResults{}
	require.NoError(t, store.SaveSession(ctx, session))

	loaded, err := store.LoadSession(ctx, "sess-err")
	require.NoError(t, err)
	assert.Equal(t, models.SessionFailed, loaded.Status)
	assert.Equal(t, "市场数据获取失败", loaded.Error)
	assert.Nil(t, loaded.Results.Risk)

	summaries, err := store.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "", summaries[0].FinalDecision)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("   ")
	assert.Error(t, err)
}
