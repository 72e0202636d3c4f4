// Package graph wires the agents into the five-stage analysis pipeline:
// data collection, parallel analyst fan-out, bull/bear debate with a
// research recommendation, strategy formation, and risk evaluation ending
// in the final decision. One TradingGraph serves many sessions.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/agents"
	"github.com/laochendeai/tradingagents-go/internal/agents/analysts"
	"github.com/laochendeai/tradingagents-go/internal/agents/managers"
	"github.com/laochendeai/tradingagents-go/internal/agents/researchers"
	"github.com/laochendeai/tradingagents-go/internal/agents/riskmgmt"
	"github.com/laochendeai/tradingagents-go/internal/agents/trader"
	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/dataflows"
	"github.com/laochendeai/tradingagents-go/internal/llm"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/memory"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ErrSessionNotFound is returned by session lookups.
var ErrSessionNotFound = errors.New("session not found")

// Recorder persists completed sessions. Persistence failures are logged,
// never fatal.
type Recorder interface {
	SaveSession(ctx context.Context, session *models.AnalysisSession) error
}

// TradingGraph owns the agent roster and runs analysis sessions. It keeps a
// bounded in-memory session history; completed sessions optionally go to
// the recorder for durable storage.
type TradingGraph struct {
	cfg         *config.Config
	logger      log.Logger
	gateway     llm.Invoker
	data        dataflows.Interface
	memWriter   *memory.Writer
	coordinator *DebateCoordinator
	recorder    Recorder

	analysts    map[string]agents.Agent
	selected    []string
	bull        *agents.Base
	bear        *agents.Base
	researchMgr *agents.Base
	traderAgent *agents.Base
	debators    []agents.Agent
	riskMgr     *agents.Base

	mu       sync.RWMutex
	sessions map[string]*models.AnalysisSession
	order    []string // session ids, oldest first, capped at HistoryLimit
}

// Option customizes graph construction.
type Option func(*TradingGraph)

// WithAnalysts restricts the fan-out stage to the named analyst ids.
func WithAnalysts(ids ...string) Option {
	return func(g *TradingGraph) { g.selected = ids }
}

// WithData replaces the market-data collaborator (tests inject stubs here).
func WithData(data dataflows.Interface) Option {
	return func(g *TradingGraph) { g.data = data }
}

// WithGateway replaces the LLM gateway.
func WithGateway(gw llm.Invoker) Option {
	return func(g *TradingGraph) { g.gateway = gw }
}

// WithRecorder attaches durable session storage.
func WithRecorder(r Recorder) Option {
	return func(g *TradingGraph) { g.recorder = r }
}

// New builds the full pipeline. A memory backend that fails to initialize
// is a fatal construction error.
func New(cfg *config.Config, logger log.Logger, opts ...Option) (*TradingGraph, error) {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	store, err := memory.New(cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	g := &TradingGraph{
		cfg:         cfg,
		logger:      logger,
		memWriter:   memory.NewWriter(store, logger),
		coordinator: NewDebateCoordinator(logger),
		selected:    consts.AnalystIDs,
		sessions:    make(map[string]*models.AnalysisSession),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.gateway == nil {
		g.gateway = llm.NewGateway(cfg, logger)
	}
	if g.data == nil {
		var cache dataflows.Cache
		if cfg.RedisAddr != "" {
			cache = dataflows.NewRedisCache(cfg.RedisAddr)
		} else {
			cache = dataflows.NewMemoryCache()
		}
		g.data = dataflows.New(cfg, cache, logger)
	}

	gw, mem := g.gateway, g.memWriter
	g.analysts = map[string]agents.Agent{
		consts.MarketAnalyst:       analysts.NewMarketAnalyst(gw, mem, cfg, logger),
		consts.SocialMediaAnalyst:  analysts.NewSocialMediaAnalyst(gw, mem, cfg, logger),
		consts.NewsAnalyst:         analysts.NewNewsAnalyst(gw, mem, cfg, logger),
		consts.FundamentalsAnalyst: analysts.NewFundamentalsAnalyst(gw, mem, cfg, logger),
	}
	for _, id := range g.selected {
		if _, ok := g.analysts[id]; !ok {
			return nil, fmt.Errorf("graph: unknown analyst %q", id)
		}
	}

	g.bull = researchers.NewBullResearcher(gw, mem, cfg, logger)
	g.bear = researchers.NewBearResearcher(gw, mem, cfg, logger)
	g.researchMgr = managers.NewResearchManager(gw, mem, cfg, logger)
	g.traderAgent = trader.New(gw, mem, cfg, logger)
	g.debators = []agents.Agent{
		riskmgmt.NewAggressiveDebator(gw, mem, cfg, logger),
		riskmgmt.NewConservativeDebator(gw, mem, cfg, logger),
		riskmgmt.NewNeutralDebator(gw, mem, cfg, logger),
	}
	g.riskMgr = managers.NewRiskManager(gw, mem, cfg, logger)

	return g, nil
}

// Memory exposes the memory store for inspection commands.
func (g *TradingGraph) Memory() memory.Store { return g.memWriter.Store() }

// AnalyzeStock runs one end-to-end session. The session is registered
// before the first stage starts, so it is observable while running. The
// error is non-nil only for invalid input or cancellation; degraded agent
// results never fail the session.
func (g *TradingGraph) AnalyzeStock(ctx context.Context, symbol string, depth models.Depth) (*models.AnalysisSession, error) {
	if symbol == "" {
		return nil, fmt.Errorf("graph: empty symbol")
	}
	if depth == "" {
		depth = models.DepthMedium
	}
	if !depth.Valid() {
		return nil, fmt.Errorf("graph: invalid depth %q", depth)
	}

	session := &models.AnalysisSession{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Depth:     depth,
		Status:    models.SessionRunning,
		StartTime: time.Now(),
	}
	g.register(session)
	g.logger.Info("session %s: analyzing %s (depth=%s)", session.ID, symbol, depth)

	if err := g.run(ctx, session); err != nil {
		g.finish(session, err)
		return session, err
	}

	g.finish(session, nil)
	return session, nil
}

func (g *TradingGraph) run(ctx context.Context, session *models.AnalysisSession) error {
	in := &agents.Input{
		Symbol:    session.Symbol,
		Depth:     session.Depth,
		Portfolio: models.DefaultPortfolioContext(),
	}

	// stage 1: data collection
	snapshot, err := g.collectData(ctx, session.Symbol)
	if err != nil {
		return err
	}
	session.Results.MarketData = snapshot
	in.Snapshot = snapshot

	// stage 2: analyst fan-out
	reports, err := g.runAnalysts(ctx, in)
	if err != nil {
		return err
	}
	session.Results.AnalystReports = reports
	in.Reports = reports

	// stage 3: bull/bear research, debate, recommendation
	research, err := g.runResearch(ctx, in)
	if err != nil {
		return err
	}
	session.Results.Research = research
	in.Research = research

	// stage 4: trading strategy
	if err := ctx.Err(); err != nil {
		return err
	}
	strategy := g.traderAgent.Analyze(ctx, in)
	if err := ctx.Err(); err != nil {
		return err
	}
	session.Results.TradingStrategy = strategy
	in.Strategy = strategy

	// stage 5: risk evaluation and final decision
	risk, err := g.runRisk(ctx, in)
	if err != nil {
		return err
	}
	session.Results.Risk = risk

	return nil
}

// collectData is fatal on collaborator errors: no downstream stage can run
// without price and financial context. The collaborator itself degrades to
// synthetic data, so an error here means even that path failed.
func (g *TradingGraph) collectData(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := &models.MarketSnapshot{Symbol: symbol, Timestamp: time.Now()}

	data, err := g.data.GetComprehensiveData(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("collect data for %s: %w", symbol, err)
	}
	snapshot.Comprehensive = data

	// the overview is enrichment only
	overview, err := g.data.GetMarketOverview(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger.Warn("market overview unavailable: %v", err)
	}
	snapshot.Overview = overview

	return snapshot, nil
}

// runAnalysts fans out the selected analysts and waits for all of them.
// Individual failures land in the report as error results.
func (g *TradingGraph) runAnalysts(ctx context.Context, in *agents.Input) (*models.AnalystReports, error) {
	results := g.fanOut(ctx, in, g.selectedAnalysts())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports := &models.AnalystReports{Timestamp: time.Now()}
	for id, result := range results {
		switch id {
		case consts.MarketAnalyst:
			reports.MarketAnalysis = result
		case consts.SocialMediaAnalyst:
			reports.SentimentAnalysis = result
		case consts.NewsAnalyst:
			reports.NewsAnalysis = result
		case consts.FundamentalsAnalyst:
			reports.FundamentalsAnalysis = result
		}
	}
	return reports, nil
}

func (g *TradingGraph) runResearch(ctx context.Context, in *agents.Input) (*models.ResearchResults, error) {
	results := g.fanOut(ctx, in, []agents.Agent{g.bull, g.bear})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	research := &models.ResearchResults{
		BullResearch: results[consts.BullResearcher],
		BearResearch: results[consts.BearResearcher],
		Rounds:       g.cfg.Workflow.RoundsFor(in.Depth),
		Timestamp:    time.Now(),
	}

	// the debaters see the opening research through the shared input
	debateIn := *in
	debateIn.Research = research

	rounds, err := g.coordinator.Run(ctx, &debateIn, []agents.Debater{g.bull, g.bear}, research.Rounds)
	if err != nil {
		return nil, err
	}
	research.DebateRounds = rounds

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	managerIn := *in
	managerIn.Research = research
	research.Recommendation = g.researchMgr.Analyze(ctx, &managerIn)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return research, nil
}

func (g *TradingGraph) runRisk(ctx context.Context, in *agents.Input) (*models.RiskResults, error) {
	results := g.fanOut(ctx, in, g.debators)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risk := &models.RiskResults{
		AggressiveAnalysis:   results[consts.AggressiveDebator],
		ConservativeAnalysis: results[consts.ConservativeDebator],
		NeutralAnalysis:      results[consts.NeutralDebator],
		Timestamp:            time.Now(),
	}

	riskIn := *in
	riskIn.Risk = risk

	// deep mode lets the trader revise the strategy once with the risk
	// opinions in hand before the final ruling
	if g.cfg.Workflow.BacktrackEnabled(in.Depth) {
		revised := g.traderAgent.Analyze(ctx, &riskIn)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if revised.OK() {
			riskIn.Strategy = revised
		}
	}

	risk.FinalDecision = g.riskMgr.Analyze(ctx, &riskIn)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return risk, nil
}

// fanOut runs the agents concurrently and waits for every one to settle.
func (g *TradingGraph) fanOut(ctx context.Context, in *agents.Input, roster []agents.Agent) map[string]*models.AgentResult {
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]*models.AgentResult, len(roster))

	for _, a := range roster {
		wg.Add(1)
		go func(a agents.Agent) {
			defer wg.Done()
			result := a.Analyze(ctx, in)
			mu.Lock()
			results[a.ID()] = result
			mu.Unlock()
		}(a)
	}
	wg.Wait()

	return results
}

func (g *TradingGraph) selectedAnalysts() []agents.Agent {
	roster := make([]agents.Agent, 0, len(g.selected))
	for _, id := range g.selected {
		roster = append(roster, g.analysts[id])
	}
	return roster
}

func (g *TradingGraph) register(session *models.AnalysisSession) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions[session.ID] = session
	g.order = append(g.order, session.ID)

	limit := g.cfg.HistoryLimit
	if limit <= 0 {
		limit = 100
	}
	for len(g.order) > limit {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.sessions, oldest)
	}
}

func (g *TradingGraph) finish(session *models.AnalysisSession, err error) {
	session.EndTime = time.Now()
	switch {
	case err == nil:
		session.Status = models.SessionCompleted
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		session.Status = models.SessionCancelled
		session.Error = err.Error()
	default:
		session.Status = models.SessionFailed
		session.Error = err.Error()
	}

	duration := session.EndTime.Sub(session.StartTime).Round(time.Millisecond)
	g.logger.Info("session %s: %s after %s", session.ID, session.Status, duration)

	if g.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.recorder.SaveSession(ctx, session); err != nil {
			g.logger.Warn("session %s: persist failed: %v", session.ID, err)
		}
	}
}

// GetSession returns a session by id.
func (g *TradingGraph) GetSession(id string) (*models.AnalysisSession, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	session, ok := g.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// History returns the retained sessions, oldest first.
func (g *TradingGraph) History() []*models.AnalysisSession {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*models.AnalysisSession, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.sessions[id])
	}
	return out
}

// Reflect stores a post-trade reflection against the session's decision so
// future sessions can recall how a similar call actually played out.
func (g *TradingGraph) Reflect(ctx context.Context, sessionID string, realizedReturn float64) error {
	session, err := g.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionCompleted {
		return fmt.Errorf("graph: cannot reflect on %s session %s", session.Status, sessionID)
	}

	decision := "未知"
	if r := session.Results.Risk; r != nil && r.FinalDecision.OK() {
		if d, ok := r.FinalDecision.Content.(*models.DecisionContent); ok {
			decision = string(d.FinalDecision)
		}
	}

	outcome := "盈利"
	if realizedReturn < 0 {
		outcome = "亏损"
	}
	reflection := fmt.Sprintf("[复盘 %s] %s 决策为%s，实际收益%.2f%%（%s）。",
		time.Now().Format("2006-01-02"), session.Symbol, decision, realizedReturn*100, outcome)

	for _, agentID := range []string{consts.Trader, consts.RiskManager, consts.ResearchManager} {
		g.memWriter.AddAsync(reflection, map[string]string{
			memory.MetaAgentID: agentID,
			"symbol":           session.Symbol,
			"session_id":       session.ID,
			"analysis_type":    "reflection",
		})
	}
	return nil
}

// Close drains pending memory writes.
func (g *TradingGraph) Close(ctx context.Context) error {
	return g.memWriter.Close(ctx)
}
