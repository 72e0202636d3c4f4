package models

import "time"

// Depth controls debate round count and token budget per round.
type Depth string

const (
	DepthShallow Depth = "shallow"
	DepthMedium  Depth = "medium"
	DepthDeep    Depth = "deep"
)

// Valid reports whether d is one of the known depths.
func (d Depth) Valid() bool {
	switch d {
	case DepthShallow, DepthMedium, DepthDeep:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// AnalysisSession is the root record of one end-to-end AnalyzeStock run.
// It is owned by the orchestration graph while running and must not be
// mutated after Status leaves SessionRunning.
type AnalysisSession struct {
	ID        string        `json:"id"`
	Symbol    string        `json:"symbol"`
	Depth     Depth         `json:"depth"`
	Status    SessionStatus `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Error     string        `json:"error,omitempty"`
	Results   StageResults  `json:"results"`
}

// StageResults aggregates the per-stage outputs. Stages that never ran
// (because an upstream stage aborted the session) stay nil.
type StageResults struct {
	MarketData      *MarketSnapshot  `json:"market_data,omitempty"`
	AnalystReports  *AnalystReports  `json:"analyst_reports,omitempty"`
	Research        *ResearchResults `json:"research_results,omitempty"`
	TradingStrategy *AgentResult     `json:"trading_strategy,omitempty"`
	Risk            *RiskResults     `json:"risk_results,omitempty"`
}

// AnalystReports holds the four fan-out results. An analyst that failed
// still gets an entry with Status == ResultError; an analyst that was not
// selected for the run stays nil.
type AnalystReports struct {
	MarketAnalysis       *AgentResult `json:"market_analysis,omitempty"`
	SentimentAnalysis    *AgentResult `json:"sentiment_analysis,omitempty"`
	NewsAnalysis         *AgentResult `json:"news_analysis,omitempty"`
	FundamentalsAnalysis *AgentResult `json:"fundamentals_analysis,omitempty"`
	Timestamp            time.Time    `json:"timestamp"`
}

// All returns the non-nil analyst results in fan-out order.
func (r *AnalystReports) All() []*AgentResult {
	if r == nil {
		return nil
	}
	var out []*AgentResult
	for _, res := range []*AgentResult{
		r.MarketAnalysis, r.SentimentAnalysis, r.NewsAnalysis, r.FundamentalsAnalysis,
	} {
		if res != nil {
			out = append(out, res)
		}
	}
	return out
}

// ResearchResults is the output of the bull/bear debate stage.
type ResearchResults struct {
	BullResearch   *AgentResult  `json:"bull_research,omitempty"`
	BearResearch   *AgentResult  `json:"bear_research,omitempty"`
	DebateRounds   []DebateRound `json:"debate_results,omitempty"`
	Recommendation *AgentResult  `json:"investment_recommendation,omitempty"`
	Rounds         int           `json:"debate_round_count"`
	Timestamp      time.Time     `json:"timestamp"`
}

// RiskResults is the output of the risk evaluation stage.
type RiskResults struct {
	AggressiveAnalysis   *AgentResult `json:"aggressive_analysis,omitempty"`
	ConservativeAnalysis *AgentResult `json:"conservative_analysis,omitempty"`
	NeutralAnalysis      *AgentResult `json:"neutral_analysis,omitempty"`
	FinalDecision        *AgentResult `json:"final_decision,omitempty"`
	Timestamp            time.Time    `json:"timestamp"`
}

// DebateRound is one synchronized exchange of rebuttals. Responses maps
// stance (bull/bear, or a risk stance) to the raw rebuttal prose.
type DebateRound struct {
	Round     int               `json:"round"`
	Responses map[string]string `json:"responses"`
}
