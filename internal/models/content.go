package models

// ContentKind discriminates the per-agent content schema.
type ContentKind string

const (
	KindMarket         ContentKind = "market"
	KindSentiment      ContentKind = "sentiment"
	KindNews           ContentKind = "news"
	KindFundamentals   ContentKind = "fundamentals"
	KindResearch       ContentKind = "research"
	KindRecommendation ContentKind = "recommendation"
	KindStrategy       ContentKind = "strategy"
	KindRiskOpinion    ContentKind = "risk_opinion"
	KindDecision       ContentKind = "decision"
)

// AgentContent is the tagged union of per-agent structured results. Each
// variant is a fixed record shape produced by the corresponding parser in
// internal/signal; downstream consumers switch on Kind().
type AgentContent interface {
	Kind() ContentKind
}

// MarketContent is the technical analyst's structured output.
type MarketContent struct {
	Symbol          string  `json:"symbol"`
	Summary         string  `json:"analysis_summary"`
	TrendDirection  string  `json:"trend_direction"`
	Support         string  `json:"support"`
	Resistance      string  `json:"resistance"`
	TradingSignal   string  `json:"trading_signal"`
	RiskLevel       string  `json:"risk_level"`
	ConfidenceScore float64 `json:"confidence_score"`
}

func (*MarketContent) Kind() ContentKind { return KindMarket }

// SentimentContent is the social-media analyst's structured output.
type SentimentContent struct {
	Symbol           string  `json:"symbol"`
	Summary          string  `json:"analysis_summary"`
	OverallSentiment string  `json:"overall_sentiment"`
	SentimentScore   float64 `json:"sentiment_score"`
	InvestorMood     string  `json:"investor_mood"`
	HotTopics        []string `json:"hot_topics,omitempty"`
	ConfidenceScore  float64 `json:"confidence_score"`
}

func (*SentimentContent) Kind() ContentKind { return KindSentiment }

// NewsContent is the news analyst's structured output.
type NewsContent struct {
	Symbol          string   `json:"symbol"`
	Summary         string   `json:"analysis_summary"`
	OverallImpact   string   `json:"overall_impact"`
	KeyEvents       []string `json:"key_events,omitempty"`
	PolicyImpact    string   `json:"policy_impact"`
	ConfidenceScore float64  `json:"confidence_score"`
}

func (*NewsContent) Kind() ContentKind { return KindNews }

// FundamentalsContent is the fundamentals analyst's structured output.
type FundamentalsContent struct {
	Symbol              string  `json:"symbol"`
	Summary             string  `json:"fundamentals_summary"`
	ProfitabilityRating string  `json:"profitability_rating"`
	FinancialHealth     string  `json:"financial_health"`
	ValuationLevel      string  `json:"valuation_level"`
	GrowthPotential     string  `json:"growth_potential"`
	InvestmentRating    string  `json:"investment_rating"`
	TargetPrice         string  `json:"target_price"`
	OverallScore        float64 `json:"overall_score"`
}

func (*FundamentalsContent) Kind() ContentKind { return KindFundamentals }

// ResearchContent is a bull or bear researcher's structured output.
type ResearchContent struct {
	Symbol       string   `json:"symbol"`
	Summary      string   `json:"research_summary"`
	Stance       string   `json:"stance"`
	CoreThesis   string   `json:"core_thesis"`
	KeyArguments []string `json:"key_arguments,omitempty"`
	TargetMove   string   `json:"target_move"`
	Conviction   float64  `json:"conviction"`
}

func (*ResearchContent) Kind() ContentKind { return KindResearch }

// RecommendationContent is the research manager's synthesis of the debate.
type RecommendationContent struct {
	Symbol          string   `json:"symbol"`
	Summary         string   `json:"decision_summary"`
	Recommendation  string   `json:"investment_recommendation"`
	ConfidenceLevel float64  `json:"confidence_level"`
	PositionSize    string   `json:"position_size"`
	TimeHorizon     string   `json:"time_horizon"`
	KeyFactors      []string `json:"key_factors,omitempty"`
}

func (*RecommendationContent) Kind() ContentKind { return KindRecommendation }

// StrategyContent is the trader's structured output.
type StrategyContent struct {
	Symbol         string  `json:"symbol"`
	Summary        string  `json:"strategy_summary"`
	Action         string  `json:"action"`
	PositionSize   string  `json:"position_size"`
	EntryStrategy  string  `json:"entry_strategy"`
	ExitStrategy   string  `json:"exit_strategy"`
	StopLoss       string  `json:"stop_loss"`
	TakeProfit     string  `json:"take_profit"`
	ExpectedReturn string  `json:"expected_return"`
	Rationale      string  `json:"strategy_rationale"`
	Confidence     float64 `json:"confidence"`
}

func (*StrategyContent) Kind() ContentKind { return KindStrategy }

// RiskOpinionContent is one risk debator's structured opinion.
type RiskOpinionContent struct {
	Symbol              string   `json:"symbol"`
	Summary             string   `json:"opinion_summary"`
	Stance              string   `json:"stance"`
	RiskAssessment      string   `json:"risk_assessment"`
	RecommendedPosition string   `json:"recommended_position"`
	KeyPoints           []string `json:"key_points,omitempty"`
	Score               float64  `json:"score"`
}

func (*RiskOpinionContent) Kind() ContentKind { return KindRiskOpinion }

// DecisionAction is the final decision enum.
type DecisionAction string

const (
	DecisionStrongBuy  DecisionAction = "STRONG_BUY"
	DecisionBuy        DecisionAction = "BUY"
	DecisionHold       DecisionAction = "HOLD"
	DecisionSell       DecisionAction = "SELL"
	DecisionStrongSell DecisionAction = "STRONG_SELL"
)

// DecisionContent is the risk manager's final decision record.
type DecisionContent struct {
	Symbol             string         `json:"symbol"`
	Summary            string         `json:"decision_summary"`
	FinalDecision      DecisionAction `json:"final_decision"`
	FinalPosition      string         `json:"final_position"`
	DecisionConfidence float64        `json:"decision_confidence"`
	RiskLevel          string         `json:"risk_level"`
	DecisionRationale  string         `json:"decision_rationale"`
}

func (*DecisionContent) Kind() ContentKind { return KindDecision }
