package consts

const (
	// 分析师团队
	MarketAnalyst       = "market_analyst"
	SocialMediaAnalyst  = "social_media_analyst"
	NewsAnalyst         = "news_analyst"
	FundamentalsAnalyst = "fundamentals_analyst"

	// 研究团队
	BullResearcher  = "bull_researcher"
	BearResearcher  = "bear_researcher"
	ResearchManager = "research_manager"

	// 交易团队
	Trader = "trader"

	// 风险管理团队
	AggressiveDebator   = "aggressive_debator"
	ConservativeDebator = "conservative_debator"
	NeutralDebator      = "neutral_debator"
	RiskManager         = "risk_manager"
)

// AnalystIDs lists the four analysts in fan-out order.
var AnalystIDs = []string{
	MarketAnalyst,
	SocialMediaAnalyst,
	NewsAnalyst,
	FundamentalsAnalyst,
}
