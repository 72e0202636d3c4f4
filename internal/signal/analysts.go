package signal

import (
	"strings"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ParseMarket structures a technical analyst's reply.
func ParseMarket(raw, symbol string) *models.MarketContent {
	support := "待确定"
	resistance := "待确定"
	if line := firstLineContaining(raw, "支撑"); line != "" {
		support = line
	}
	if line := firstLineContaining(raw, "阻力"); line != "" {
		resistance = line
	}

	return &models.MarketContent{
		Symbol:          symbol,
		Summary:         raw,
		TrendDirection:  ExtractTrend(raw),
		Support:         support,
		Resistance:      resistance,
		TradingSignal:   ExtractTradeSignal(raw),
		RiskLevel:       ExtractRiskLevel(raw),
		ConfidenceScore: ConfidenceScore(raw),
	}
}

// ParseSentiment structures a social-media analyst's reply.
func ParseSentiment(raw, symbol string) *models.SentimentContent {
	lower := strings.ToLower(raw)
	positive := countMatches(lower, "乐观", "积极", "看好", "热情", "positive", "bullish")
	negative := countMatches(lower, "悲观", "消极", "看空", "恐慌", "negative", "bearish")

	overall := "中性"
	mood := "观望"
	score := 0.5
	switch {
	case positive > negative:
		overall = "积极"
		mood = "乐观"
		score = clamp(0.5+0.1*float64(positive-negative), 0.5, 0.9)
	case negative > positive:
		overall = "消极"
		mood = "悲观"
		score = clamp(0.5-0.1*float64(negative-positive), 0.1, 0.5)
	}

	return &models.SentimentContent{
		Symbol:           symbol,
		Summary:          raw,
		OverallSentiment: overall,
		SentimentScore:   round2(score),
		InvestorMood:     mood,
		HotTopics:        linesContaining(raw, 3, "热点", "话题", "讨论"),
		ConfidenceScore:  ConfidenceScore(raw),
	}
}

// ParseNews structures a news analyst's reply.
func ParseNews(raw, symbol string) *models.NewsContent {
	lower := strings.ToLower(raw)
	impact := "中性"
	switch {
	case containsAny(lower, "利好", "正面影响", "积极影响"):
		impact = "利好"
	case containsAny(lower, "利空", "负面影响", "消极影响"):
		impact = "利空"
	}

	policy := "无明显政策影响"
	if line := firstLineContaining(raw, "政策", "监管"); line != "" {
		policy = line
	}

	events := bulletPoints(raw, 3)
	if len(events) == 0 {
		events = linesContaining(raw, 3, "公告", "消息", "事件")
	}

	return &models.NewsContent{
		Symbol:          symbol,
		Summary:         raw,
		OverallImpact:   impact,
		KeyEvents:       events,
		PolicyImpact:    policy,
		ConfidenceScore: ConfidenceScore(raw),
	}
}

// ParseFundamentals structures a fundamentals analyst's reply.
func ParseFundamentals(raw, symbol string) *models.FundamentalsContent {
	lower := strings.ToLower(raw)

	profitability := "一般"
	switch {
	case containsAny(lower, "盈利能力强", "盈利优秀", "利润率高"):
		profitability = "优秀"
	case containsAny(lower, "盈利能力弱", "盈利较差", "利润率低"):
		profitability = "较差"
	}

	healthy := countMatches(lower, "财务健康", "资产质量好", "现金流充足", "负债合理")
	unhealthy := countMatches(lower, "财务风险", "资产质量差", "现金流紧张", "负债过高")
	health := "一般"
	switch {
	case healthy > unhealthy:
		health = "健康"
	case unhealthy > healthy:
		health = "风险"
	}

	valuation := "合理"
	switch {
	case containsAny(lower, "低估", "估值偏低"):
		valuation = "低估"
	case containsAny(lower, "高估", "估值偏高"):
		valuation = "高估"
	}

	growth := "中"
	switch {
	case containsAny(lower, "成长性强", "增长潜力大", "发展前景好"):
		growth = "高"
	case containsAny(lower, "成长性弱", "增长乏力", "前景黯淡"):
		growth = "低"
	}

	rating := "中性"
	switch {
	case containsAny(lower, "强烈推荐", "强烈买入"):
		rating = "强烈买入"
	case containsAny(lower, "推荐", "买入", "增持"):
		rating = "买入"
	case containsAny(lower, "回避", "卖出", "减持"):
		rating = "卖出"
	}

	// crude composite: confidence shifted by rating direction
	score := ConfidenceScore(raw)
	switch rating {
	case "强烈买入":
		score = clamp(score+0.2, 0.1, 0.95)
	case "买入":
		score = clamp(score+0.1, 0.1, 0.9)
	case "卖出":
		score = clamp(score-0.1, 0.05, 0.9)
	}

	return &models.FundamentalsContent{
		Symbol:              symbol,
		Summary:             raw,
		ProfitabilityRating: profitability,
		FinancialHealth:     health,
		ValuationLevel:      valuation,
		GrowthPotential:     growth,
		InvestmentRating:    rating,
		TargetPrice:         ExtractTargetPrice(raw),
		OverallScore:        round2(score),
	}
}
