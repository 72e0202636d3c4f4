package signal

import (
	"strings"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ParseResearch structures a bull or bear researcher's reply. stance is
// "bull" or "bear" and only shapes the defaults, not the matching.
func ParseResearch(raw, symbol, stance string) *models.ResearchContent {
	thesis := firstLineContaining(raw, "核心", "论点", "thesis")
	if thesis == "" {
		for _, line := range strings.Split(raw, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				thesis = trimmed
				break
			}
		}
	}

	target := "待评估"
	if line := firstLineContaining(raw, "目标", "空间", "upside", "downside"); line != "" {
		target = line
	}

	return &models.ResearchContent{
		Symbol:       symbol,
		Summary:      raw,
		Stance:       stance,
		CoreThesis:   thesis,
		KeyArguments: bulletPoints(raw, 5),
		TargetMove:   target,
		Conviction:   ConfidenceScore(raw),
	}
}

// ParseRecommendation structures the research manager's synthesis.
func ParseRecommendation(raw, symbol string) *models.RecommendationContent {
	lower := strings.ToLower(raw)

	recommendation := "中性"
	switch {
	case containsAny(lower, "强烈买入", "强买"):
		recommendation = "强烈买入"
	case containsAny(lower, "买入", "建仓", "增持"):
		recommendation = "买入"
	case containsAny(lower, "强烈卖出", "强卖"):
		recommendation = "强烈卖出"
	case containsAny(lower, "卖出", "减仓", "平仓"):
		recommendation = "卖出"
	case containsAny(lower, "持有", "维持"):
		recommendation = "持有"
	}

	confidence := 0.5
	switch {
	case containsAny(lower, "高度确信", "非常确定", "强烈信心", "明确"):
		confidence = 0.8
	case containsAny(lower, "不太确定", "谨慎", "有限信心", "不确定"):
		confidence = 0.3
	case containsAny(lower, "较为确信", "相对确定", "适度信心"):
		confidence = 0.6
	}

	position := ExtractPosition(raw)
	if position == "" {
		switch {
		case containsAny(lower, "强烈买入", "重仓"):
			position = "20-30%"
		case containsAny(lower, "买入"):
			position = "10-20%"
		case containsAny(lower, "轻仓", "小仓位"):
			position = "5-10%"
		default:
			position = "待定"
		}
	}

	horizon := "中期(3-12个月)"
	switch {
	case containsAny(lower, "长期", "长线", "战略持有"):
		horizon = "长期(1年以上)"
	case containsAny(lower, "短期", "短线", "快进快出"):
		horizon = "短期(1-3个月)"
	}

	return &models.RecommendationContent{
		Symbol:          symbol,
		Summary:         raw,
		Recommendation:  recommendation,
		ConfidenceLevel: confidence,
		PositionSize:    position,
		TimeHorizon:     horizon,
		KeyFactors:      bulletPoints(raw, 5),
	}
}

// ParseStrategy structures the trader's reply.
func ParseStrategy(raw, symbol string) *models.StrategyContent {
	lower := strings.ToLower(raw)

	action := "观望"
	switch {
	case containsAny(lower, "买入", "建仓", "加仓", "购买"):
		action = "买入"
	case containsAny(lower, "卖出", "平仓", "减仓", "出售"):
		action = "卖出"
	case containsAny(lower, "持有", "维持", "不变"):
		action = "持有"
	}

	position := ExtractPosition(raw)
	if position == "" {
		position = "待定"
	}

	entry := firstLineContaining(raw, "入场", "买点", "建仓")
	if entry == "" {
		entry = "分批建仓"
	}
	exit := firstLineContaining(raw, "出场", "卖点", "离场")
	if exit == "" {
		exit = "按计划分批退出"
	}

	stopLoss := "待定"
	if m := stopLossRe.FindStringSubmatch(raw); m != nil {
		stopLoss = m[1]
	}
	takeProfit := "待定"
	if m := takeProfRe.FindStringSubmatch(raw); m != nil {
		takeProfit = m[1]
	}

	rationale := firstLineContaining(raw, "理由", "逻辑", "依据")
	if rationale == "" {
		rationale = "综合研究建议与市场数据"
	}

	expected := "待评估"
	if line := firstLineContaining(raw, "预期收益", "预期回报"); line != "" {
		expected = line
	} else if pct := ExtractPercent(raw); pct != "" {
		expected = pct
	}

	return &models.StrategyContent{
		Symbol:         symbol,
		Summary:        raw,
		Action:         action,
		PositionSize:   position,
		EntryStrategy:  entry,
		ExitStrategy:   exit,
		StopLoss:       stopLoss,
		TakeProfit:     takeProfit,
		ExpectedReturn: expected,
		Rationale:      rationale,
		Confidence:     ConfidenceScore(raw),
	}
}
