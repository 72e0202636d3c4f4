package signal

import (
	"strings"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ParseRiskOpinion structures one risk debator's opinion. stance is
// "aggressive", "conservative" or "neutral".
func ParseRiskOpinion(raw, symbol, stance string) *models.RiskOpinionContent {
	position := ExtractPosition(raw)
	if position == "" {
		switch stance {
		case "aggressive":
			position = "偏高仓位"
		case "conservative":
			position = "偏低仓位"
		default:
			position = "标准仓位"
		}
	}

	return &models.RiskOpinionContent{
		Symbol:              symbol,
		Summary:             raw,
		Stance:              stance,
		RiskAssessment:      ExtractRiskLevel(raw),
		RecommendedPosition: position,
		KeyPoints:           bulletPoints(raw, 4),
		Score:               ConfidenceScore(raw),
	}
}

// ExtractDecision maps a reply onto the final decision enum. Stronger
// phrasings are matched before their substrings ("强烈买入" before "买入").
func ExtractDecision(text string) models.DecisionAction {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "强烈买入", "strong buy", "强买"):
		return models.DecisionStrongBuy
	case containsAny(lower, "强烈卖出", "strong sell", "强卖"):
		return models.DecisionStrongSell
	case containsAny(lower, "买入", "buy", "建仓"):
		return models.DecisionBuy
	case containsAny(lower, "卖出", "sell", "平仓"):
		return models.DecisionSell
	case containsAny(lower, "持有", "hold", "维持"):
		return models.DecisionHold
	}
	return models.DecisionHold
}

// DecisionConfidence maps assertiveness wording onto fixed confidence tiers.
func DecisionConfidence(text string) float64 {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "高度确信", "非常确定", "强烈信心", "十分确定"):
		return 0.85
	case containsAny(lower, "不太确定", "信心有限", "谨慎判断", "存在疑虑"):
		return 0.35
	case containsAny(lower, "较为确信", "相对确定", "适度信心", "比较确定"):
		return 0.65
	}
	return 0.5
}

// ParseDecision structures the risk manager's final decision.
func ParseDecision(raw, symbol string) *models.DecisionContent {
	decision := ExtractDecision(raw)

	position := ExtractPosition(raw)
	if position == "" {
		switch decision {
		case models.DecisionStrongBuy:
			position = "25-30%"
		case models.DecisionBuy:
			position = "15-20%"
		case models.DecisionSell:
			position = "减仓50%"
		case models.DecisionStrongSell:
			position = "清仓"
		default:
			position = "维持当前"
		}
	}

	rationale := firstLineContaining(raw, "理由", "依据", "综合")
	if rationale == "" {
		rationale = "综合交易策略与风险团队意见"
	}

	return &models.DecisionContent{
		Symbol:             symbol,
		Summary:            raw,
		FinalDecision:      decision,
		FinalPosition:      position,
		DecisionConfidence: DecisionConfidence(raw),
		RiskLevel:          ExtractRiskLevel(raw),
		DecisionRationale:  rationale,
	}
}
