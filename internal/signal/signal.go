// Package signal turns free-text LLM replies into decision-relevant
// structured records using deterministic keyword and regex heuristics.
// Every parser is a pure function: identical input text yields identical
// output, unmatched patterns fall back to neutral defaults, and no parser
// ever returns an error.
package signal

import (
	"math"
	"regexp"
	"strings"
)

var (
	positionRe = regexp.MustCompile(`(?:最终仓位|决定仓位|建议仓位|配置比例|建仓|仓位)[：:]\s*(\d+(?:\.\d+)?)%`)
	trailPosRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s*仓位`)
	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	priceRe    = regexp.MustCompile(`(?:目标价位|目标价|target price)[：:]?\s*¥?\$?(\d+(?:\.\d+)?)`)
	stopLossRe = regexp.MustCompile(`(?:止损位|止损)[：:]?\s*¥?\$?(\d+(?:\.\d+)?)`)
	takeProfRe = regexp.MustCompile(`(?:止盈位|止盈|目标位)[：:]?\s*¥?\$?(\d+(?:\.\d+)?)`)
	bulletRe   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.、)])\s*(.+)$`)
)

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords ...string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// ConfidenceScore estimates how assertive a reply is: 0.5 base, +0.1 per
// confidence keyword, -0.1 per hedging keyword, clamped to [0.1, 0.9].
func ConfidenceScore(text string) float64 {
	lower := strings.ToLower(text)
	confident := countMatches(lower, "确定", "明确", "强烈", "显著", "清晰", "strong", "clear", "confident")
	hedged := countMatches(lower, "可能", "或许", "不确定", "谨慎", "观察", "may", "perhaps", "uncertain")

	return round2(clamp(0.5+0.1*float64(confident)-0.1*float64(hedged), 0.1, 0.9))
}

// ExtractTrend classifies the price-trend direction in a reply.
func ExtractTrend(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "上涨", "看涨", "上升", "bullish"):
		return "上涨"
	case containsAny(lower, "下跌", "看跌", "下降", "bearish"):
		return "下跌"
	case containsAny(lower, "横盘", "震荡", "sideways"):
		return "横盘"
	}
	return "未明确"
}

// ExtractTradeSignal classifies a reply into a buy/sell/hold signal.
func ExtractTradeSignal(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "买入", "建仓", "加仓", "buy"):
		return "买入"
	case containsAny(lower, "卖出", "减仓", "平仓", "sell"):
		return "卖出"
	case containsAny(lower, "持有", "hold"):
		return "持有"
	}
	return "观望"
}

// ExtractRiskLevel classifies the risk wording of a reply.
func ExtractRiskLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "高风险", "风险较高", "风险很大"):
		return "高"
	case containsAny(lower, "低风险", "风险较低", "稳健"):
		return "低"
	}
	return "中等"
}

// ExtractPosition pulls an explicit position percentage ("仓位: 15%") out of
// a reply; the empty string means no explicit position was stated.
func ExtractPosition(text string) string {
	if m := positionRe.FindStringSubmatch(text); m != nil {
		return m[1] + "%"
	}
	if m := trailPosRe.FindStringSubmatch(text); m != nil {
		return m[1] + "%"
	}
	return ""
}

// ExtractTargetPrice pulls an explicit target price out of a reply.
func ExtractTargetPrice(text string) string {
	if m := priceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "待定"
}

// ExtractPercent returns the first percentage figure in the text.
func ExtractPercent(text string) string {
	if m := percentRe.FindStringSubmatch(text); m != nil {
		return m[1] + "%"
	}
	return ""
}

// bulletPoints collects up to max list items from the reply.
func bulletPoints(text string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			item := strings.TrimSpace(m[1])
			if item != "" {
				out = append(out, item)
			}
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

// linesContaining returns trimmed lines mentioning any of the keywords.
func linesContaining(text string, max int, keywords ...string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if containsAny(trimmed, keywords...) {
			out = append(out, trimmed)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

func firstLineContaining(text string, keywords ...string) string {
	lines := linesContaining(text, 1, keywords...)
	if len(lines) > 0 {
		return lines[0]
	}
	return ""
}
