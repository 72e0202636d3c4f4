package agents

import (
	"fmt"
	"strings"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// The Format* helpers render session state into Chinese prompt sections.
// They degrade to a short placeholder when a section is missing so prompts
// stay well-formed on partial data.

func FormatSnapshot(s *models.MarketSnapshot) string {
	if s == nil || s.Comprehensive == nil {
		return "市场数据暂不可用。"
	}
	var sb strings.Builder
	data := s.Comprehensive

	if p := data.Price; p != nil {
		fmt.Fprintf(&sb, "【行情】%s(%s) 现价%.2f，涨跌幅%.2f%%，成交量%d\n",
			p.Name, p.Symbol, p.CurrentPrice, p.ChangePercent, p.Volume)
	}
	if t := data.Indicators; t != nil {
		fmt.Fprintf(&sb, "【技术指标】MA5=%.2f MA10=%.2f MA20=%.2f RSI=%.1f MACD(DIF=%.3f DEA=%.3f) 布林带[%.2f, %.2f, %.2f]\n",
			t.MA5, t.MA10, t.MA20, t.RSI, t.MACDDiff, t.MACDDea, t.BollLower, t.BollMid, t.BollUpper)
	}
	if f := data.Financial; f != nil {
		fmt.Fprintf(&sb, "【财务】PE=%.2f PB=%.2f ROE=%.2f%% EPS=%.2f 负债率=%.1f%% 毛利率=%.1f%%\n",
			f.PE, f.PB, f.ROE, f.EPS, f.DebtRatio, f.GrossMargin)
	}
	if len(data.News) > 0 {
		sb.WriteString("【近期新闻】\n")
		for i, n := range data.News {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&sb, "- %s（%s）\n", n.Title, n.Source)
		}
	}
	if sd := data.Sentiment; sd != nil {
		fmt.Fprintf(&sb, "【市场情绪】情绪分%.2f，正面占比%.0f%%，讨论量%d\n",
			sd.SentimentScore, sd.PositiveRatio*100, sd.DiscussionVolume)
	}
	if o := s.Overview; o != nil {
		fmt.Fprintf(&sb, "【大盘】%s", o.MarketStatus)
		for _, idx := range o.MajorIndices {
			fmt.Fprintf(&sb, "，%s %.2f(%+.2f%%)", idx.Name, idx.Value, idx.ChangePercent)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func FormatReports(r *models.AnalystReports) string {
	if r == nil {
		return "分析师报告暂不可用。"
	}
	var sb strings.Builder
	sb.WriteString("四位分析师的结论：\n")
	for _, result := range r.All() {
		if result == nil {
			continue
		}
		if !result.OK() {
			fmt.Fprintf(&sb, "[%s] 分析失败：%s\n", result.AgentID, result.Error)
			continue
		}
		fmt.Fprintf(&sb, "[%s]\n%s\n", result.AgentID, summarize(result))
	}
	return sb.String()
}

func FormatResearch(r *models.ResearchResults) string {
	if r == nil {
		return "研究结论暂不可用。"
	}
	var sb strings.Builder
	if r.BullResearch.OK() {
		fmt.Fprintf(&sb, "【多方研究】\n%s\n", summarize(r.BullResearch))
	}
	if r.BearResearch.OK() {
		fmt.Fprintf(&sb, "【空方研究】\n%s\n", summarize(r.BearResearch))
	}
	if len(r.DebateRounds) > 0 {
		sb.WriteString(formatDebateHistory(r.DebateRounds))
	}
	if r.Recommendation.OK() {
		fmt.Fprintf(&sb, "【研究经理建议】\n%s\n", summarize(r.Recommendation))
	}
	return sb.String()
}

func FormatStrategy(r *models.AgentResult) string {
	if !r.OK() {
		return "交易策略暂不可用。"
	}
	return "【交易策略】\n" + summarize(r)
}

func FormatRiskOpinions(r *models.RiskResults) string {
	if r == nil {
		return "风险评估暂不可用。"
	}
	var sb strings.Builder
	for _, opinion := range []*models.AgentResult{r.AggressiveAnalysis, r.ConservativeAnalysis, r.NeutralAnalysis} {
		if !opinion.OK() {
			continue
		}
		fmt.Fprintf(&sb, "[%s]\n%s\n", opinion.AgentID, summarize(opinion))
	}
	if sb.Len() == 0 {
		return "风险评估暂不可用。"
	}
	return sb.String()
}

func FormatPortfolio(p *models.PortfolioContext) string {
	if p == nil {
		p = models.DefaultPortfolioContext()
	}
	return fmt.Sprintf("【投资组合】可用资金%.0f元，风险敞口%s，持仓集中度%s",
		p.AvailableCash, p.RiskExposure, p.Concentration)
}

// summarize prefers the raw model reply, truncated; prompts read better
// from prose than from the structured record.
func summarize(r *models.AgentResult) string {
	const limit = 600
	text := strings.TrimSpace(r.RawResponse)
	if text == "" {
		return "（无内容）"
	}
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return text
}
