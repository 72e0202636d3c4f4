// Package display renders analysis sessions for the terminal.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	decisionStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	buyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	sellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	holdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
)

// decisionColor follows A-share convention: red for buy, green for sell.
func decisionColor(action models.DecisionAction) lipgloss.Style {
	switch action {
	case models.DecisionStrongBuy, models.DecisionBuy:
		return buyStyle
	case models.DecisionStrongSell, models.DecisionSell:
		return sellStyle
	default:
		return holdStyle
	}
}

var decisionNames = map[models.DecisionAction]string{
	models.DecisionStrongBuy:  "强烈买入",
	models.DecisionBuy:        "买入",
	models.DecisionHold:       "持有",
	models.DecisionSell:       "卖出",
	models.DecisionStrongSell: "强烈卖出",
}

// RenderSession formats a full session report.
func RenderSession(session *models.AnalysisSession) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("📊 %s 分析报告", session.Symbol)))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render(fmt.Sprintf("会话 %s · 深度 %s · 状态 %s · 耗时 %s",
		session.ID, session.Depth, session.Status,
		session.EndTime.Sub(session.StartTime).Round(10*time.Millisecond))))
	sb.WriteString("\n\n")

	if session.Error != "" {
		sb.WriteString(errorStyle.Render("错误: " + session.Error))
		sb.WriteString("\n\n")
	}

	if reports := session.Results.AnalystReports; reports != nil {
		sb.WriteString(sectionStyle.Render("分析师团队"))
		sb.WriteString("\n")
		for _, r := range reports.All() {
			sb.WriteString(renderResult(r))
		}
		sb.WriteString("\n")
	}

	if research := session.Results.Research; research != nil {
		sb.WriteString(sectionStyle.Render(fmt.Sprintf("多空研究（%d轮辩论）", research.Rounds)))
		sb.WriteString("\n")
		sb.WriteString(renderResult(research.BullResearch))
		sb.WriteString(renderResult(research.BearResearch))
		sb.WriteString(renderResult(research.Recommendation))
		sb.WriteString("\n")
	}

	if strategy := session.Results.TradingStrategy; strategy != nil {
		sb.WriteString(sectionStyle.Render("交易策略"))
		sb.WriteString("\n")
		sb.WriteString(renderResult(strategy))
		sb.WriteString("\n")
	}

	if risk := session.Results.Risk; risk != nil {
		sb.WriteString(sectionStyle.Render("风险评估"))
		sb.WriteString("\n")
		sb.WriteString(renderResult(risk.AggressiveAnalysis))
		sb.WriteString(renderResult(risk.ConservativeAnalysis))
		sb.WriteString(renderResult(risk.NeutralAnalysis))
		sb.WriteString("\n")
		sb.WriteString(renderDecision(risk.FinalDecision))
	}

	return sb.String()
}

func renderResult(r *models.AgentResult) string {
	if r == nil {
		return ""
	}
	if !r.OK() {
		return errorStyle.Render(fmt.Sprintf("  ✗ %s: %s", r.AgentID, r.Error)) + "\n"
	}

	line := fmt.Sprintf("  ✓ %s", r.AgentID)
	switch c := r.Content.(type) {
	case *models.MarketContent:
		line += fmt.Sprintf(" · 趋势%s · 信号%s · 置信度%.2f", c.TrendDirection, c.TradingSignal, c.ConfidenceScore)
	case *models.SentimentContent:
		line += fmt.Sprintf(" · 情绪%s(%.2f)", c.OverallSentiment, c.SentimentScore)
	case *models.NewsContent:
		line += fmt.Sprintf(" · 影响%s", c.OverallImpact)
	case *models.FundamentalsContent:
		line += fmt.Sprintf(" · 评级%s · 综合分%.1f", c.InvestmentRating, c.OverallScore)
	case *models.ResearchContent:
		line += fmt.Sprintf(" · %s · 信念%.2f", c.CoreThesis, c.Conviction)
	case *models.RecommendationContent:
		line += fmt.Sprintf(" · %s · 仓位%s", c.Recommendation, c.PositionSize)
	case *models.StrategyContent:
		line += fmt.Sprintf(" · %s · 仓位%s · 止损%s", c.Action, c.PositionSize, c.StopLoss)
	case *models.RiskOpinionContent:
		line += fmt.Sprintf(" · 风险%s · 建议仓位%s", c.RiskAssessment, c.RecommendedPosition)
	}
	return line + "\n"
}

func renderDecision(r *models.AgentResult) string {
	if !r.OK() {
		return errorStyle.Render("最终决策不可用") + "\n"
	}
	d, ok := r.Content.(*models.DecisionContent)
	if !ok {
		return ""
	}

	name := decisionNames[d.FinalDecision]
	body := fmt.Sprintf("最终决策: %s\n仓位: %s · 风险等级: %s · 置信度: %.2f\n%s",
		decisionColor(d.FinalDecision).Render(name),
		d.FinalPosition, d.RiskLevel, d.DecisionConfidence, d.DecisionRationale)
	return decisionStyle.Render(body) + "\n"
}

// RenderHistory formats the session history listing.
func RenderHistory(sessions []*models.AnalysisSession) string {
	if len(sessions) == 0 {
		return labelStyle.Render("暂无历史会话") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("历史会话"))
	sb.WriteString("\n")
	for _, s := range sessions {
		decision := ""
		if r := s.Results.Risk; r != nil && r.FinalDecision.OK() {
			if d, ok := r.FinalDecision.Content.(*models.DecisionContent); ok {
				decision = " · " + decisionNames[d.FinalDecision]
			}
		}
		sb.WriteString(fmt.Sprintf("  %s  %-8s %-7s %s%s\n",
			s.StartTime.Format("2006-01-02 15:04"), s.Symbol, s.Status, s.Depth, decision))
	}
	return sb.String()
}
