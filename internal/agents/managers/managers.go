// Package managers defines the two synthesis agents: the research manager
// who weighs the bull/bear debate into an investment recommendation, and
// the risk manager who issues the final decision of the whole pipeline.
package managers

import (
	"fmt"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/agents"
	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/llm"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/memory"
	"github.com/laochendeai/tradingagents-go/internal/models"
	"github.com/laochendeai/tradingagents-go/internal/signal"
)

func NewResearchManager(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           consts.ResearchManager,
		Type:         "manager",
		AnalysisType: "investment_recommendation",
		SystemPrompt: "你是研究团队的负责人。多空双方已经完成辩论，你需要客观权衡双方论证的质量与证据强度，" +
			"给出明确的投资建议。不要骑墙，必须给出倾向性结论。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请基于以下多空辩论，对股票 %s 给出投资建议。\n\n%s\n请给出：1. 投资建议（强烈买入/买入/谨慎买入/持有/卖出）；2. 建议仓位；3. 投资时间周期；4. 关键决策因素。",
				in.Symbol, agents.FormatResearch(in.Research))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseRecommendation(raw, symbol)
		},
	}, gateway, mem, cfg, logger)
}

func NewRiskManager(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           consts.RiskManager,
		Type:         "manager",
		AnalysisType: "final_decision",
		SystemPrompt: "你是风险管理委员会的最终决策人。三位风险评估员已从激进、保守、中立角度给出意见，" +
			"你需要综合交易策略与全部风险意见，做出最终交易决策。决策必须明确且可执行。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请对股票 %s 做出最终交易决策。\n\n%s\n%s\n\n风险评估意见：\n%s\n请给出：1. 最终决策（强烈买入/买入/持有/卖出/强烈卖出）；2. 最终仓位；3. 风险等级；4. 决策理由。",
				in.Symbol, agents.FormatStrategy(in.Strategy), agents.FormatPortfolio(in.Portfolio),
				agents.FormatRiskOpinions(in.Risk))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseDecision(raw, symbol)
		},
	}, gateway, mem, cfg, logger)
}
