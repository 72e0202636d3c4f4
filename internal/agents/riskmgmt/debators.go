// Package riskmgmt defines the three risk evaluators. They assess the
// trader's strategy concurrently from fixed stances; the final ruling
// belongs to the risk manager in package managers.
package riskmgmt

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

func NewAggressiveDebator(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newDebator(gateway, mem, cfg, logger, consts.AggressiveDebator, "aggressive",
		"你是一位激进型风险评估员，偏好高收益机会，认为适度冒险是获取超额收益的必要条件。"+
			"请从进攻性角度评估交易策略，指出保守策略可能错失的机会。")
}

func NewConservativeDebator(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newDebator(gateway, mem, cfg, logger, consts.ConservativeDebator, "conservative",
		"你是一位保守型风险评估员，以资本保全为第一原则。"+
			"请从防守角度评估交易策略，识别所有可能的下行风险，并提出更稳妥的替代方案。")
}

func NewNeutralDebator(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newDebator(gateway, mem, cfg, logger, consts.NeutralDebator, "neutral",
		"你是一位中立型风险评估员，追求风险与收益的平衡。"+
			"请客观评估交易策略的风险收益比，既不过度乐观也不过度悲观。")
}

func newDebator(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger, id, stance, systemPrompt string) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           id,
		Type:         "risk_debator",
		AnalysisType: "risk_assessment",
		SystemPrompt: systemPrompt,
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请评估以下针对股票 %s 的交易策略的风险。\n\n%s\n%s\n请给出：1. 风险评估（高/中等/低）；2. 建议仓位调整；3. 关键风险点或机会点。",
				in.Symbol, agents.FormatStrategy(in.Strategy), agents.FormatPortfolio(in.Portfolio))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseRiskOpinion(raw, symbol, stance)
		},
	}, gateway, mem, cfg, logger)
}
