// Package researchers defines the bull and bear researchers. Both read the
// same analyst reports, argue opposite stances, and then trade rebuttals in
// the debate rounds driven by the coordinator.
package researchers

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

func NewBullResearcher(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           consts.BullResearcher,
		Type:         "researcher",
		AnalysisType: "bullish_research",
		SystemPrompt: "你是一位看多研究员，你的职责是从分析师报告中挖掘所有支持买入的证据，" +
			"构建最有说服力的看多论证，并在辩论中反驳空方观点。立场必须坚定看多。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请针对股票 %s 构建看多论证。\n\n%s\n请给出：1. 核心论点；2. 支撑论据（分条列出）；3. 预期上涨空间。",
				in.Symbol, agents.FormatReports(in.Reports))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseResearch(raw, symbol, "bullish")
		},
	}, gateway, mem, cfg, logger)
}

func NewBearResearcher(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           consts.BearResearcher,
		Type:         "researcher",
		AnalysisType: "bearish_research",
		SystemPrompt: "你是一位看空研究员，你的职责是从分析师报告中识别所有风险与隐患，" +
			"构建最有说服力的看空论证，并在辩论中反驳多方观点。立场必须坚定看空。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请针对股票 %s 构建看空论证。\n\n%s\n请给出：1. 核心论点；2. 风险论据（分条列出）；3. 预期下跌空间。",
				in.Symbol, agents.FormatReports(in.Reports))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseResearch(raw, symbol, "bearish")
		},
	}, gateway, mem, cfg, logger)
}
