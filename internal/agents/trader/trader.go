// Package trader defines the strategy agent that turns the research
// recommendation into a concrete trading plan.
package trader

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

func New(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return agents.NewBase(agents.Spec{
		ID:           consts.Trader,
		Type:         "trader",
		AnalysisType: "trading_strategy",
		SystemPrompt: "你是一位专业交易员。请将研究团队的投资建议转化为可执行的交易策略，" +
			"包括操作动作、仓位、进出场计划与止损止盈位。策略必须具体到价格和比例。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请为股票 %s 制定交易策略。\n\n%s\n%s\n\n%s\n请给出：1. 操作动作（买入/卖出/持有/观望）；2. 建议仓位比例；3. 进场策略；4. 出场策略；5. 止损位与止盈位；6. 预期收益。",
				in.Symbol, agents.FormatResearch(in.Research), agents.FormatSnapshot(in.Snapshot),
				agents.FormatPortfolio(in.Portfolio))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseStrategy(raw, symbol)
		},
	}, gateway, mem, cfg, logger)
}
