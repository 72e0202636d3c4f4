// Package analysts defines the four first-stage analysts. They run
// concurrently and each conditions only on the collected market data, never
// on each other.
package analysts

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

type deps struct {
	gateway llm.Invoker
	mem     *memory.Writer
	cfg     *config.Config
	logger  log.Logger
}

func NewMarketAnalyst(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newAnalyst(deps{gateway, mem, cfg, logger}, agents.Spec{
		ID:           consts.MarketAnalyst,
		AnalysisType: "technical_analysis",
		SystemPrompt: "你是一位资深的股票技术分析师，擅长K线形态、均线系统、MACD、RSI等技术指标分析。" +
			"请基于提供的行情与技术指标数据，给出趋势判断、支撑位、阻力位、交易信号和风险等级。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请对股票 %s 进行技术面分析。\n\n%s\n请给出：1. 趋势方向（上涨/下跌/横盘）；2. 关键支撑位与阻力位；3. 交易信号（买入/卖出/持有/观望）；4. 风险等级（高/中等/低）。",
				in.Symbol, agents.FormatSnapshot(in.Snapshot))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseMarket(raw, symbol)
		},
	})
}

func NewSocialMediaAnalyst(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newAnalyst(deps{gateway, mem, cfg, logger}, agents.Spec{
		ID:           consts.SocialMediaAnalyst,
		AnalysisType: "sentiment_analysis",
		SystemPrompt: "你是一位专注于投资者情绪的社交媒体分析师，熟悉股吧、雪球等平台的舆情变化。" +
			"请结合讨论热度与情绪数据，评估市场对该股票的整体情绪倾向。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请分析股票 %s 当前的市场情绪。\n\n%s\n请给出：1. 整体情绪（积极/消极/中性）；2. 投资者情绪特征；3. 值得关注的热点话题。",
				in.Symbol, agents.FormatSnapshot(in.Snapshot))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseSentiment(raw, symbol)
		},
	})
}

func NewNewsAnalyst(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newAnalyst(deps{gateway, mem, cfg, logger}, agents.Spec{
		ID:           consts.NewsAnalyst,
		AnalysisType: "news_analysis",
		SystemPrompt: "你是一位财经新闻分析师，擅长解读公司公告、行业动态和宏观政策对个股的影响。" +
			"请评估近期新闻对该股票是利好、利空还是中性。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请分析以下与股票 %s 相关的新闻。\n\n%s\n请给出：1. 整体影响（利好/利空/中性）；2. 关键事件；3. 政策面影响。",
				in.Symbol, agents.FormatSnapshot(in.Snapshot))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseNews(raw, symbol)
		},
	})
}

func NewFundamentalsAnalyst(gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *agents.Base {
	return newAnalyst(deps{gateway, mem, cfg, logger}, agents.Spec{
		ID:           consts.FundamentalsAnalyst,
		AnalysisType: "fundamentals_analysis",
		SystemPrompt: "你是一位基本面分析师，精通财务报表分析与公司估值。" +
			"请基于财务数据评估公司的盈利能力、财务健康度、估值水平与成长潜力。",
		BuildUser: func(in *agents.Input) string {
			return fmt.Sprintf("请对股票 %s 进行基本面分析。\n\n%s\n请给出：1. 盈利能力评级；2. 财务健康状况；3. 估值水平（高估/合理/低估）；4. 成长潜力；5. 投资评级与目标价。",
				in.Symbol, agents.FormatSnapshot(in.Snapshot))
		},
		Parse: func(raw, symbol string) models.AgentContent {
			return signal.ParseFundamentals(raw, symbol)
		},
	})
}

func newAnalyst(d deps, spec agents.Spec) *agents.Base {
	spec.Type = "analyst"
	return agents.NewBase(spec, d.gateway, d.mem, d.cfg, d.logger)
}
