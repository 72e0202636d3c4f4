package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/log"
)

// ErrLLMUnavailable marks an exhausted provider; the gateway logs it and
// degrades to a canned response instead of surfacing it.
var ErrLLMUnavailable = errors.New("llm unavailable")

// Invoker is the single entry point agents use to call a model.
type Invoker interface {
	Invoke(ctx context.Context, messages []*schema.Message, agentID string, opts ...InvokeOption) (string, error)
}

// InvokeOption tweaks a single gateway call.
type InvokeOption func(*invokeSettings)

type invokeSettings struct {
	maxTokens int
}

// WithMaxTokens caps generation length for this call (the per-round depth
// token budget).
func WithMaxTokens(n int) InvokeOption {
	return func(s *invokeSettings) { s.maxTokens = n }
}

// Gateway resolves the agent's model binding, retries with exponential
// backoff on the bound provider, fails over once to the configured backup
// provider, and finally degrades to a per-agent fallback string so the
// pipeline can always run to completion with partial data.
type Gateway struct {
	providers     map[string]Provider
	backups       map[string]string
	defaultModels map[string]string
	bindings      *Bindings
	maxRetries    int
	baseDelay     time.Duration
	logger        log.Logger

	// sleep is replaced in tests to skip real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Invoker = (*Gateway)(nil)

// NewGateway wires a gateway from configuration, constructing one eino
// provider per configured endpoint.
func NewGateway(cfg *config.Config, logger log.Logger) *Gateway {
	providers := make(map[string]Provider, len(cfg.Providers))
	defaults := make(map[string]string, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		providers[name] = NewProvider(pc, cfg.Temperature, cfg.MaxTokens)
		defaults[name] = pc.QuickThinkLLM
	}

	defaultBinding := cfg.DefaultProvider + ":" + defaults[cfg.DefaultProvider]

	return newGateway(providers, defaults, cfg, NewBindings(cfg.AgentModels, defaultBinding), logger)
}

// NewGatewayWithProviders wires a gateway over caller-supplied providers.
// Tests use it to substitute scripted providers.
func NewGatewayWithProviders(providers map[string]Provider, defaultModels map[string]string, cfg *config.Config, bindings *Bindings, logger log.Logger) *Gateway {
	return newGateway(providers, defaultModels, cfg, bindings, logger)
}

func newGateway(providers map[string]Provider, defaultModels map[string]string, cfg *config.Config, bindings *Bindings, logger log.Logger) *Gateway {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	return &Gateway{
		providers:     providers,
		backups:       cfg.BackupProviders,
		defaultModels: defaultModels,
		bindings:      bindings,
		maxRetries:    maxRetries,
		baseDelay:     baseDelay,
		logger:        logger,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Bindings exposes the mutable agent-model mapping for the UI layer.
func (g *Gateway) Bindings() *Bindings { return g.bindings }

type candidate struct {
	provider Provider
	model    string
}

// Invoke calls the model bound to agentID. The returned error is non-nil
// only when ctx is cancelled; every other failure path ends in the degraded
// fallback string.
func (g *Gateway) Invoke(ctx context.Context, messages []*schema.Message, agentID string, opts ...InvokeOption) (string, error) {
	var settings invokeSettings
	for _, opt := range opts {
		opt(&settings)
	}

	var genOpts []model.Option
	if settings.maxTokens > 0 {
		genOpts = append(genOpts, model.WithMaxTokens(settings.maxTokens))
	}

	candidates := g.resolveCandidates(agentID)
	if len(candidates) == 0 {
		g.logger.Error("gateway: no provider available for agent %s", agentID)
		return FallbackResponse(agentID), nil
	}

	var lastErr error
	for _, cand := range candidates {
		delay := g.baseDelay
		for attempt := 1; attempt <= g.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			text, err := cand.provider.Generate(ctx, cand.model, messages, genOpts...)
			if err == nil && strings.TrimSpace(text) != "" {
				g.logger.Debug("gateway: agent %s served by %s:%s (attempt %d)",
					agentID, cand.provider.Name(), cand.model, attempt)
				return text, nil
			}
			if err == nil {
				err = fmt.Errorf("empty response from %s", cand.provider.Name())
			}
			lastErr = err
			g.logger.Warn("gateway: agent %s attempt %d/%d on %s failed: %v",
				agentID, attempt, g.maxRetries, cand.provider.Name(), err)

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
			}

			if attempt < g.maxRetries {
				if err := g.sleep(ctx, delay); err != nil {
					return "", err
				}
				delay *= 2
			}
		}
	}

	g.logger.Error("gateway: agent %s exhausted all providers: %v: %v", agentID, ErrLLMUnavailable, lastErr)
	return FallbackResponse(agentID), nil
}

// resolveCandidates returns the bound provider followed by its designated
// backup (at most two entries).
func (g *Gateway) resolveCandidates(agentID string) []candidate {
	providerName, modelName := g.bindings.Resolve(agentID)

	var out []candidate
	if p, ok := g.providers[providerName]; ok {
		if modelName == "" {
			modelName = g.defaultModels[providerName]
		}
		out = append(out, candidate{provider: p, model: modelName})
	}

	if backupName, ok := g.backups[providerName]; ok && backupName != providerName {
		if p, ok := g.providers[backupName]; ok {
			out = append(out, candidate{provider: p, model: g.defaultModels[backupName]})
		}
	}
	return out
}

// fallbackResponses give each agent a usable degraded reply when every
// provider is down, so downstream stages keep flowing.
var fallbackResponses = map[string]string{
	consts.MarketAnalyst:       "技术分析服务暂时不可用。建议关注股票的价格趋势、成交量变化和关键技术指标如RSI、MACD等。",
	consts.SocialMediaAnalyst:  "情感分析服务暂时不可用。建议关注市场整体情绪、投资者信心指数和社交媒体讨论热度。",
	consts.NewsAnalyst:         "新闻分析服务暂时不可用。建议关注公司最新公告、行业动态和宏观经济新闻对股价的影响。",
	consts.FundamentalsAnalyst: "基本面分析服务暂时不可用。建议关注公司财务报表、盈利能力、估值水平和行业比较。",
	consts.BullResearcher:      "多头研究服务暂时不可用。建议从积极角度分析公司发展前景、市场机会和增长潜力。",
	consts.BearResearcher:      "空头研究服务暂时不可用。建议从谨慎角度分析潜在风险、市场挑战和不确定因素。",
	consts.ResearchManager:     "研究管理服务暂时不可用。建议综合多空双方观点，权衡证据强度后谨慎决策。",
	consts.Trader:              "交易策略服务暂时不可用。建议保持现有仓位，等待服务恢复后再制定具体交易计划。",
	consts.AggressiveDebator:   "激进风险评估服务暂时不可用。建议关注策略的潜在收益空间与机会成本。",
	consts.ConservativeDebator: "保守风险评估服务暂时不可用。建议优先考虑资本保全，控制单笔仓位规模。",
	consts.NeutralDebator:      "中立风险评估服务暂时不可用。建议平衡考量策略的风险收益比。",
	consts.RiskManager:         "风险评估服务暂时不可用。建议综合考虑市场风险、流动性风险、信用风险和公司特定风险。",
}

// FallbackResponse returns the degraded reply for an agent.
func FallbackResponse(agentID string) string {
	base, ok := fallbackResponses[agentID]
	if !ok {
		base = fmt.Sprintf("%s分析服务暂时不可用", agentID)
	}
	return base + "\n\n注意：此为系统默认建议，请结合其他信息源进行综合判断。"
}
