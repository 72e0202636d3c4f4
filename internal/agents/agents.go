// Package agents implements the shared agent lifecycle. Every agent follows
// the same shape: recall prior analyses from memory, build a prompt from the
// session state, call the model through the gateway, parse the free-text
// reply into a structured record, then persist the exchange asynchronously.
// Agent failures never propagate; a failed call yields a degraded result
// record and the pipeline continues.
package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/llm"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/memory"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

const (
	maxRecalled     = 5
	maxDigestItems  = 3
	maxDigestLength = 200
)

// Input is the accumulated session state an agent conditions on. Later
// stages see more fields populated; agents must tolerate nil sections.
type Input struct {
	Symbol    string
	Depth     models.Depth
	Snapshot  *models.MarketSnapshot
	Reports   *models.AnalystReports
	Research  *models.ResearchResults
	Strategy  *models.AgentResult
	Risk      *models.RiskResults
	Portfolio *models.PortfolioContext
}

// Agent is one pipeline participant.
type Agent interface {
	ID() string
	Analyze(ctx context.Context, in *Input) *models.AgentResult
}

// Debater is implemented by agents that also produce free-text rebuttals
// during multi-round debates.
type Debater interface {
	Agent
	Rebut(ctx context.Context, in *Input, round int, history []models.DebateRound) (string, error)
}

// Spec describes one concrete agent. BuildUser renders the user prompt from
// the session state; Parse turns the raw model reply into the structured
// content record.
type Spec struct {
	ID           string
	Type         string
	AnalysisType string
	SystemPrompt string
	BuildUser    func(in *Input) string
	Parse        func(raw, symbol string) models.AgentContent
}

// Base runs the shared lifecycle for a Spec.
type Base struct {
	spec    Spec
	gateway llm.Invoker
	mem     *memory.Writer
	cfg     *config.Config
	logger  log.Logger
}

func NewBase(spec Spec, gateway llm.Invoker, mem *memory.Writer, cfg *config.Config, logger log.Logger) *Base {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Base{spec: spec, gateway: gateway, mem: mem, cfg: cfg, logger: logger}
}

func (b *Base) ID() string { return b.spec.ID }

// Analyze runs the full lifecycle. Only context cancellation surfaces as an
// error result; every other failure is already absorbed by the gateway.
func (b *Base) Analyze(ctx context.Context, in *Input) *models.AgentResult {
	recalled := b.recall(ctx, in.Symbol)

	messages := []*schema.Message{
		schema.SystemMessage(b.spec.SystemPrompt),
		schema.UserMessage(b.userPrompt(in, recalled)),
	}

	raw, err := b.gateway.Invoke(ctx, messages, b.spec.ID,
		llm.WithMaxTokens(b.cfg.Workflow.TokenBudgetFor(in.Depth)))
	if err != nil {
		return models.ErrorResult(b.spec.ID, b.spec.Type, b.spec.AnalysisType, in.Symbol, err)
	}

	content := b.spec.Parse(raw, in.Symbol)

	b.remember(in.Symbol, raw)

	return &models.AgentResult{
		AgentID:      b.spec.ID,
		AgentType:    b.spec.Type,
		AnalysisType: b.spec.AnalysisType,
		Symbol:       in.Symbol,
		Status:       models.ResultSuccess,
		Content:      content,
		RawResponse:  raw,
		Timestamp:    time.Now(),
	}
}

// Rebut produces one free-text debate turn. The caller supplies the rounds
// completed so far; the agent sees only those, never the current round's
// concurrent replies.
func (b *Base) Rebut(ctx context.Context, in *Input, round int, history []models.DebateRound) (string, error) {
	var sb strings.Builder
	sb.WriteString(b.userPrompt(in, nil))
	sb.WriteString("\n\n")
	sb.WriteString(formatDebateHistory(history))
	fmt.Fprintf(&sb, "\n现在是第%d轮辩论。请针对对方观点进行反驳，并强化你的立场。", round)

	messages := []*schema.Message{
		schema.SystemMessage(b.spec.SystemPrompt),
		schema.UserMessage(sb.String()),
	}

	raw, err := b.gateway.Invoke(ctx, messages, b.spec.ID,
		llm.WithMaxTokens(b.cfg.Workflow.TokenBudgetFor(in.Depth)))
	if err != nil {
		return "", err
	}
	b.remember(in.Symbol, raw)
	return raw, nil
}

func (b *Base) userPrompt(in *Input, recalled []memory.Memory) string {
	var sb strings.Builder
	sb.WriteString(b.spec.BuildUser(in))
	if digest := digestMemories(recalled); digest != "" {
		sb.WriteString("\n\n历史分析参考：\n")
		sb.WriteString(digest)
	}
	return sb.String()
}

func (b *Base) recall(ctx context.Context, symbol string) []memory.Memory {
	if b.mem == nil {
		return nil
	}
	query := fmt.Sprintf("%s %s", symbol, b.spec.AnalysisType)
	recalled, err := b.mem.Store().Search(ctx, query, b.spec.ID, maxRecalled, b.cfg.Memory.SimilarityThreshold)
	if err != nil {
		b.logger.Warn("agent %s: memory recall failed: %v", b.spec.ID, err)
		return nil
	}
	return recalled
}

func (b *Base) remember(symbol, raw string) {
	if b.mem == nil || strings.TrimSpace(raw) == "" {
		return
	}
	content := fmt.Sprintf("[%s] %s: %s", time.Now().Format("2006-01-02"), symbol, raw)
	b.mem.AddAsync(content, map[string]string{
		memory.MetaAgentID: b.spec.ID,
		"symbol":           symbol,
		"analysis_type":    b.spec.AnalysisType,
	})
}

// digestMemories compacts recalled memories into a short prompt section so
// history never crowds out the live data.
func digestMemories(recalled []memory.Memory) string {
	if len(recalled) == 0 {
		return ""
	}
	if len(recalled) > maxDigestItems {
		recalled = recalled[:maxDigestItems]
	}
	var sb strings.Builder
	for i, m := range recalled {
		content := m.Content
		if len([]rune(content)) > maxDigestLength {
			content = string([]rune(content)[:maxDigestLength]) + "…"
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, content)
	}
	return sb.String()
}

func formatDebateHistory(history []models.DebateRound) string {
	if len(history) == 0 {
		return "辩论尚未开始。"
	}
	var sb strings.Builder
	sb.WriteString("此前的辩论记录：\n")
	for _, round := range history {
		fmt.Fprintf(&sb, "--- 第%d轮 ---\n", round.Round)
		ids := make([]string, 0, len(round.Responses))
		for agentID := range round.Responses {
			ids = append(ids, agentID)
		}
		sort.Strings(ids)
		for _, agentID := range ids {
			fmt.Fprintf(&sb, "[%s] %s\n", agentID, round.Responses[agentID])
		}
	}
	return sb.String()
}
