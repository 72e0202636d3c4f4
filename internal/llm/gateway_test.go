package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/log"
)

// fakeProvider scripts per-call outcomes.
type fakeProvider struct {
	name    string
	replies []string
	errs    []error
	calls   atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (string, error) {
	n := int(p.calls.Add(1)) - 1
	if n < len(p.errs) && p.errs[n] != nil {
		return "", p.errs[n]
	}
	if n < len(p.replies) {
		return p.replies[n], nil
	}
	return "", errors.New("script exhausted")
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.MaxRetries = 3
	cfg.RetryBaseDelay = time.Millisecond
	cfg.BackupProviders = map[string]string{"primary": "backup"}
	cfg.AgentModels = map[string]string{consts.Trader: "primary:model-a"}
	cfg.DefaultProvider = "primary"
	return cfg
}

func newTestGateway(cfg *config.Config, providers map[string]Provider) *Gateway {
	bindings := NewBindings(cfg.AgentModels, "primary:model-a")
	g := NewGatewayWithProviders(providers, map[string]string{"primary": "model-a", "backup": "model-b"}, cfg, bindings, &log.NoOpLogger{})
	g.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return g
}

func messages() []*schema.Message {
	return []*schema.Message{schema.UserMessage("分析一下")}
}

func TestInvokeFirstAttemptSucceeds(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []string{"看涨"}}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary})

	text, err := g.Invoke(context.Background(), messages(), consts.Trader)
	require.NoError(t, err)
	assert.Equal(t, "看涨", text)
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestInvokeRetriesThenSucceeds(t *testing.T) {
	primary := &fakeProvider{
		name:    "primary",
		errs:    []error{errors.New("503"), errors.New("503"), nil},
		replies: []string{"", "", "第三次成功"},
	}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary})

	text, err := g.Invoke(context.Background(), messages(), consts.Trader)
	require.NoError(t, err)
	assert.Equal(t, "第三次成功", text)
	assert.Equal(t, int32(3), primary.calls.Load())
}

func TestInvokeFailsOverToBackup(t *testing.T) {
	primary := &fakeProvider{
		name: "primary",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	backup := &fakeProvider{name: "backup", replies: []string{"备用回复"}}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary, "backup": backup})

	text, err := g.Invoke(context.Background(), messages(), consts.Trader)
	require.NoError(t, err)
	assert.Equal(t, "备用回复", text)
	assert.Equal(t, int32(3), primary.calls.Load())
	assert.Equal(t, int32(1), backup.calls.Load())
}

func TestInvokeDegradesToFallbackString(t *testing.T) {
	primary := &fakeProvider{
		name: "primary",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	backup := &fakeProvider{
		name: "backup",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary, "backup": backup})

	text, err := g.Invoke(context.Background(), messages(), consts.Trader)
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse(consts.Trader), text)
	assert.NotEmpty(t, text)
}

func TestInvokeEmptyResponseCountsAsFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []string{"", "   ", "有内容了"}}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary})

	text, err := g.Invoke(context.Background(), messages(), consts.Trader)
	require.NoError(t, err)
	assert.Equal(t, "有内容了", text)
}

func TestInvokeReturnsErrorOnCancelledContext(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []string{"不应被使用"}}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Invoke(ctx, messages(), consts.Trader)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), primary.calls.Load())
}

func TestInvokeUnknownAgentFallsBackToDefaultBinding(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []string{"默认绑定"}}
	g := newTestGateway(testConfig(), map[string]Provider{"primary": primary})

	text, err := g.Invoke(context.Background(), messages(), "some_new_agent")
	require.NoError(t, err)
	assert.Equal(t, "默认绑定", text)
}

func TestFallbackResponsesCoverRoster(t *testing.T) {
	roster := []string{
		consts.MarketAnalyst, consts.SocialMediaAnalyst, consts.NewsAnalyst,
		consts.FundamentalsAnalyst, consts.BullResearcher, consts.BearResearcher,
		consts.ResearchManager, consts.Trader, consts.AggressiveDebator,
		consts.ConservativeDebator, consts.NeutralDebator, consts.RiskManager,
	}
	for _, agentID := range roster {
		text := FallbackResponse(agentID)
		assert.NotEmpty(t, text, "agent %s", agentID)
		assert.True(t, strings.Contains(text, "系统默认建议"), "agent %s", agentID)
	}
	// an unknown agent still gets a generic response
	assert.NotEmpty(t, FallbackResponse("unknown"))
}

func TestBindingsSetAndResolve(t *testing.T) {
	b := NewBindings(map[string]string{consts.Trader: "primary:model-a"}, "primary:default")

	provider, modelName := b.Resolve(consts.Trader)
	assert.Equal(t, "primary", provider)
	assert.Equal(t, "model-a", modelName)

	provider, modelName = b.Resolve("unbound_agent")
	assert.Equal(t, "primary", provider)
	assert.Equal(t, "default", modelName)

	require.NoError(t, b.Set(consts.Trader, "backup:model-b"))
	provider, modelName = b.Resolve(consts.Trader)
	assert.Equal(t, "backup", provider)
	assert.Equal(t, "model-b", modelName)

	assert.Error(t, b.Set(consts.Trader, "no-colon"))
}
