package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/laochendeai/tradingagents-go/internal/config"
)

// Provider is one LLM backend. Implementations must be safe for concurrent
// use: agents in a fan-out stage share a single provider instance.
type Provider interface {
	Name() string
	Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (string, error)
}

// einoProvider serves an OpenAI-compatible (or native deepseek) endpoint
// through the eino chat-model components, caching one client per model.
type einoProvider struct {
	cfg         config.ProviderConfig
	temperature float32
	maxTokens   int

	mu      sync.Mutex
	clients map[string]model.BaseChatModel
}

// NewProvider builds a Provider from its endpoint configuration.
func NewProvider(cfg config.ProviderConfig, temperature float32, maxTokens int) Provider {
	return &einoProvider{
		cfg:         cfg,
		temperature: temperature,
		maxTokens:   maxTokens,
		clients:     make(map[string]model.BaseChatModel),
	}
}

func (p *einoProvider) Name() string { return p.cfg.Name }

func (p *einoProvider) chatModel(ctx context.Context, modelName string) (model.BaseChatModel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cm, ok := p.clients[modelName]; ok {
		return cm, nil
	}

	apiKey := p.cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("provider %s: %s is not set", p.cfg.Name, p.cfg.APIKeyEnv)
	}

	var (
		cm  model.BaseChatModel
		err error
	)
	if p.cfg.NativeDeepSeek {
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    apiKey,
			Model:     modelName,
			MaxTokens: p.maxTokens,
		})
	} else {
		maxTokens := p.maxTokens
		temperature := p.temperature
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     p.cfg.BaseURL,
			APIKey:      apiKey,
			Model:       modelName,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("provider %s: create chat model %s: %w", p.cfg.Name, modelName, err)
	}

	p.clients[modelName] = cm
	return cm, nil
}

func (p *einoProvider) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (string, error) {
	cm, err := p.chatModel(ctx, modelName)
	if err != nil {
		return "", err
	}

	msg, err := cm.Generate(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("provider %s: nil response", p.cfg.Name)
	}
	return msg.Content, nil
}
