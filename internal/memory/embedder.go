package memory

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/laochendeai/tradingagents-go/internal/config"
)

// OpenAIEmbedder encodes text with an OpenAI-compatible embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder builds an embedder from the memory configuration. A
// missing API key is a construction error.
func NewOpenAIEmbedder(cfg config.MemoryConfig) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(cfg.EmbeddingAPIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("embedding api key %s is not set", cfg.EmbeddingAPIKeyEnv)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.EmbeddingBaseURL != "" {
		clientCfg.BaseURL = cfg.EmbeddingBaseURL
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(model),
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings response contained no data")
	}
	return resp.Data[0].Embedding, nil
}
