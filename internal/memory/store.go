// Package memory implements the agent memory subsystem: a content store of
// past analyses with similarity search, scoped per agent.
//
// Two interchangeable backends exist: a vector-embedding store and a crude
// keyword-overlap fallback. Construction errors are fatal to the caller.
// Write failures after a successful init are logged and swallowed; memory
// must never block or fail the agent pipeline.
package memory

import (
	"context"
	"fmt"

	"github.com/laochendeai/tradingagents-go/internal/config"
)

// Memory is one stored exchange. Score is only populated on search results.
type Memory struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score,omitempty"`
}

// MetaAgentID is the metadata key used for agent-scoped filtering.
const MetaAgentID = "agent_id"

// Store is the memory backend contract. Implementations must be safe for
// concurrent use; agents in a fan-out stage share one store.
type Store interface {
	// Add stores content with metadata and returns the new memory id.
	Add(ctx context.Context, content string, metadata map[string]string) (string, error)
	// Search returns up to limit memories scoring >= threshold, most
	// similar first. A non-empty agentID restricts results to memories
	// whose metadata carries that agent id.
	Search(ctx context.Context, query, agentID string, limit int, threshold float64) ([]Memory, error)
	// Count reports the number of stored memories.
	Count() int
}

// New constructs the backend selected by cfg. The vector backend needs an
// embedding API key; a missing key is a construction error, not a silent
// downgrade to the keyword store.
func New(cfg config.MemoryConfig) (Store, error) {
	switch cfg.Backend {
	case config.MemoryBackendKeyword, "":
		return NewKeywordStore(cfg.MaxMemories), nil
	case config.MemoryBackendVector:
		embedder, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("memory: init vector backend: %w", err)
		}
		return NewVectorStore(cfg, embedder)
	default:
		return nil, fmt.Errorf("memory: unknown backend %q", cfg.Backend)
	}
}

func matchesAgent(m Memory, agentID string) bool {
	if agentID == "" {
		return true
	}
	return m.Metadata[MetaAgentID] == agentID
}
