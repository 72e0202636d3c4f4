package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeywordStore is the fallback backend: substring matching with a crude
// length-ratio score. It bounds its size, evicting oldest first.
type KeywordStore struct {
	mu          sync.RWMutex
	memories    []Memory
	maxMemories int
}

var _ Store = (*KeywordStore)(nil)

// NewKeywordStore creates a keyword store capped at maxMemories entries
// (default 1000 when non-positive).
func NewKeywordStore(maxMemories int) *KeywordStore {
	if maxMemories <= 0 {
		maxMemories = 1000
	}
	return &KeywordStore{maxMemories: maxMemories}
}

func (s *KeywordStore) Add(ctx context.Context, content string, metadata map[string]string) (string, error) {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta["timestamp"]; !ok {
		meta["timestamp"] = time.Now().Format(time.RFC3339)
	}

	id := "memory_" + uuid.NewString()

	s.mu.Lock()
	s.memories = append(s.memories, Memory{ID: id, Content: content, Metadata: meta})
	if len(s.memories) > s.maxMemories {
		s.memories = s.memories[len(s.memories)-s.maxMemories:]
	}
	s.mu.Unlock()

	return id, nil
}

func (s *KeywordStore) Search(ctx context.Context, query, agentID string, limit int, threshold float64) ([]Memory, error) {
	queryLower := strings.ToLower(query)

	s.mu.RLock()
	var hits []Memory
	for _, m := range s.memories {
		if !matchesAgent(m, agentID) {
			continue
		}
		score, ok := keywordScore(queryLower, m.Content)
		if !ok || score < threshold {
			continue
		}
		hit := m
		hit.Score = score
		hits = append(hits, hit)
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *KeywordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// keywordScore is a deliberately crude similarity proxy: a substring hit
// scores len(query)/len(content). An empty query matches everything with
// the maximum score so that scoped listing (query "") works.
func keywordScore(queryLower, content string) (float64, bool) {
	if queryLower == "" {
		return 1.0, true
	}
	contentLower := strings.ToLower(content)
	if !strings.Contains(contentLower, queryLower) {
		return 0, false
	}
	if len(contentLower) == 0 {
		return 0, false
	}
	score := float64(len(queryLower)) / float64(len(contentLower))
	if score > 1 {
		score = 1
	}
	return score, true
}
