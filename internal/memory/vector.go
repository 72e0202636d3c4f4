package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laochendeai/tradingagents-go/internal/config"
)

// Embedder encodes text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type vectorItem struct {
	Memory    Memory    `json:"memory"`
	Embedding []float32 `json:"embedding"`
}

// VectorStore ranks memories by cosine similarity of sentence embeddings.
// The collection is persisted as a JSONL file under the configured persist
// directory so it survives process restarts.
type VectorStore struct {
	mu       sync.RWMutex
	items    []vectorItem
	embedder Embedder
	path     string
}

var _ Store = (*VectorStore)(nil)

// NewVectorStore eagerly opens (or creates) the persisted collection.
// Any failure here is fatal to the caller: the store never starts in a
// silently-empty degraded mode.
func NewVectorStore(cfg config.MemoryConfig, embedder Embedder) (*VectorStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vector store requires an embedder")
	}
	if err := os.MkdirAll(cfg.PersistDir, 0755); err != nil {
		return nil, fmt.Errorf("create persist dir: %w", err)
	}

	name := cfg.CollectionName
	if name == "" {
		name = "trading_memory"
	}
	s := &VectorStore{
		embedder: embedder,
		path:     filepath.Join(cfg.PersistDir, name+".jsonl"),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load collection %s: %w", name, err)
	}
	return s, nil
}

func (s *VectorStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item vectorItem
		if err := json.Unmarshal(line, &item); err != nil {
			return fmt.Errorf("corrupt collection entry: %w", err)
		}
		s.items = append(s.items, item)
	}
	return scanner.Err()
}

func (s *VectorStore) appendToDisk(item vectorItem) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func (s *VectorStore) Add(ctx context.Context, content string, metadata map[string]string) (string, error) {
	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embed content: %w", err)
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta["timestamp"]; !ok {
		meta["timestamp"] = time.Now().Format(time.RFC3339)
	}

	item := vectorItem{
		Memory:    Memory{ID: "memory_" + uuid.NewString(), Content: content, Metadata: meta},
		Embedding: embedding,
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	err = s.appendToDisk(item)
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("persist memory: %w", err)
	}
	return item.Memory.ID, nil
}

func (s *VectorStore) Search(ctx context.Context, query, agentID string, limit int, threshold float64) ([]Memory, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	var hits []Memory
	for _, item := range s.items {
		if !matchesAgent(item.Memory, agentID) {
			continue
		}
		score := cosineSimilarity(queryEmbedding, item.Embedding)
		if score < threshold {
			continue
		}
		hit := item.Memory
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

func (s *VectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
