package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ProviderConfig describes one LLM provider endpoint.
type ProviderConfig struct {
	Name           string `json:"name"`
	BaseURL        string `json:"base_url"`
	APIKeyEnv      string `json:"api_key_env"`
	DeepThinkLLM   string `json:"deep_think_llm"`
	QuickThinkLLM  string `json:"quick_think_llm"`
	NativeDeepSeek bool   `json:"native_deepseek,omitempty"`
}

// APIKey resolves the provider key from the environment.
func (p ProviderConfig) APIKey() string {
	return os.Getenv(p.APIKeyEnv)
}

// WorkflowConfig is the analysis-depth policy.
type WorkflowConfig struct {
	DebateRounds            map[models.Depth]int  `json:"debate_rounds"`
	MaxTokensPerRound       map[models.Depth]int  `json:"max_tokens_per_round"`
	EnableStrategyBacktrack map[models.Depth]bool `json:"enable_strategy_backtrack"`
}

// RoundsFor returns the debate round count for a depth, defaulting to the
// medium policy when the depth is unknown.
func (w WorkflowConfig) RoundsFor(depth models.Depth) int {
	if n, ok := w.DebateRounds[depth]; ok {
		return n
	}
	return w.DebateRounds[models.DepthMedium]
}

// TokenBudgetFor returns the per-round generation cap for a depth.
func (w WorkflowConfig) TokenBudgetFor(depth models.Depth) int {
	if n, ok := w.MaxTokensPerRound[depth]; ok {
		return n
	}
	return w.MaxTokensPerRound[models.DepthMedium]
}

// BacktrackEnabled reports whether the trader re-synthesizes the strategy
// when the final decision contradicts it.
func (w WorkflowConfig) BacktrackEnabled(depth models.Depth) bool {
	return w.EnableStrategyBacktrack[depth]
}

// MemoryBackend selects one of the two interchangeable memory stores.
type MemoryBackend string

const (
	MemoryBackendVector  MemoryBackend = "vector"
	MemoryBackendKeyword MemoryBackend = "keyword"
)

// MemoryConfig configures the agent memory subsystem.
type MemoryConfig struct {
	Backend             MemoryBackend `json:"backend"`
	PersistDir          string        `json:"persist_directory"`
	CollectionName      string        `json:"collection_name"`
	EmbeddingModel      string        `json:"embedding_model"`
	EmbeddingBaseURL    string        `json:"embedding_base_url,omitempty"`
	EmbeddingAPIKeyEnv  string        `json:"embedding_api_key_env"`
	MaxMemories         int           `json:"max_memories"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
}

// Config is the immutable root configuration, constructed once at startup
// and passed by reference into the gateway, agents and graph.
type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	Providers       map[string]ProviderConfig `json:"providers"`
	DefaultProvider string                    `json:"default_provider"`
	// BackupProviders pairs a primary provider with the one the gateway
	// switches to after the primary exhausts its retries.
	BackupProviders map[string]string `json:"backup_providers"`
	// AgentModels maps agentID -> "provider:model". Unmapped agents fall
	// back to the default provider's quick-think model.
	AgentModels map[string]string `json:"agent_models"`

	MaxRetries     int           `json:"max_retries"`
	RetryBaseDelay time.Duration `json:"retry_base_delay"`
	Temperature    float32       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`

	Workflow WorkflowConfig `json:"workflow"`
	Memory   MemoryConfig   `json:"memory"`

	// HistoryLimit bounds the in-memory session history ring.
	HistoryLimit int `json:"history_limit"`

	// RedisAddr enables the redis quote cache in dataflows when non-empty.
	RedisAddr string `json:"redis_addr,omitempty"`
	// SessionDBPath enables the sqlite session recorder when non-empty.
	SessionDBPath string `json:"session_db_path,omitempty"`

	OnlineData bool `json:"online_data"`
	Debug      bool `json:"debug"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		Providers: map[string]ProviderConfig{
			"deepseek": {
				Name:           "deepseek",
				BaseURL:        "https://api.deepseek.com/v1",
				APIKeyEnv:      "DEEPSEEK_API_KEY",
				DeepThinkLLM:   "deepseek-reasoner",
				QuickThinkLLM:  "deepseek-chat",
				NativeDeepSeek: true,
			},
			"dashscope": {
				Name:          "dashscope",
				BaseURL:       "https://dashscope.aliyuncs.com/compatible-mode/v1",
				APIKeyEnv:     "DASHSCOPE_API_KEY",
				DeepThinkLLM:  "qwen-plus",
				QuickThinkLLM: "qwen-turbo",
			},
			"openai": {
				Name:          "openai",
				BaseURL:       "https://api.openai.com/v1",
				APIKeyEnv:     "OPENAI_API_KEY",
				DeepThinkLLM:  "gpt-4o",
				QuickThinkLLM: "gpt-4o-mini",
			},
			"moonshot": {
				Name:          "moonshot",
				BaseURL:       "https://api.moonshot.cn/v1",
				APIKeyEnv:     "MOONSHOT_API_KEY",
				DeepThinkLLM:  "moonshot-v1-32k",
				QuickThinkLLM: "moonshot-v1-8k",
			},
		},
		DefaultProvider: "deepseek",
		BackupProviders: map[string]string{
			"deepseek":  "dashscope",
			"dashscope": "deepseek",
			"openai":    "deepseek",
			"moonshot":  "deepseek",
		},
		AgentModels: defaultAgentModels(),

		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		Temperature:    0.7,
		MaxTokens:      2000,

		Workflow: WorkflowConfig{
			DebateRounds: map[models.Depth]int{
				models.DepthShallow: 1,
				models.DepthMedium:  3,
				models.DepthDeep:    5,
			},
			MaxTokensPerRound: map[models.Depth]int{
				models.DepthShallow: 500,
				models.DepthMedium:  1000,
				models.DepthDeep:    2000,
			},
			EnableStrategyBacktrack: map[models.Depth]bool{
				models.DepthShallow: false,
				models.DepthMedium:  false,
				models.DepthDeep:    true,
			},
		},
		Memory: MemoryConfig{
			Backend:             MemoryBackendKeyword,
			PersistDir:          filepath.Join(currentDir, "data", "memory"),
			CollectionName:      "trading_memory",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingAPIKeyEnv:  "OPENAI_API_KEY",
			MaxMemories:         1000,
			SimilarityThreshold: 0.7,
		},

		HistoryLimit: 100,
		OnlineData:   false,
		Debug:        false,
	}
}

// defaultAgentModels binds deep-think models to the research/decision roles
// and quick-think models to the analysts, per the default provider.
func defaultAgentModels() map[string]string {
	quick := "deepseek:deepseek-chat"
	deep := "deepseek:deepseek-chat"

	return map[string]string{
		consts.MarketAnalyst:       quick,
		consts.SocialMediaAnalyst:  quick,
		consts.NewsAnalyst:         quick,
		consts.FundamentalsAnalyst: quick,
		consts.BullResearcher:      deep,
		consts.BearResearcher:      deep,
		consts.ResearchManager:     deep,
		consts.Trader:              deep,
		consts.AggressiveDebator:   deep,
		consts.ConservativeDebator: deep,
		consts.NeutralDebator:      deep,
		consts.RiskManager:         deep,
	}
}

// EnsureDirectories creates the directories the pipeline writes under.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir, c.DataCacheDir, c.Memory.PersistDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
