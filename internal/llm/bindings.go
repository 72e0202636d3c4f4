package llm

import (
	"fmt"
	"strings"
	"sync"
)

// Bindings maps agentID -> (provider, model). It is consulted on every
// Invoke, so rebinding an agent takes effect for subsequent calls only;
// in-flight calls keep the binding they resolved.
type Bindings struct {
	mu            sync.RWMutex
	byAgent       map[string]string
	defaultConfig string
}

// NewBindings copies the initial agent-model map. defaultBinding is the
// "provider:model" used for agents without an explicit entry.
func NewBindings(agentModels map[string]string, defaultBinding string) *Bindings {
	m := make(map[string]string, len(agentModels))
	for k, v := range agentModels {
		m[k] = v
	}
	return &Bindings{byAgent: m, defaultConfig: defaultBinding}
}

// Resolve returns the provider and model bound to an agent.
func (b *Bindings) Resolve(agentID string) (provider, model string) {
	b.mu.RLock()
	binding, ok := b.byAgent[agentID]
	b.mu.RUnlock()

	if !ok || binding == "" {
		binding = b.defaultConfig
	}
	provider, model, found := strings.Cut(binding, ":")
	if !found {
		return binding, ""
	}
	return provider, model
}

// Set rebinds an agent to a "provider:model" pair.
func (b *Bindings) Set(agentID, binding string) error {
	if _, _, found := strings.Cut(binding, ":"); !found {
		return fmt.Errorf("invalid binding %q, want provider:model", binding)
	}
	b.mu.Lock()
	b.byAgent[agentID] = binding
	b.mu.Unlock()
	return nil
}
