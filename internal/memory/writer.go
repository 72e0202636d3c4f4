package memory

import (
	"context"
	"sync"
	"time"

	"github.com/laochendeai/tradingagents-go/internal/log"
)

// Writer supervises fire-and-forget memory writes. Agents call AddAsync and
// never wait; failures are logged and swallowed. Close drains pending
// writes so a graceful shutdown does not drop them.
type Writer struct {
	store   Store
	logger  log.Logger
	timeout time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewWriter wraps a store with asynchronous write supervision.
func NewWriter(store Store, logger log.Logger) *Writer {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Writer{store: store, logger: logger, timeout: 10 * time.Second}
}

// Store returns the wrapped store for synchronous reads.
func (w *Writer) Store() Store { return w.store }

// AddAsync persists content in the background. After Close it degrades to a
// logged drop instead of spawning new work.
func (w *Writer) AddAsync(content string, metadata map[string]string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("memory writer closed, dropping write")
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		if _, err := w.store.Add(ctx, content, metadata); err != nil {
			w.logger.Warn("memory write failed: %v", err)
		}
	}()
}

// Close waits for pending writes until ctx expires.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
