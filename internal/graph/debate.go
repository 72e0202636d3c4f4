package graph

import (
	"context"
	"sync"

	"github.com/laochendeai/tradingagents-go/internal/agents"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// DebateCoordinator drives multi-round debates. Within a round every
// participant speaks concurrently and sees only the completed prior rounds,
// so neither side can react to the other's same-round reply.
type DebateCoordinator struct {
	logger log.Logger
}

func NewDebateCoordinator(logger log.Logger) *DebateCoordinator {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &DebateCoordinator{logger: logger}
}

// Run executes rounds full debate rounds and returns them in order. The
// only error is context cancellation; a participant whose model degraded
// still contributes its fallback prose.
func (c *DebateCoordinator) Run(ctx context.Context, in *agents.Input, participants []agents.Debater, rounds int) ([]models.DebateRound, error) {
	history := make([]models.DebateRound, 0, rounds)

	for round := 1; round <= rounds; round++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		// snapshot of completed rounds shared read-only by this round
		prior := make([]models.DebateRound, len(history))
		copy(prior, history)

		type reply struct {
			agentID string
			text    string
			err     error
		}

		var wg sync.WaitGroup
		replies := make([]reply, len(participants))
		for i, p := range participants {
			wg.Add(1)
			go func(i int, p agents.Debater) {
				defer wg.Done()
				text, err := p.Rebut(ctx, in, round, prior)
				replies[i] = reply{agentID: p.ID(), text: text, err: err}
			}(i, p)
		}
		wg.Wait()

		current := models.DebateRound{Round: round, Responses: make(map[string]string, len(participants))}
		for _, r := range replies {
			if r.err != nil {
				return history, r.err
			}
			current.Responses[r.agentID] = r.text
		}
		history = append(history, current)
		c.logger.Debug("debate round %d/%d completed for %s", round, rounds, in.Symbol)
	}

	return history, nil
}
