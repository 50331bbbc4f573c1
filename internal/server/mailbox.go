package server

import (
	"context"
	"errors"
	"sync"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// ErrNotAwaitingAction is returned when an agent submits an action but
// the match is not currently waiting on that seat.
var ErrNotAwaitingAction = errors.New("seat is not awaiting an action")

// SeatMailbox bridges the pull-style HTTP API and the push-style match
// runner. The runner blocks in Decide until the agent posts an action
// (or the decision timeout fires); Submit delivers the posted action.
type SeatMailbox struct {
	mu      sync.Mutex
	pending chan game.Action
}

func NewSeatMailbox() *SeatMailbox {
	return &SeatMailbox{}
}

// Decide waits for the agent to submit an action over HTTP. The runner
// enforces the decision timeout through ctx; expiry folds the seat.
func (m *SeatMailbox) Decide(ctx context.Context, _ game.PlayerView) (game.Action, error) {
	ch := make(chan game.Action, 1)

	m.mu.Lock()
	m.pending = ch
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.pending == ch {
			m.pending = nil
		}
		m.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return game.Action{Kind: game.Fold}, ctx.Err()
	case action := <-ch:
		return action, nil
	}
}

// Submit hands a posted action to the waiting Decide call. It fails if
// the seat is not on the clock, or if an action was already submitted
// for this turn.
func (m *SeatMailbox) Submit(action game.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return ErrNotAwaitingAction
	}
	select {
	case m.pending <- action:
		m.pending = nil
		return nil
	default:
		return ErrNotAwaitingAction
	}
}
