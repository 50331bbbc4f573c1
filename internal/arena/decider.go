// Package arena drives matches between external decision-makers. The
// engine only ever sees validated actions applied one at a time; every
// unreliable part of talking to an agent (latency, timeouts, malformed
// replies) is absorbed here and mapped to a fold.
package arena

import (
	"context"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// Decider is a decision collaborator: given the redacted view of the
// table it returns the action the player takes. Implementations may be
// in-process strategies or remote agents behind a network round trip;
// they may be slow and they may fail. The runner bounds every call
// with a timeout and substitutes a fold when no usable decision
// arrives.
type Decider interface {
	Decide(ctx context.Context, view game.PlayerView) (game.Action, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, view game.PlayerView) (game.Action, error)

func (f DeciderFunc) Decide(ctx context.Context, view game.PlayerView) (game.Action, error) {
	return f(ctx, view)
}
