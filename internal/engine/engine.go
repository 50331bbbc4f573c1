package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// Engine defines the hand-lifecycle operations the harness drives. A
// Session is the concrete implementation; the interface exists so the
// transport and runner layers can be tested against fakes.
type Engine interface {
	// StartHand begins a new hand, rotating the dealer and reusing
	// chip counts from the previous hand when preserveChips is set.
	StartHand(playerIDs, names []string, startingChips int64, preserveChips bool) error

	// ProcessAction validates and applies a single player action.
	ProcessAction(playerID string, action game.Action) (game.ActionResult, error)

	// ViewFor returns the redacted state visible to one player.
	ViewFor(playerID string) (game.PlayerView, error)

	// View returns the public spectator state.
	View() (game.TableView, error)

	// Result returns the settlement summary of the current hand, nil
	// until it settles.
	Result() *game.HandResult

	// DrainEvents returns and clears the domain events recorded since
	// the last drain.
	DrainEvents() []events.DomainEvent
}

// EventStore persists domain events for hand history and audit.
type EventStore interface {
	SaveEvents(ctx context.Context, aggregateID uuid.UUID, evts []events.DomainEvent) error
	GetEvents(ctx context.Context, aggregateID uuid.UUID) ([]StoredEvent, error)
}

// StoredEvent is a persisted domain event in serialized form.
type StoredEvent struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Version     int64
	Payload     []byte
}
