package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event
type EventType string

// Domain event types
const (
	HandStartedEvent      EventType = "hand.started"
	BlindsPostedEvent     EventType = "hand.blinds_posted"
	HoleCardsDealtEvent   EventType = "hand.hole_cards_dealt"
	ActionAppliedEvent    EventType = "hand.action_applied"
	RoundAdvancedEvent    EventType = "hand.round_advanced"
	PotAwardedEvent       EventType = "hand.pot_awarded"
	HandSettledEvent      EventType = "hand.settled"
	MatchStartedEvent     EventType = "match.started"
	MatchFinishedEvent    EventType = "match.finished"
	PlayerEliminatedEvent EventType = "match.player_eliminated"
)

// BaseEvent contains common fields for all domain events
type BaseEvent struct {
	ID          uuid.UUID `json:"id"`
	EventType   EventType `json:"event_type"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	Version     int64     `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

// DomainEvent interface that all events must implement
type DomainEvent interface {
	GetID() uuid.UUID
	GetEventType() EventType
	GetAggregateID() uuid.UUID
	GetVersion() int64
	GetTimestamp() time.Time
}

func (e BaseEvent) GetID() uuid.UUID {
	return e.ID
}

func (e BaseEvent) GetEventType() EventType {
	return e.EventType
}

func (e BaseEvent) GetAggregateID() uuid.UUID {
	return e.AggregateID
}

func (e BaseEvent) GetVersion() int64 {
	return e.Version
}

func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event
func NewBaseEvent(eventType EventType, aggregateID uuid.UUID, version int64) BaseEvent {
	return BaseEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Version:     version,
		Timestamp:   time.Now(),
	}
}
