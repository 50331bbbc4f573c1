package repositories

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pokerlab/holdem-arena/internal/engine"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// EventModel represents a persisted hand or match event
type EventModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventType   string    `gorm:"not null;index"`
	AggregateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Version     int64     `gorm:"not null"`
	Data        EventData `gorm:"type:jsonb;not null"`
	Timestamp   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// EventData is the serialized event payload
type EventData map[string]interface{}

func (ed *EventData) Scan(value interface{}) error {
	if value == nil {
		*ed = EventData{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan EventData")
	}
	return json.Unmarshal(bytes, ed)
}

func (ed EventData) Value() (driver.Value, error) {
	if ed == nil {
		return nil, nil
	}
	return json.Marshal(ed)
}

// PostgresEventStore persists domain events with gorm. The engine is a
// single writer per aggregate, so version ordering comes straight from
// the aggregate and there is no optimistic-concurrency check.
type PostgresEventStore struct {
	db *gorm.DB
}

// NewPostgresEventStore creates a new event store
func NewPostgresEventStore(db *gorm.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

// Migrate creates the event table
func (es *PostgresEventStore) Migrate() error {
	return es.db.AutoMigrate(&EventModel{})
}

// SaveEvents appends a batch of domain events for one aggregate
func (es *PostgresEventStore) SaveEvents(ctx context.Context, aggregateID uuid.UUID, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	models := make([]*EventModel, len(domainEvents))
	for i, ev := range domainEvents {
		data, err := serializeEvent(ev)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %w", ev.GetEventType(), err)
		}
		models[i] = &EventModel{
			ID:          ev.GetID(),
			EventType:   string(ev.GetEventType()),
			AggregateID: aggregateID,
			Version:     ev.GetVersion(),
			Data:        data,
			Timestamp:   ev.GetTimestamp(),
		}
	}

	if err := es.db.WithContext(ctx).Create(models).Error; err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}
	return nil
}

// GetEvents returns every event for an aggregate in the order it was
// appended. Hand versions restart at one each hand, so insertion order
// is the primary sort.
func (es *PostgresEventStore) GetEvents(ctx context.Context, aggregateID uuid.UUID) ([]engine.StoredEvent, error) {
	var models []EventModel
	err := es.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("created_at ASC, version ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	out := make([]engine.StoredEvent, len(models))
	for i, m := range models {
		payload, err := json.Marshal(m.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to re-serialize event data: %w", err)
		}
		out[i] = engine.StoredEvent{
			ID:          m.ID,
			AggregateID: m.AggregateID,
			EventType:   m.EventType,
			Version:     m.Version,
			Payload:     payload,
		}
	}
	return out, nil
}

func serializeEvent(ev events.DomainEvent) (EventData, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var data EventData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

var _ engine.EventStore = (*PostgresEventStore)(nil)
