package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSONB wraps arbitrary JSON for postgres jsonb columns.
type JSONB json.RawMessage

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSONB")
	}
	*j = append((*j)[0:0], bytes...)
	return nil
}

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// HandRecord is one settled hand of a match, kept for the hand-history
// API and telemetry consumers.
type HandRecord struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MatchID        uuid.UUID `json:"match_id" gorm:"type:uuid;not null;index"`
	HandNumber     int64     `json:"hand_number" gorm:"not null;index"`
	PotDistributed int64     `json:"pot_distributed" gorm:"not null"`
	CommunityCards JSONB     `json:"community_cards" gorm:"type:jsonb"`
	Winners        JSONB     `json:"winners" gorm:"type:jsonb"`
	Outcomes       JSONB     `json:"outcomes" gorm:"type:jsonb"` // per-player final chips, hole cards, net change
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ActionRecord is one applied action within a hand.
type ActionRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	HandID    uuid.UUID `json:"hand_id" gorm:"type:uuid;not null;index"`
	MatchID   uuid.UUID `json:"match_id" gorm:"type:uuid;not null;index"`
	AgentID   string    `json:"agent_id" gorm:"not null;size:100"`
	Round     string    `json:"round" gorm:"not null;size:20"`
	Action    string    `json:"action" gorm:"not null;size:20"`
	Paid      int64     `json:"paid" gorm:"not null"`
	Pot       int64     `json:"pot" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
