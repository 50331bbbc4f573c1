package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is a multi-hand session between a fixed set of agents.
type Match struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string         `json:"name" gorm:"not null;size:100"`
	SmallBlind    int64          `json:"small_blind" gorm:"not null"`
	BigBlind      int64          `json:"big_blind" gorm:"not null"`
	StartingChips int64          `json:"starting_chips" gorm:"not null"`
	MaxHands      int            `json:"max_hands" gorm:"not null"`
	Seed          int64          `json:"-" gorm:"default:0"` // 0 means a fresh shuffle per match
	Status        string         `json:"status" gorm:"not null;size:20;default:created;index"` // 'created', 'running', 'finished', 'cancelled'
	HandsPlayed   int64          `json:"hands_played" gorm:"default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Seats []MatchSeat `json:"seats,omitempty" gorm:"foreignKey:MatchID"`
}

// Decider kinds a seat can be configured with.
const (
	DeciderHTTP   = "http"   // agent polls its view and posts actions via the API
	DeciderRemote = "remote" // the server pushes decision requests to the agent's URL
	DeciderCaller = "caller"
	DeciderRandom = "random"
	DeciderTight  = "tight"
)

// MatchSeat binds an agent to a seat in a match.
type MatchSeat struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MatchID    uuid.UUID `json:"match_id" gorm:"type:uuid;not null;index"`
	AgentID    string    `json:"agent_id" gorm:"not null;size:100;index"`
	AgentName  string    `json:"agent_name" gorm:"not null;size:100"`
	Seat       int       `json:"seat" gorm:"not null"`
	Decider    string    `json:"decider" gorm:"not null;size:20;default:http"`
	AgentURL   string    `json:"agent_url,omitempty" gorm:"size:255"`
	FinalChips int64     `json:"final_chips" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// SeatRequest configures one seat of a new match.
type SeatRequest struct {
	AgentID   string `json:"agent_id" validate:"required,min=1,max=100"`
	AgentName string `json:"agent_name" validate:"required,min=1,max=100"`
	Decider   string `json:"decider" validate:"required,oneof=http remote caller random tight"`
	URL       string `json:"url,omitempty" validate:"omitempty,url"`
}

// CreateMatchRequest is the payload for creating a match.
type CreateMatchRequest struct {
	Name          string        `json:"name" validate:"required,min=3,max=100"`
	SmallBlind    int64         `json:"small_blind" validate:"required,min=1"`
	BigBlind      int64         `json:"big_blind" validate:"required,gtfield=SmallBlind"`
	StartingChips int64         `json:"starting_chips" validate:"required,min=1"`
	MaxHands      int           `json:"max_hands" validate:"required,min=1,max=10000"`
	Seats         []SeatRequest `json:"seats" validate:"required,min=2,max=9,dive"`
	Seed          int64         `json:"seed,omitempty"`
}
