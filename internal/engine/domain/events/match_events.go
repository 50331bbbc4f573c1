package events

import "github.com/google/uuid"

// MatchStarted is emitted when a multi-hand match begins
type MatchStarted struct {
	BaseEvent
	Players       []string `json:"players"`
	StartingChips int64    `json:"starting_chips"`
	SmallBlind    int64    `json:"small_blind"`
	BigBlind      int64    `json:"big_blind"`
	MaxHands      int      `json:"max_hands"`
}

func NewMatchStarted(matchID uuid.UUID, players []string, startingChips, smallBlind, bigBlind int64, maxHands int, version int64) *MatchStarted {
	return &MatchStarted{
		BaseEvent:     NewBaseEvent(MatchStartedEvent, matchID, version),
		Players:       players,
		StartingChips: startingChips,
		SmallBlind:    smallBlind,
		BigBlind:      bigBlind,
		MaxHands:      maxHands,
	}
}

// PlayerEliminated is emitted when a player busts out of the match
type PlayerEliminated struct {
	BaseEvent
	PlayerID   string `json:"player_id"`
	HandNumber int64  `json:"hand_number"`
}

func NewPlayerEliminated(matchID uuid.UUID, playerID string, handNumber, version int64) *PlayerEliminated {
	return &PlayerEliminated{
		BaseEvent:  NewBaseEvent(PlayerEliminatedEvent, matchID, version),
		PlayerID:   playerID,
		HandNumber: handNumber,
	}
}

// MatchFinished is emitted when the match ends, either at the hand limit
// or when a single player holds every chip
type MatchFinished struct {
	BaseEvent
	HandsPlayed int64            `json:"hands_played"`
	FinalChips  map[string]int64 `json:"final_chips"`
}

func NewMatchFinished(matchID uuid.UUID, handsPlayed int64, finalChips map[string]int64, version int64) *MatchFinished {
	return &MatchFinished{
		BaseEvent:   NewBaseEvent(MatchFinishedEvent, matchID, version),
		HandsPlayed: handsPlayed,
		FinalChips:  finalChips,
	}
}
