package events

import "github.com/google/uuid"

// Cards in events are carried in display form ("A♠") so that
// subscribers never need the engine's card types to render a hand.

// HandStarted is emitted when a new hand begins
type HandStarted struct {
	BaseEvent
	HandNumber int64    `json:"hand_number"`
	DealerSeat int      `json:"dealer_seat"`
	Players    []string `json:"players"`
	SmallBlind int64    `json:"small_blind"`
	BigBlind   int64    `json:"big_blind"`
}

// NewHandStarted creates a new HandStarted event
func NewHandStarted(handID uuid.UUID, handNumber int64, dealerSeat int, players []string, smallBlind, bigBlind, version int64) *HandStarted {
	return &HandStarted{
		BaseEvent:  NewBaseEvent(HandStartedEvent, handID, version),
		HandNumber: handNumber,
		DealerSeat: dealerSeat,
		Players:    players,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
	}
}

// BlindsPosted is emitted once small and big blinds are in the pot
type BlindsPosted struct {
	BaseEvent
	SmallBlindPlayer string `json:"small_blind_player"`
	SmallBlindAmount int64  `json:"small_blind_amount"`
	BigBlindPlayer   string `json:"big_blind_player"`
	BigBlindAmount   int64  `json:"big_blind_amount"`
	Pot              int64  `json:"pot"`
}

func NewBlindsPosted(handID uuid.UUID, sbPlayer string, sbAmount int64, bbPlayer string, bbAmount, pot, version int64) *BlindsPosted {
	return &BlindsPosted{
		BaseEvent:        NewBaseEvent(BlindsPostedEvent, handID, version),
		SmallBlindPlayer: sbPlayer,
		SmallBlindAmount: sbAmount,
		BigBlindPlayer:   bbPlayer,
		BigBlindAmount:   bbAmount,
		Pot:              pot,
	}
}

// HoleCardsDealt is emitted when every player has been dealt in. Card
// faces are intentionally omitted; hole cards only ever travel through
// the per-player redacted view.
type HoleCardsDealt struct {
	BaseEvent
	Players []string `json:"players"`
}

func NewHoleCardsDealt(handID uuid.UUID, players []string, version int64) *HoleCardsDealt {
	return &HoleCardsDealt{
		BaseEvent: NewBaseEvent(HoleCardsDealtEvent, handID, version),
		Players:   players,
	}
}

// ActionApplied is emitted after a player action mutates the hand
type ActionApplied struct {
	BaseEvent
	PlayerID   string `json:"player_id"`
	Action     string `json:"action"`
	Paid       int64  `json:"paid"`
	PlayerBet  int64  `json:"player_bet"`
	Pot        int64  `json:"pot"`
	CurrentBet int64  `json:"current_bet"`
	AllIn      bool   `json:"all_in"`
	Round      string `json:"round"`
}

func NewActionApplied(handID uuid.UUID, playerID, action string, paid, playerBet, pot, currentBet int64, allIn bool, round string, version int64) *ActionApplied {
	return &ActionApplied{
		BaseEvent:  NewBaseEvent(ActionAppliedEvent, handID, version),
		PlayerID:   playerID,
		Action:     action,
		Paid:       paid,
		PlayerBet:  playerBet,
		Pot:        pot,
		CurrentBet: currentBet,
		AllIn:      allIn,
		Round:      round,
	}
}

// RoundAdvanced is emitted when the hand moves to the next betting round
type RoundAdvanced struct {
	BaseEvent
	Round          string   `json:"round"`
	CommunityCards []string `json:"community_cards"`
	Pot            int64    `json:"pot"`
}

func NewRoundAdvanced(handID uuid.UUID, round string, communityCards []string, pot, version int64) *RoundAdvanced {
	return &RoundAdvanced{
		BaseEvent:      NewBaseEvent(RoundAdvancedEvent, handID, version),
		Round:          round,
		CommunityCards: communityCards,
		Pot:            pot,
	}
}

// PotAwarded is emitted per pot layer at showdown
type PotAwarded struct {
	BaseEvent
	Amount  int64    `json:"amount"`
	Winners []string `json:"winners"`
	SidePot bool     `json:"side_pot"`
}

func NewPotAwarded(handID uuid.UUID, amount int64, winners []string, sidePot bool, version int64) *PotAwarded {
	return &PotAwarded{
		BaseEvent: NewBaseEvent(PotAwardedEvent, handID, version),
		Amount:    amount,
		Winners:   winners,
		SidePot:   sidePot,
	}
}

// HandSettled is emitted once the pot has been fully distributed
type HandSettled struct {
	BaseEvent
	HandNumber     int64               `json:"hand_number"`
	PotDistributed int64               `json:"pot_distributed"`
	CommunityCards []string            `json:"community_cards"`
	Winners        []string            `json:"winners"`
	HoleCards      map[string][]string `json:"hole_cards"`
	FinalChips     map[string]int64    `json:"final_chips"`
	NetChange      map[string]int64    `json:"net_change"`
}

func NewHandSettled(handID uuid.UUID, handNumber, potDistributed int64, communityCards, winners []string, holeCards map[string][]string, finalChips, netChange map[string]int64, version int64) *HandSettled {
	return &HandSettled{
		BaseEvent:      NewBaseEvent(HandSettledEvent, handID, version),
		HandNumber:     handNumber,
		PotDistributed: potDistributed,
		CommunityCards: communityCards,
		Winners:        winners,
		HoleCards:      holeCards,
		FinalChips:     finalChips,
		NetChange:      netChange,
	}
}
