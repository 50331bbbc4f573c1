package game

// PlayerView is the redacted projection one player is allowed to see:
// their own hole cards plus all public table state. It is the input to
// every decision collaborator and is safe to serialize over the wire.
type PlayerView struct {
	HandID         string       `json:"hand_id"`
	HandNumber     int64        `json:"hand_number"`
	Round          string       `json:"round"`
	Pot            int64        `json:"pot"`
	CurrentBet     int64        `json:"current_bet"`
	MinimumRaise   int64        `json:"minimum_raise"`
	SmallBlind     int64        `json:"small_blind"`
	BigBlind       int64        `json:"big_blind"`
	DealerSeat     int          `json:"dealer_seat"`
	CommunityCards []string     `json:"community_cards"`
	YourCards      []string     `json:"your_cards"`
	YourChips      int64        `json:"your_chips"`
	YourCurrentBet int64        `json:"your_current_bet"`
	YourTotalBet   int64        `json:"your_total_bet"`
	CallAmount     int64        `json:"call_amount"`
	IsYourTurn     bool         `json:"is_your_turn"`
	Players        []PlayerInfo `json:"players"`
}

// ViewFor builds the view visible to playerID.
func (h *Hand) ViewFor(playerID string) (PlayerView, error) {
	p := h.playerByID(playerID)
	if p == nil {
		return PlayerView{}, ErrUnknownPlayer
	}
	call := h.currentBet - p.CurrentBet
	if call < 0 {
		call = 0
	}
	if call > p.Chips {
		call = p.Chips
	}
	return PlayerView{
		HandID:         h.id.String(),
		HandNumber:     h.handNumber,
		Round:          h.round.String(),
		Pot:            h.pot,
		CurrentBet:     h.currentBet,
		MinimumRaise:   h.minRaise,
		SmallBlind:     h.smallBlind,
		BigBlind:       h.bigBlind,
		DealerSeat:     h.dealerIdx,
		CommunityCards: cardStrings(h.board),
		YourCards:      cardStrings(p.HoleCards),
		YourChips:      p.Chips,
		YourCurrentBet: p.CurrentBet,
		YourTotalBet:   p.TotalBet,
		CallAmount:     call,
		IsYourTurn:     !h.settled && h.players[h.currentIdx] == p,
		Players:        h.Players(),
	}, nil
}

// TableView is the spectator projection: public state only, no hole
// cards for anyone.
type TableView struct {
	HandID         string       `json:"hand_id"`
	HandNumber     int64        `json:"hand_number"`
	Round          string       `json:"round"`
	Pot            int64        `json:"pot"`
	CurrentBet     int64        `json:"current_bet"`
	MinimumRaise   int64        `json:"minimum_raise"`
	DealerSeat     int          `json:"dealer_seat"`
	CurrentPlayer  string       `json:"current_player"`
	CommunityCards []string     `json:"community_cards"`
	Players        []PlayerInfo `json:"players"`
	Complete       bool         `json:"complete"`
}

// View builds the public table view.
func (h *Hand) View() TableView {
	return TableView{
		HandID:         h.id.String(),
		HandNumber:     h.handNumber,
		Round:          h.round.String(),
		Pot:            h.pot,
		CurrentBet:     h.currentBet,
		MinimumRaise:   h.minRaise,
		DealerSeat:     h.dealerIdx,
		CurrentPlayer:  h.CurrentPlayerID(),
		CommunityCards: cardStrings(h.board),
		Players:        h.Players(),
		Complete:       h.settled,
	}
}
