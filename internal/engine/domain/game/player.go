package game

// Player represents a seat in a single hand. The zero chip stack and
// the all-in flag are maintained exclusively by the hand's own
// mutators; nothing outside this package edits a player directly.
type Player struct {
	ID         string
	Name       string
	Seat       int
	Chips      int64
	HoleCards  []Card
	CurrentBet int64 // wagered in the current betting round
	TotalBet   int64 // wagered across the whole hand, drives side-pot eligibility
	IsActive   bool  // still contesting the pot, false once folded
	IsAllIn    bool
	HasActed   bool

	startStack int64 // stack at hand start, for net-change reporting
}

// CanAct reports whether the player still owes a decision this hand.
func (p *Player) CanAct() bool {
	return p.IsActive && !p.IsAllIn && p.Chips > 0
}

// owesAction reports whether the player must still act this round: they
// either have not acted at all, or a raise reopened the betting above
// their current commitment.
func (p *Player) owesAction(tableBet int64) bool {
	return p.CanAct() && (!p.HasActed || p.CurrentBet < tableBet)
}

// pay moves up to amount chips from the stack into the hand's wagers
// and returns what was actually paid. A payment that consumes the whole
// stack marks the player all-in.
func (p *Player) pay(amount int64) int64 {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.IsAllIn = true
	}
	return amount
}

// PlayerInfo is the public projection of a player: everything every
// observer may see. Hole cards are deliberately absent.
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"`
	Chips      int64  `json:"chips"`
	CurrentBet int64  `json:"current_bet"`
	TotalBet   int64  `json:"total_bet"`
	IsActive   bool   `json:"is_active"`
	IsAllIn    bool   `json:"is_all_in"`
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{
		ID:         p.ID,
		Name:       p.Name,
		Seat:       p.Seat,
		Chips:      p.Chips,
		CurrentBet: p.CurrentBet,
		TotalBet:   p.TotalBet,
		IsActive:   p.IsActive,
		IsAllIn:    p.IsAllIn,
	}
}
