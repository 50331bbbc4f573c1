package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// Round represents the current betting round of a hand
type Round int

const (
	Preflop Round = iota + 1
	Flop
	Turn
	River
	Showdown
)

func (r Round) String() string {
	switch r {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Seat describes one participant when a hand is created.
type Seat struct {
	ID    string
	Name  string
	Chips int64
}

// Config carries the fixed parameters of a single hand.
type Config struct {
	SmallBlind int64
	BigBlind   int64
	HandNumber int64
	DealerSeat int
}

// Hand is the root aggregate for a single hand of no-limit hold'em.
// Every field is private: the only mutators are NewHand and
// ProcessAction, so the invariants (chip conservation, monotonic
// current bet, exactly-once payout) cannot be broken from outside.
//
// A Hand is single-threaded. A concurrent host must serialize calls
// into ProcessAction; there is no internal locking.
type Hand struct {
	id         uuid.UUID
	handNumber int64
	players    []*Player // fixed seat order
	board      []Card
	deck       *Deck
	pot        int64
	currentBet int64
	minRaise   int64
	dealerIdx  int
	currentIdx int
	round      Round
	smallBlind int64
	bigBlind   int64

	startChips int64 // sum of stacks at hand start, the conservation baseline
	settled    bool
	result     *HandResult

	version int64
	pending []events.DomainEvent
}

// NewHand creates a hand: seats the players, shuffles a fresh deck with
// the supplied random source, posts blinds, deals two hole cards per
// player and sets the first player to act.
func NewHand(seats []Seat, cfg Config, rng *rand.Rand) (*Hand, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(seats))
	}

	h := &Hand{
		id:         uuid.New(),
		handNumber: cfg.HandNumber,
		round:      Preflop,
		smallBlind: cfg.SmallBlind,
		bigBlind:   cfg.BigBlind,
		minRaise:   cfg.BigBlind - cfg.SmallBlind,
		dealerIdx:  cfg.DealerSeat % len(seats),
		deck:       NewDeck(),
	}

	playerIDs := make([]string, 0, len(seats))
	for i, s := range seats {
		if s.Chips <= 0 {
			return nil, fmt.Errorf("player %s has no chips to play with", s.ID)
		}
		h.players = append(h.players, &Player{
			ID:         s.ID,
			Name:       s.Name,
			Seat:       i,
			Chips:      s.Chips,
			IsActive:   true,
			startStack: s.Chips,
		})
		h.startChips += s.Chips
		playerIDs = append(playerIDs, s.ID)
	}

	h.deck.Shuffle(rng)

	h.emit(events.NewHandStarted(h.id, h.handNumber, h.dealerIdx, playerIDs, h.smallBlind, h.bigBlind, h.version))

	h.postBlinds()
	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}
	h.emit(events.NewHoleCardsDealt(h.id, playerIDs, h.version))

	// Preflop the action opens after the big blind. Heads-up the
	// dealer posts the small blind and opens.
	var open int
	if len(h.players) == 2 {
		open = h.dealerIdx
	} else {
		open = (h.dealerIdx + 3) % len(h.players)
	}
	h.currentIdx = h.firstOwing(open)

	// Blinds can leave nobody able to act (short stacks all-in on the
	// forced bets), in which case the hand plays itself out.
	for !h.settled && h.isRoundComplete() {
		if err := h.advanceRound(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// postBlinds moves the forced bets into the pot. A blind that exhausts
// a stack puts that player all-in under table-stakes rules.
func (h *Hand) postBlinds() {
	var sbIdx, bbIdx int
	if len(h.players) == 2 {
		sbIdx = h.dealerIdx
		bbIdx = (h.dealerIdx + 1) % 2
	} else {
		sbIdx = (h.dealerIdx + 1) % len(h.players)
		bbIdx = (h.dealerIdx + 2) % len(h.players)
	}

	sb := h.players[sbIdx]
	bb := h.players[bbIdx]
	sbPaid := sb.pay(h.smallBlind)
	bbPaid := bb.pay(h.bigBlind)
	h.pot += sbPaid + bbPaid
	h.currentBet = bbPaid

	h.emit(events.NewBlindsPosted(h.id, sb.ID, sbPaid, bb.ID, bbPaid, h.pot, h.version))
}

func (h *Hand) dealHoleCards() error {
	for i := 0; i < 2; i++ {
		for _, p := range h.players {
			card, err := h.deck.Deal(1)
			if err != nil {
				return err
			}
			p.HoleCards = append(p.HoleCards, card...)
		}
	}
	return nil
}

// ProcessAction validates and applies one player action. On any
// precondition failure the hand is untouched and a typed error names
// the reason. On success the turn advances and, when the betting round
// has completed, the hand deals forward (possibly all the way through
// showdown and payout).
func (h *Hand) ProcessAction(playerID string, a Action) (ActionResult, error) {
	if h.settled {
		return ActionResult{}, ErrNoActiveHand
	}
	p := h.playerByID(playerID)
	if p == nil {
		return ActionResult{}, ErrUnknownPlayer
	}
	if h.players[h.currentIdx] != p {
		return ActionResult{}, ErrNotYourTurn
	}
	if !p.IsActive {
		return ActionResult{}, ErrAlreadyFolded
	}
	if p.IsAllIn {
		return ActionResult{}, ErrAlreadyAllIn
	}
	if p.Chips <= 0 && a.Kind != Fold {
		return ActionResult{}, ErrNoChipsRemaining
	}

	var paid int64
	switch a.Kind {
	case Fold:
		p.IsActive = false

	case Check:
		if p.CurrentBet != h.currentBet {
			return ActionResult{}, ErrCannotCheckFacingBet
		}

	case Call:
		// A short stack calls for whatever it has left.
		paid = p.pay(h.currentBet - p.CurrentBet)
		h.pot += paid

	case Raise:
		if a.To <= p.CurrentBet {
			return ActionResult{}, ErrRaiseMustExceedCurrentBet
		}
		maxAffordable := p.CurrentBet + p.Chips
		to := a.To
		if to > maxAffordable {
			to = maxAffordable
		}
		// Below-minimum raises are only legal as a full all-in.
		if to < h.currentBet+h.minRaise && to < maxAffordable {
			return ActionResult{}, ErrRaiseBelowMinimum
		}
		paid = p.pay(to - p.CurrentBet)
		h.pot += paid
		h.applyWagerLevel(p)

	case AllIn:
		paid = p.pay(p.Chips)
		h.pot += paid
		h.applyWagerLevel(p)

	default:
		return ActionResult{}, ErrInvalidAction
	}

	p.HasActed = true
	h.emit(events.NewActionApplied(h.id, p.ID, a.Kind.String(), paid, p.CurrentBet, h.pot, h.currentBet, p.IsAllIn, h.round.String(), h.version))

	h.advanceTurn()
	for !h.settled && h.isRoundComplete() {
		if err := h.advanceRound(); err != nil {
			return ActionResult{}, err
		}
	}

	return ActionResult{
		PlayerID:   p.ID,
		Kind:       a.Kind,
		Paid:       paid,
		PlayerBet:  p.CurrentBet,
		Pot:        h.pot,
		CurrentBet: h.currentBet,
		AllIn:      p.IsAllIn,
		Round:      h.round,
		HandOver:   h.settled,
	}, nil
}

// applyWagerLevel folds a raise (or raising all-in) into the table
// state: the current bet moves up, the minimum raise becomes the raise
// delta, and every other player below the new level must act again.
func (h *Hand) applyWagerLevel(raiser *Player) {
	if raiser.CurrentBet <= h.currentBet {
		return // all-in below the table bet plays as a call
	}
	h.minRaise = raiser.CurrentBet - h.currentBet
	h.currentBet = raiser.CurrentBet
	for _, p := range h.players {
		if p != raiser && p.CanAct() && p.CurrentBet < h.currentBet {
			p.HasActed = false
		}
	}
}

// advanceTurn moves the action pointer to the next seat clockwise that
// still owes action. If nobody does, the pointer stays put and the
// round-completion check takes over.
func (h *Hand) advanceTurn() {
	n := len(h.players)
	for i := 1; i <= n; i++ {
		next := h.players[(h.currentIdx+i)%n]
		if next.owesAction(h.currentBet) {
			h.currentIdx = next.Seat
			return
		}
	}
}

// firstOwing returns the seat index of the first player owing action at
// or after the given seat, or the seat itself when nobody owes.
func (h *Hand) firstOwing(from int) int {
	n := len(h.players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		if h.players[idx].owesAction(h.currentBet) {
			return idx
		}
	}
	return from
}

// isRoundComplete reports whether the current betting round is over:
// the hand is down to one contender, nobody can act, or everyone who
// can act has acted and matched the table bet.
func (h *Hand) isRoundComplete() bool {
	if h.activeCount() <= 1 {
		return true
	}
	for _, p := range h.players {
		if !p.CanAct() {
			continue
		}
		if !p.HasActed || p.CurrentBet != h.currentBet {
			return false
		}
	}
	return true
}

// advanceRound moves the hand to the next street. Per-round bets reset
// but the pot is untouched; wagered chips never return to stacks.
func (h *Hand) advanceRound() error {
	if h.activeCount() <= 1 {
		// Everyone else folded. Run out the board for observers and
		// settle; the remaining cards no longer affect equity.
		if err := h.runOutBoard(); err != nil {
			return err
		}
		h.round = Showdown
		return h.settle()
	}

	for _, p := range h.players {
		p.CurrentBet = 0
		p.HasActed = false
	}
	h.currentBet = 0
	h.minRaise = h.bigBlind - h.smallBlind

	var deal int
	switch h.round {
	case Preflop:
		h.round = Flop
		deal = 3
	case Flop:
		h.round = Turn
		deal = 1
	case Turn:
		h.round = River
		deal = 1
	case River:
		h.round = Showdown
		return h.settle()
	default:
		return fmt.Errorf("cannot advance from round %s", h.round)
	}

	cards, err := h.deck.Deal(deal)
	if err != nil {
		return err
	}
	h.board = append(h.board, cards...)
	h.emit(events.NewRoundAdvanced(h.id, h.round.String(), cardStrings(h.board), h.pot, h.version))

	// Post-flop the action opens with the first player clockwise from
	// the dealer, not from the big blind.
	h.currentIdx = h.firstOwing((h.dealerIdx + 1) % len(h.players))
	return nil
}

func (h *Hand) runOutBoard() error {
	missing := 5 - len(h.board)
	if missing <= 0 {
		return nil
	}
	cards, err := h.deck.Deal(missing)
	if err != nil {
		return err
	}
	h.board = append(h.board, cards...)
	return nil
}

func (h *Hand) activeCount() int {
	n := 0
	for _, p := range h.players {
		if p.IsActive {
			n++
		}
	}
	return n
}

func (h *Hand) playerByID(id string) *Player {
	for _, p := range h.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (h *Hand) emit(e events.DomainEvent) {
	h.pending = append(h.pending, e)
	h.version++
}

// DrainEvents returns the events recorded since the last drain and
// clears the pending list.
func (h *Hand) DrainEvents() []events.DomainEvent {
	out := h.pending
	h.pending = nil
	return out
}

// Accessors. The aggregate's state is read-only from outside.

func (h *Hand) ID() uuid.UUID       { return h.id }
func (h *Hand) HandNumber() int64   { return h.handNumber }
func (h *Hand) Round() Round        { return h.round }
func (h *Hand) Pot() int64          { return h.pot }
func (h *Hand) CurrentBet() int64   { return h.currentBet }
func (h *Hand) MinimumRaise() int64 { return h.minRaise }
func (h *Hand) DealerSeat() int     { return h.dealerIdx }
func (h *Hand) IsComplete() bool    { return h.settled }

// Board returns a copy of the community cards dealt so far.
func (h *Hand) Board() []Card {
	return append([]Card(nil), h.board...)
}

// Players returns the public projection of every seat in seat order.
func (h *Hand) Players() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, p.info())
	}
	return out
}

// CurrentPlayerID returns the id of the player whose turn it is, or ""
// once the hand is settled.
func (h *Hand) CurrentPlayerID() string {
	if h.settled {
		return ""
	}
	return h.players[h.currentIdx].ID
}

// HoleCards returns the hole cards of the given player. Only the
// redacted per-player view may expose these.
func (h *Hand) HoleCards(playerID string) []Card {
	p := h.playerByID(playerID)
	if p == nil {
		return nil
	}
	return append([]Card(nil), p.HoleCards...)
}

// Result returns the settlement summary, or nil while the hand is
// still being played.
func (h *Hand) Result() *HandResult {
	return h.result
}

func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
