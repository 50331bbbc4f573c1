package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// Session drives a sequence of hands at fixed blinds. It owns the live
// Hand aggregate, rotates the dealer between hands, carries chip counts
// forward and numbers hands monotonically.
//
// All methods serialize on an internal mutex, satisfying the engine's
// at-most-one-in-flight-action requirement even under a concurrent
// host. Within a hand the state machine itself is strictly sequential.
type Session struct {
	mu sync.Mutex

	smallBlind int64
	bigBlind   int64
	rng        *rand.Rand

	hand       *game.Hand
	handNumber int64
	dealerSeat int
	started    bool
	chips      map[string]int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSeed makes every shuffle in the session reproducible.
func WithSeed(seed int64) SessionOption {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSession creates a session with the given blind sizes.
func NewSession(smallBlind, bigBlind int64, opts ...SessionOption) *Session {
	s := &Session{
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		chips:      make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartHand builds fresh players, rotates the dealer clockwise (seat 0
// for the first hand of the session), shuffles, posts blinds and deals.
// With preserveChips, stacks carry over from the previous hand and
// busted players sit out.
func (s *Session) StartHand(playerIDs, names []string, startingChips int64, preserveChips bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(playerIDs) != len(names) {
		return fmt.Errorf("mismatched ids and names: %d vs %d", len(playerIDs), len(names))
	}

	seats := make([]game.Seat, 0, len(playerIDs))
	for i, id := range playerIDs {
		chips := startingChips
		if preserveChips {
			if prev, ok := s.chips[id]; ok {
				chips = prev
			}
		}
		if chips <= 0 {
			continue // busted, sits out
		}
		seats = append(seats, game.Seat{ID: id, Name: names[i], Chips: chips})
	}
	if len(seats) < 2 {
		return fmt.Errorf("need at least 2 players with chips, have %d", len(seats))
	}

	if s.started {
		s.dealerSeat = (s.dealerSeat + 1) % len(seats)
	}
	s.handNumber++

	hand, err := game.NewHand(seats, game.Config{
		SmallBlind: s.smallBlind,
		BigBlind:   s.bigBlind,
		HandNumber: s.handNumber,
		DealerSeat: s.dealerSeat,
	}, s.rng)
	if err != nil {
		return err
	}

	s.hand = hand
	s.started = true

	// Blinds alone can settle a hand (every short stack forced all-in),
	// in which case no action will ever arrive to trigger the usual
	// post-hand bookkeeping.
	if hand.IsComplete() {
		s.rememberChips()
	}
	return nil
}

// ProcessAction applies one action to the live hand.
func (s *Session) ProcessAction(playerID string, action game.Action) (game.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return game.ActionResult{}, game.ErrNoActiveHand
	}
	res, err := s.hand.ProcessAction(playerID, action)
	if err != nil {
		return res, err
	}
	if res.HandOver {
		s.rememberChips()
	}
	return res, nil
}

// ViewFor returns the redacted per-player view of the live hand.
func (s *Session) ViewFor(playerID string) (game.PlayerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return game.PlayerView{}, game.ErrNoActiveHand
	}
	return s.hand.ViewFor(playerID)
}

// View returns the public table view of the live hand.
func (s *Session) View() (game.TableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return game.TableView{}, game.ErrNoActiveHand
	}
	return s.hand.View(), nil
}

// Result returns the settlement summary once the live hand completes.
func (s *Session) Result() *game.HandResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return nil
	}
	return s.hand.Result()
}

// DrainEvents returns the hand's pending domain events.
func (s *Session) DrainEvents() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return nil
	}
	return s.hand.DrainEvents()
}

// CurrentPlayer returns the id of the player to act, or "" when no
// hand is live or the hand is over.
func (s *Session) CurrentPlayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hand == nil {
		return ""
	}
	return s.hand.CurrentPlayerID()
}

// HandComplete reports whether the live hand has settled.
func (s *Session) HandComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hand == nil || s.hand.IsComplete()
}

// HandNumber returns the number of the most recent hand.
func (s *Session) HandNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handNumber
}

// Chips returns the last settled stack for every known player.
func (s *Session) Chips() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.chips))
	for id, c := range s.chips {
		out[id] = c
	}
	return out
}

func (s *Session) rememberChips() {
	for _, p := range s.hand.Players() {
		s.chips[p.ID] = p.Chips
	}
}

var _ Engine = (*Session)(nil)
