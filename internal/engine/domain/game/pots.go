package game

import (
	"fmt"
	"sort"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// PlayerOutcome is one player's line in a hand-result summary.
type PlayerOutcome struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HoleCards  []string `json:"hole_cards"`
	FinalChips int64    `json:"final_chips"`
	NetChange  int64    `json:"net_change"`
}

// HandResult summarizes a settled hand for the orchestrator and
// telemetry consumers.
type HandResult struct {
	HandID         string          `json:"hand_id"`
	HandNumber     int64           `json:"hand_number"`
	PotDistributed int64           `json:"pot_distributed"`
	CommunityCards []string        `json:"community_cards"`
	Winners        []string        `json:"winners"`
	Players        []PlayerOutcome `json:"players"`
}

// potLayer is one slice of the pot bounded by a total-bet level.
// Players only contest layers they contributed to.
type potLayer struct {
	amount   int64
	eligible []*Player
}

// buildPots splits the pot into layers by total-bet level. Folded
// players' chips stay in the layers they funded but folded players are
// never eligible to win them.
func (h *Hand) buildPots() []potLayer {
	levels := make([]int64, 0, len(h.players))
	seen := make(map[int64]bool)
	for _, p := range h.players {
		if p.TotalBet > 0 && !seen[p.TotalBet] {
			seen[p.TotalBet] = true
			levels = append(levels, p.TotalBet)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var pots []potLayer
	var prev int64
	var orphaned int64 // slices funded only by folded players
	for _, level := range levels {
		slice := level - prev
		var amount int64
		var eligible []*Player
		for _, p := range h.players {
			if p.TotalBet >= level {
				amount += slice
			}
			if p.IsActive && p.TotalBet >= level {
				eligible = append(eligible, p)
			}
		}
		prev = level
		if amount == 0 {
			continue
		}
		if len(eligible) == 0 {
			orphaned += amount
			continue
		}
		pots = append(pots, potLayer{amount: amount + orphaned, eligible: eligible})
		orphaned = 0
	}
	if orphaned > 0 && len(pots) > 0 {
		// Chips above every live player's commitment fall to the last
		// contested layer.
		pots[len(pots)-1].amount += orphaned
	}
	return pots
}

// settle distributes the pot exactly once and verifies chip
// conservation. A mismatch is a defect in the engine itself and comes
// back as ErrChipConservation; it is never corrected by adjusting
// stacks.
func (h *Hand) settle() error {
	if h.settled {
		return ErrNoActiveHand
	}

	if err := h.checkPotIntegrity(); err != nil {
		return err
	}

	potBefore := h.pot
	var winners []string

	if h.activeCount() == 1 {
		for _, p := range h.players {
			if p.IsActive {
				p.Chips += h.pot
				winners = append(winners, p.ID)
				h.emit(events.NewPotAwarded(h.id, h.pot, winners, false, h.version))
				break
			}
		}
		h.pot = 0
	} else {
		values := make(map[string]HandValue, len(h.players))
		for _, p := range h.players {
			if p.IsActive {
				values[p.ID] = Evaluate(append(h.Board(), p.HoleCards...))
			}
		}

		wonBy := make(map[string]bool)
		for i, pot := range h.buildPots() {
			best := pot.eligible[0]
			layerWinners := []*Player{best}
			for _, p := range pot.eligible[1:] {
				switch cmp := values[p.ID].Compare(values[best.ID]); {
				case cmp > 0:
					best = p
					layerWinners = []*Player{p}
				case cmp == 0:
					layerWinners = append(layerWinners, p)
				}
			}

			// Equal split; the integer remainder goes to the first
			// winner in seat order. Arbitrary but deterministic.
			share := pot.amount / int64(len(layerWinners))
			remainder := pot.amount % int64(len(layerWinners))
			ids := make([]string, 0, len(layerWinners))
			for _, w := range layerWinners {
				w.Chips += share
				wonBy[w.ID] = true
				ids = append(ids, w.ID)
			}
			layerWinners[0].Chips += remainder
			h.pot -= pot.amount
			h.emit(events.NewPotAwarded(h.id, pot.amount, ids, i > 0, h.version))
		}

		for _, p := range h.players {
			if wonBy[p.ID] {
				winners = append(winners, p.ID)
			}
		}
	}

	if h.pot != 0 {
		return fmt.Errorf("%w: %d chips left in pot after payout", ErrChipConservation, h.pot)
	}
	var total int64
	for _, p := range h.players {
		total += p.Chips
	}
	if total != h.startChips {
		return fmt.Errorf("%w: stacks sum to %d, expected %d", ErrChipConservation, total, h.startChips)
	}

	h.settled = true
	h.result = h.buildResult(potBefore, winners)
	h.emit(events.NewHandSettled(h.id, h.handNumber, potBefore, h.result.CommunityCards,
		winners, h.resultHoleCards(), h.resultChips(), h.resultNets(), h.version))
	return nil
}

// checkPotIntegrity asserts pot == total wagered before payout.
func (h *Hand) checkPotIntegrity() error {
	var wagered int64
	for _, p := range h.players {
		wagered += p.TotalBet
	}
	if h.pot != wagered {
		return fmt.Errorf("%w: pot %d does not match %d wagered", ErrChipConservation, h.pot, wagered)
	}
	return nil
}

func (h *Hand) buildResult(potDistributed int64, winners []string) *HandResult {
	outcomes := make([]PlayerOutcome, 0, len(h.players))
	for _, p := range h.players {
		outcomes = append(outcomes, PlayerOutcome{
			ID:         p.ID,
			Name:       p.Name,
			HoleCards:  cardStrings(p.HoleCards),
			FinalChips: p.Chips,
			NetChange:  p.Chips - p.startStack,
		})
	}
	return &HandResult{
		HandID:         h.id.String(),
		HandNumber:     h.handNumber,
		PotDistributed: potDistributed,
		CommunityCards: cardStrings(h.board),
		Winners:        winners,
		Players:        outcomes,
	}
}

func (h *Hand) resultHoleCards() map[string][]string {
	out := make(map[string][]string, len(h.players))
	for _, p := range h.players {
		out[p.ID] = cardStrings(p.HoleCards)
	}
	return out
}

func (h *Hand) resultChips() map[string]int64 {
	out := make(map[string]int64, len(h.players))
	for _, p := range h.players {
		out[p.ID] = p.Chips
	}
	return out
}

func (h *Hand) resultNets() map[string]int64 {
	out := make(map[string]int64, len(h.players))
	for _, p := range h.players {
		out[p.ID] = p.Chips - p.startStack
	}
	return out
}
