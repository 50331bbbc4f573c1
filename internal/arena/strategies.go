package arena

import (
	"context"
	"math/rand"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// Baseline strategies for smoke runs and calibration. They only read
// the redacted view, exactly like an external agent would.

// CallingStation checks when it can and calls when it must.
type CallingStation struct{}

func (CallingStation) Decide(_ context.Context, view game.PlayerView) (game.Action, error) {
	if view.CallAmount == 0 {
		return game.Action{Kind: game.Check}, nil
	}
	return game.Action{Kind: game.Call}, nil
}

// RandomStrategy folds, calls or raises with fixed weights. Useful as
// chaos input for property runs.
type RandomStrategy struct {
	Rng *rand.Rand
}

func (s *RandomStrategy) Decide(_ context.Context, view game.PlayerView) (game.Action, error) {
	roll := s.Rng.Float64()
	switch {
	case roll < 0.15:
		return game.Action{Kind: game.Fold}, nil
	case roll < 0.80:
		if view.CallAmount == 0 {
			return game.Action{Kind: game.Check}, nil
		}
		return game.Action{Kind: game.Call}, nil
	case roll < 0.95:
		to := view.CurrentBet + view.MinimumRaise
		if to > view.YourCurrentBet+view.YourChips {
			return game.Action{Kind: game.AllIn}, nil
		}
		return game.RaiseTo(to), nil
	default:
		return game.Action{Kind: game.AllIn}, nil
	}
}

// TightAggressive plays few hands and plays them hard: it folds weak
// holdings preflop and raises when its made-hand strength is high.
type TightAggressive struct{}

func (TightAggressive) Decide(_ context.Context, view game.PlayerView) (game.Action, error) {
	strength := handStrength(view.YourCards, view.CommunityCards)

	if view.Round == "preflop" {
		switch {
		case strength < 0.35:
			if view.CallAmount == 0 {
				return game.Action{Kind: game.Check}, nil
			}
			return game.Action{Kind: game.Fold}, nil
		case strength < 0.6:
			if view.CallAmount == 0 {
				return game.Action{Kind: game.Check}, nil
			}
			return game.Action{Kind: game.Call}, nil
		default:
			return raiseOrAllIn(view, view.CurrentBet+view.MinimumRaise*2)
		}
	}

	switch {
	case strength >= 0.7:
		return raiseOrAllIn(view, view.CurrentBet+view.MinimumRaise*2)
	case strength >= 0.45 || view.CallAmount == 0:
		if view.CallAmount == 0 {
			return game.Action{Kind: game.Check}, nil
		}
		// Only chase when the price is small relative to the pot.
		if view.Pot > 0 && view.CallAmount*4 <= view.Pot {
			return game.Action{Kind: game.Call}, nil
		}
		if strength >= 0.55 {
			return game.Action{Kind: game.Call}, nil
		}
		return game.Action{Kind: game.Fold}, nil
	default:
		return game.Action{Kind: game.Fold}, nil
	}
}

func raiseOrAllIn(view game.PlayerView, to int64) (game.Action, error) {
	max := view.YourCurrentBet + view.YourChips
	if to >= max {
		return game.Action{Kind: game.AllIn}, nil
	}
	return game.RaiseTo(to), nil
}

// handStrength is a toy made-hand heuristic over the card display
// strings: pairs and better score high, a lone high card scores low.
func handStrength(hole, community []string) float64 {
	if len(hole) == 0 {
		return 0
	}

	counts := make(map[int]int)
	maxRank := 0
	for _, s := range append(append([]string(nil), hole...), community...) {
		r := parseRankChar(s)
		if r == 0 {
			continue
		}
		counts[r]++
		if r > maxRank {
			maxRank = r
		}
	}

	best, second := 0, 0
	for _, c := range counts {
		if c >= best {
			second = best
			best = c
		} else if c > second {
			second = c
		}
	}

	strength := 0.0
	switch {
	case best >= 4:
		strength = 0.95
	case best >= 3 && second >= 2:
		strength = 0.9
	case best >= 3:
		strength = 0.75
	case best >= 2 && second >= 2:
		strength = 0.65
	case best >= 2:
		strength = 0.5
	}
	strength += float64(maxRank) / 14.0 * 0.15
	if strength > 1.0 {
		strength = 1.0
	}
	return strength
}

// parseRankChar reads the rank from a card display string like "A♠".
func parseRankChar(card string) int {
	if card == "" {
		return 0
	}
	switch card[0] {
	case 'A':
		return 14
	case 'K':
		return 13
	case 'Q':
		return 12
	case 'J':
		return 11
	case 'T':
		return 10
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return int(card[0] - '0')
	default:
		return 0
	}
}
