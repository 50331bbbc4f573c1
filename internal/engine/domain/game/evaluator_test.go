package game

import (
	"math/rand"
	"strings"
	"testing"

	poker "github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cards parses a compact hand spec like "As Kd Th 7c 2s" into cards.
func cards(t *testing.T, spec string) []Card {
	t.Helper()
	var out []Card
	for _, tok := range strings.Fields(spec) {
		require.Len(t, tok, 2, "bad card token %q", tok)

		var rank Rank
		switch tok[0] {
		case 'T':
			rank = Ten
		case 'J':
			rank = Jack
		case 'Q':
			rank = Queen
		case 'K':
			rank = King
		case 'A':
			rank = Ace
		default:
			rank = Rank(tok[0] - '0')
		}

		var suit Suit
		switch tok[1] {
		case 's':
			suit = Spades
		case 'h':
			suit = Hearts
		case 'd':
			suit = Diamonds
		case 'c':
			suit = Clubs
		default:
			t.Fatalf("bad suit in %q", tok)
		}
		out = append(out, Card{Rank: rank, Suit: suit})
	}
	return out
}

func TestEvaluateFiveCategories(t *testing.T) {
	tests := []struct {
		name     string
		hand     string
		category Category
	}{
		{"royal flush", "As Ks Qs Js Ts", RoyalFlush},
		{"straight flush", "9h 8h 7h 6h 5h", StraightFlush},
		{"four of a kind", "7s 7h 7d 7c 2s", FourOfAKind},
		{"full house", "Ks Kh Kd 4s 4h", FullHouse},
		{"flush", "Ad Jd 8d 5d 2d", Flush},
		{"straight", "9s 8h 7d 6c 5s", Straight},
		{"wheel straight", "5s 4h 3d 2c As", Straight},
		{"three of a kind", "Qs Qh Qd 8c 3s", ThreeOfAKind},
		{"two pair", "Js Jh 5d 5c As", TwoPair},
		{"pair", "Ts Th 9d 6c 2s", Pair},
		{"high card", "As Jh 9d 6c 2s", HighCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(cards(t, tt.hand))
			assert.Equal(t, tt.category, v.Category)
		})
	}
}

func TestEvaluateTieBreaks(t *testing.T) {
	tests := []struct {
		name   string
		higher string
		lower  string
	}{
		{"wheel is the lowest straight", "6s 5h 4d 3c 2s", "5s 4h 3d 2c As"},
		{"wheel straight flush below six high", "6h 5h 4h 3h 2h", "5s 4s 3s 2s As"},
		{"quads by rank", "8s 8h 8d 8c 2s", "7s 7h 7d 7c As"},
		{"quads kicker decides", "7s 7h 7d 7c As", "7s 7h 7d 7c Ks"},
		{"full house by trips", "5s 5h 5d As Ah", "4s 4h 4d Ks Kh"},
		{"flush by top card then down", "Ad Qd 8d 5d 2d", "Ad Jd Td 9d 8d"},
		{"two pair by high pair", "As Ah 2d 2c 3s", "Ks Kh Qd Qc As"},
		{"two pair kicker decides", "Js Jh 5d 5c As", "Jd Jc 5h 5s Ks"},
		{"pair kickers run down", "Ts Th Ad 9c 2s", "Td Tc Ah 8d 3c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hi := Evaluate(cards(t, tt.higher))
			lo := Evaluate(cards(t, tt.lower))
			assert.Positive(t, hi.Compare(lo))
			assert.Negative(t, lo.Compare(hi))
		})
	}
}

func TestEvaluateSevenPicksBestFive(t *testing.T) {
	// Hole cards complete a flush that beats the board's straight.
	v := Evaluate(cards(t, "Ah Th 9s 8d 7h 2h 3h"))
	assert.Equal(t, Flush, v.Category)

	// The best five of seven can ignore both hole cards.
	v = Evaluate(cards(t, "As Ks Qs Js Ts 2h 3d"))
	assert.Equal(t, RoyalFlush, v.Category)

	// Six cards work too.
	v = Evaluate(cards(t, "9h 9d 9c Kh Kd 2s"))
	assert.Equal(t, FullHouse, v.Category)
}

func TestEvaluateOrderInvariance(t *testing.T) {
	base := cards(t, "Ah Th 9s 8d 7h 2h 3c")
	want := Evaluate(base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]Card(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Zero(t, Evaluate(shuffled).Compare(want))
	}
}

func TestEvaluateFewerThanFiveFallsBack(t *testing.T) {
	v := Evaluate(cards(t, "Ks 2h"))
	assert.Equal(t, HighCard, v.Category)
	assert.Equal(t, []int{int(King)}, v.TieBreaks)
}

func toOracleCard(t *testing.T, c Card) poker.Card {
	t.Helper()
	var s poker.Suit
	switch c.Suit {
	case Spades:
		s = poker.Spade
	case Hearts:
		s = poker.Heart
	case Diamonds:
		s = poker.Diamond
	case Clubs:
		s = poker.Club
	}
	r := poker.Rank(c.Rank)
	if c.Rank == Ace {
		r = poker.Rank(1)
	}
	card, err := poker.MakeCard(s, r)
	require.NoError(t, err)
	return card
}

// TestEvaluateAgainstOracle cross-checks seven-card rankings against an
// independent evaluator: for random deals of one board and two hole
// hands, both evaluators must agree on which hand wins (or that they
// tie).
func TestEvaluateAgainstOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		deck := NewDeck()
		deck.Shuffle(rng)

		board, err := deck.Deal(5)
		require.NoError(t, err)
		holeA, err := deck.Deal(2)
		require.NoError(t, err)
		holeB, err := deck.Deal(2)
		require.NoError(t, err)

		sevenA := append(append([]Card(nil), board...), holeA...)
		sevenB := append(append([]Card(nil), board...), holeB...)

		got := Evaluate(sevenA).Compare(Evaluate(sevenB))

		var oracleA, oracleB [7]poker.Card
		for j, c := range sevenA {
			oracleA[j] = toOracleCard(t, c)
		}
		for j, c := range sevenB {
			oracleB[j] = toOracleCard(t, c)
		}
		want := int(poker.Eval7(&oracleA)) - int(poker.Eval7(&oracleB))

		switch {
		case want > 0:
			assert.Positive(t, got, "deal %d: %v should beat %v", i, sevenA, sevenB)
		case want < 0:
			assert.Negative(t, got, "deal %d: %v should lose to %v", i, sevenA, sevenB)
		default:
			assert.Zero(t, got, "deal %d: %v should tie %v", i, sevenA, sevenB)
		}
	}
}
