package game

import "sort"

// Category represents the rank class of a five-card poker hand,
// ordered by strength.
type Category int

const (
	HighCard Category = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "high_card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two_pair"
	case ThreeOfAKind:
		return "three_of_a_kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full_house"
	case FourOfAKind:
		return "four_of_a_kind"
	case StraightFlush:
		return "straight_flush"
	case RoyalFlush:
		return "royal_flush"
	default:
		return "unknown"
	}
}

// HandValue is the result of evaluating a hand. Two values compare
// lexicographically: first by Category, then by TieBreaks.
type HandValue struct {
	Category  Category `json:"category"`
	TieBreaks []int    `json:"tie_breaks"`
}

// Compare returns a negative number if v ranks below other, zero if the
// hands tie exactly, and a positive number if v ranks above other.
func (v HandValue) Compare(other HandValue) int {
	if v.Category != other.Category {
		return int(v.Category) - int(other.Category)
	}
	for i := 0; i < len(v.TieBreaks) && i < len(other.TieBreaks); i++ {
		if v.TieBreaks[i] != other.TieBreaks[i] {
			return v.TieBreaks[i] - other.TieBreaks[i]
		}
	}
	return len(v.TieBreaks) - len(other.TieBreaks)
}

// Evaluate ranks a set of 5 to 7 cards, searching every 5-card subset
// when more than 5 cards are given. At this cardinality the exhaustive
// search (21 subsets for 7 cards) is cheap and easy to verify.
//
// Fewer than 5 cards is a degenerate input that only arises in broken
// showdowns; it falls back to HighCard on the single highest rank.
func Evaluate(cards []Card) HandValue {
	if len(cards) < 5 {
		best := 0
		for _, c := range cards {
			if int(c.Rank) > best {
				best = int(c.Rank)
			}
		}
		return HandValue{Category: HighCard, TieBreaks: []int{best}}
	}
	if len(cards) == 5 {
		return evaluateFive(cards)
	}

	var best HandValue
	combo := make([]Card, 5)
	var visit func(start, depth int)
	visit = func(start, depth int) {
		if depth == 5 {
			v := evaluateFive(combo)
			if best.Category == 0 || v.Compare(best) > 0 {
				best = v
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			combo[depth] = cards[i]
			visit(i+1, depth+1)
		}
	}
	visit(0, 0)
	return best
}

// evaluateFive classifies exactly five cards.
func evaluateFive(cards []Card) HandValue {
	rankCounts := make(map[int]int, 5)
	suitCounts := make(map[Suit]int, 4)
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		rankCounts[int(c.Rank)]++
		suitCounts[c.Suit]++
		ranks = append(ranks, int(c.Rank))
	}

	isFlush := len(suitCounts) == 1
	isStraight, straightHigh := straightHighCard(ranks)

	if isStraight && isFlush {
		if straightHigh == int(Ace) {
			return HandValue{Category: RoyalFlush}
		}
		return HandValue{Category: StraightFlush, TieBreaks: []int{straightHigh}}
	}

	// Ranks ordered by count descending, then rank descending. This is
	// the tiebreak order for every grouped category.
	grouped := make([]int, 0, len(rankCounts))
	for r := range rankCounts {
		grouped = append(grouped, r)
	}
	sort.Slice(grouped, func(i, j int) bool {
		ci, cj := rankCounts[grouped[i]], rankCounts[grouped[j]]
		if ci != cj {
			return ci > cj
		}
		return grouped[i] > grouped[j]
	})
	counts := make([]int, len(grouped))
	for i, r := range grouped {
		counts[i] = rankCounts[r]
	}

	descending := func() []int {
		out := append([]int(nil), ranks...)
		sort.Sort(sort.Reverse(sort.IntSlice(out)))
		return out
	}

	switch {
	case len(counts) == 2 && counts[0] == 4:
		return HandValue{Category: FourOfAKind, TieBreaks: grouped}
	case len(counts) == 2 && counts[0] == 3:
		return HandValue{Category: FullHouse, TieBreaks: grouped}
	case isFlush:
		return HandValue{Category: Flush, TieBreaks: descending()}
	case isStraight:
		return HandValue{Category: Straight, TieBreaks: []int{straightHigh}}
	case counts[0] == 3:
		return HandValue{Category: ThreeOfAKind, TieBreaks: grouped}
	case len(counts) == 3 && counts[0] == 2 && counts[1] == 2:
		return HandValue{Category: TwoPair, TieBreaks: grouped}
	case counts[0] == 2:
		return HandValue{Category: Pair, TieBreaks: grouped}
	default:
		return HandValue{Category: HighCard, TieBreaks: descending()}
	}
}

// straightHighCard reports whether five ranks form a run and, if so, the
// rank of the high card. The wheel (A-2-3-4-5) counts as a straight with
// high card 5, not 14.
func straightHighCard(ranks []int) (bool, int) {
	sorted := append([]int(nil), ranks...)
	sort.Ints(sorted)
	for i := 0; i < 4; i++ {
		if sorted[i+1] == sorted[i] {
			return false, 0
		}
	}
	if sorted[4]-sorted[0] == 4 {
		return true, sorted[4]
	}
	if sorted[0] == 2 && sorted[1] == 3 && sorted[2] == 4 && sorted[3] == 5 && sorted[4] == int(Ace) {
		return true, 5
	}
	return false, 0
}
