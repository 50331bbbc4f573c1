package game

import (
	"errors"
	"math/rand"
)

// ErrInsufficientCards is returned when a deal requests more cards than
// remain in the deck. In correct play this never happens, so callers
// treat it as an internal consistency failure rather than a recoverable
// condition.
var ErrInsufficientCards = errors.New("insufficient cards remaining in deck")

// Deck represents an ordered deck of playing cards. A deck is created
// fresh for every hand and consumed without replacement.
type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck, one card per (rank, suit) pair.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck uniformly using the supplied random source.
// The source is injectable so hands stay reproducible under a fixed seed.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top n cards from the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrInsufficientCards
	}
	dealt := d.cards[:n]
	d.cards = d.cards[n:]
	return dealt, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
