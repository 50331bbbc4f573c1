package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// newTestHand deals a hand with 10/20 blinds and seeded shuffles.
// Players are named p0, p1, ... in seat order.
func newTestHand(t *testing.T, stacks []int64, dealer int, seed int64) *Hand {
	t.Helper()
	seats := make([]Seat, len(stacks))
	for i, chips := range stacks {
		seats[i] = Seat{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i), Chips: chips}
	}
	h, err := NewHand(seats, Config{
		SmallBlind: 10,
		BigBlind:   20,
		HandNumber: 1,
		DealerSeat: dealer,
	}, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return h
}

func playerInfo(t *testing.T, h *Hand, id string) PlayerInfo {
	t.Helper()
	for _, p := range h.Players() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no player %s", id)
	return PlayerInfo{}
}

func TestNewHandPostsBlindsAndDeals(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 1)

	assert.Equal(t, int64(30), h.Pot())
	assert.Equal(t, int64(20), h.CurrentBet())
	assert.Equal(t, int64(10), h.MinimumRaise())
	assert.Equal(t, Preflop, h.Round())

	// Dealer+1 posts the small blind, dealer+2 the big blind, and the
	// seat after the big blind opens.
	assert.Equal(t, int64(10), playerInfo(t, h, "p1").CurrentBet)
	assert.Equal(t, int64(20), playerInfo(t, h, "p2").CurrentBet)
	assert.Equal(t, "p0", h.CurrentPlayerID())

	for _, p := range h.Players() {
		assert.Len(t, h.HoleCards(p.ID), 2)
	}
	assert.Empty(t, h.Board())
}

func TestNewHandRejectsBadSeats(t *testing.T) {
	_, err := NewHand([]Seat{{ID: "solo", Chips: 100}}, Config{SmallBlind: 10, BigBlind: 20}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	_, err = NewHand([]Seat{
		{ID: "a", Chips: 100},
		{ID: "b", Chips: 0},
	}, Config{SmallBlind: 10, BigBlind: 20}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestHeadsUpDealerPostsSmallBlindAndOpens(t *testing.T) {
	h := newTestHand(t, []int64{500, 500}, 0, 3)

	assert.Equal(t, int64(10), playerInfo(t, h, "p0").CurrentBet)
	assert.Equal(t, int64(20), playerInfo(t, h, "p1").CurrentBet)
	assert.Equal(t, "p0", h.CurrentPlayerID())

	// After the preflop round the non-dealer acts first.
	_, err := h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)
	_, err = h.ProcessAction("p1", Action{Kind: Check})
	require.NoError(t, err)

	assert.Equal(t, Flop, h.Round())
	assert.Equal(t, "p1", h.CurrentPlayerID())
	assert.Len(t, h.Board(), 3)
}

func TestActionPreconditions(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	_, err := h.ProcessAction("intruder", Action{Kind: Call})
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = h.ProcessAction("p1", Action{Kind: Call})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = h.ProcessAction("p0", Action{Kind: Check})
	assert.ErrorIs(t, err, ErrCannotCheckFacingBet)

	_, err = h.ProcessAction("p0", Action{Kind: ActionKind(42)})
	assert.ErrorIs(t, err, ErrInvalidAction)

	// Failed preconditions leave the hand untouched.
	assert.Equal(t, int64(30), h.Pot())
	assert.Equal(t, "p0", h.CurrentPlayerID())
}

func TestRaiseMinimums(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	_, err := h.ProcessAction("p0", RaiseTo(0))
	assert.ErrorIs(t, err, ErrRaiseMustExceedCurrentBet)

	// Table bet 20, minimum raise 10: raising to 25 is short.
	_, err = h.ProcessAction("p0", RaiseTo(25))
	assert.ErrorIs(t, err, ErrRaiseBelowMinimum)

	res, err := h.ProcessAction("p0", RaiseTo(30))
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.PlayerBet)
	assert.Equal(t, int64(30), h.CurrentBet())
	assert.Equal(t, int64(10), h.MinimumRaise())

	// A raise to 60 is a delta of 30, which becomes the new minimum.
	_, err = h.ProcessAction("p1", RaiseTo(60))
	require.NoError(t, err)
	assert.Equal(t, int64(30), h.MinimumRaise())

	_, err = h.ProcessAction("p2", RaiseTo(70))
	assert.ErrorIs(t, err, ErrRaiseBelowMinimum)

	_, err = h.ProcessAction("p2", RaiseTo(90))
	require.NoError(t, err)
	assert.Equal(t, int64(90), h.CurrentBet())
}

func TestBelowMinimumRaiseLegalAsFullAllIn(t *testing.T) {
	h := newTestHand(t, []int64{25, 1000, 1000}, 0, 5)

	// 25 is below the 30 minimum but it is every chip p0 has.
	res, err := h.ProcessAction("p0", RaiseTo(25))
	require.NoError(t, err)
	assert.True(t, res.AllIn)
	assert.Equal(t, int64(25), res.PlayerBet)
	assert.Equal(t, int64(25), h.CurrentBet())
}

func TestRaiseTargetClampsToStack(t *testing.T) {
	h := newTestHand(t, []int64{40, 1000, 1000}, 0, 5)

	res, err := h.ProcessAction("p0", RaiseTo(500))
	require.NoError(t, err)
	assert.True(t, res.AllIn)
	assert.Equal(t, int64(40), res.PlayerBet)
	assert.Equal(t, int64(40), h.CurrentBet())
}

func TestRaiseReopensBetting(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	_, err := h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)
	_, err = h.ProcessAction("p1", Action{Kind: Call})
	require.NoError(t, err)

	// The big blind raises; p0 and p1 owe action again.
	_, err = h.ProcessAction("p2", RaiseTo(40))
	require.NoError(t, err)
	assert.Equal(t, Preflop, h.Round())
	assert.Equal(t, "p0", h.CurrentPlayerID())

	_, err = h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)
	res, err := h.ProcessAction("p1", Action{Kind: Call})
	require.NoError(t, err)

	assert.Equal(t, Flop, res.Round)
	assert.Equal(t, int64(120), h.Pot())
}

func TestBigBlindGetsOption(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	_, err := h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)
	_, err = h.ProcessAction("p1", Action{Kind: Call})
	require.NoError(t, err)

	// Everyone has matched 20 but the big blind has not acted yet.
	assert.Equal(t, Preflop, h.Round())
	assert.Equal(t, "p2", h.CurrentPlayerID())

	_, err = h.ProcessAction("p2", Action{Kind: Check})
	require.NoError(t, err)
	assert.Equal(t, Flop, h.Round())

	// Post-flop action opens clockwise from the dealer.
	assert.Equal(t, "p1", h.CurrentPlayerID())
}

func TestShortStackCallIsAllIn(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 30}, 0, 5)

	_, err := h.ProcessAction("p0", RaiseTo(200))
	require.NoError(t, err)
	_, err = h.ProcessAction("p1", Action{Kind: Fold})
	require.NoError(t, err)

	// p2 has 10 behind after the big blind; the call is short and
	// puts them all-in for a total of 30.
	res, err := h.ProcessAction("p2", Action{Kind: Call})
	require.NoError(t, err)
	assert.True(t, res.AllIn)
	assert.Equal(t, int64(10), res.Paid)
	assert.Equal(t, int64(30), playerInfo(t, h, "p2").TotalBet)
}

func TestFoldsEndHandWithoutShowdown(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	_, err := h.ProcessAction("p0", Action{Kind: Fold})
	require.NoError(t, err)
	res, err := h.ProcessAction("p1", Action{Kind: Fold})
	require.NoError(t, err)

	assert.True(t, res.HandOver)
	assert.True(t, h.IsComplete())
	assert.Empty(t, h.CurrentPlayerID())

	result := h.Result()
	require.NotNil(t, result)
	assert.Equal(t, []string{"p2"}, result.Winners)
	assert.Equal(t, int64(30), result.PotDistributed)
	assert.Len(t, result.CommunityCards, 5)

	// The uncalled big blind wins the forced bets.
	assert.Equal(t, int64(1010), playerInfo(t, h, "p2").Chips)
	assert.Equal(t, int64(990), playerInfo(t, h, "p1").Chips)
	assert.Equal(t, int64(1000), playerInfo(t, h, "p0").Chips)

	_, err = h.ProcessAction("p2", Action{Kind: Check})
	assert.ErrorIs(t, err, ErrNoActiveHand)
}

func TestCheckDownToShowdown(t *testing.T) {
	h := newTestHand(t, []int64{500, 500}, 0, 11)

	_, err := h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)
	_, err = h.ProcessAction("p1", Action{Kind: Check})
	require.NoError(t, err)

	for _, round := range []Round{Flop, Turn, River} {
		require.Equal(t, round, h.Round())
		_, err = h.ProcessAction("p1", Action{Kind: Check})
		require.NoError(t, err)
		_, err = h.ProcessAction("p0", Action{Kind: Check})
		require.NoError(t, err)
	}

	require.True(t, h.IsComplete())
	result := h.Result()
	require.NotNil(t, result)
	assert.Equal(t, int64(40), result.PotDistributed)
	assert.Len(t, result.CommunityCards, 5)

	// The settlement must agree with an independent evaluation of the
	// same board and hole cards.
	v0 := Evaluate(append(h.Board(), h.HoleCards("p0")...))
	v1 := Evaluate(append(h.Board(), h.HoleCards("p1")...))
	switch cmp := v0.Compare(v1); {
	case cmp > 0:
		assert.Equal(t, []string{"p0"}, result.Winners)
		assert.Equal(t, int64(520), playerInfo(t, h, "p0").Chips)
	case cmp < 0:
		assert.Equal(t, []string{"p1"}, result.Winners)
		assert.Equal(t, int64(520), playerInfo(t, h, "p1").Chips)
	default:
		assert.ElementsMatch(t, []string{"p0", "p1"}, result.Winners)
		assert.Equal(t, int64(500), playerInfo(t, h, "p0").Chips)
		assert.Equal(t, int64(500), playerInfo(t, h, "p1").Chips)
	}
}

func TestHandEmitsLifecycleEvents(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 5)

	drained := h.DrainEvents()
	require.Len(t, drained, 3)
	assert.Equal(t, events.HandStartedEvent, drained[0].GetEventType())
	assert.Equal(t, events.BlindsPostedEvent, drained[1].GetEventType())
	assert.Equal(t, events.HoleCardsDealtEvent, drained[2].GetEventType())

	// Hole card faces never appear in events.
	dealt, ok := drained[2].(*events.HoleCardsDealt)
	require.True(t, ok)
	assert.Equal(t, []string{"p0", "p1", "p2"}, dealt.Players)

	_, err := h.ProcessAction("p0", Action{Kind: Call})
	require.NoError(t, err)

	drained = h.DrainEvents()
	require.Len(t, drained, 1)
	applied, ok := drained[0].(*events.ActionApplied)
	require.True(t, ok)
	assert.Equal(t, "p0", applied.PlayerID)
	assert.Equal(t, "call", applied.Action)
	assert.Equal(t, int64(20), applied.Paid)

	assert.Empty(t, h.DrainEvents())
}

// TestChipConservationUnderRandomPlay hammers the state machine with
// arbitrary (often illegal) actions and checks that chips are neither
// created nor destroyed, whatever route a hand takes to settlement.
func TestChipConservationUnderRandomPlay(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		rng := rand.New(rand.NewSource(seed))

		stacks := make([]int64, 2+rng.Intn(4))
		var total int64
		for i := range stacks {
			stacks[i] = 20 + int64(rng.Intn(500))
			total += stacks[i]
		}

		h := newTestHand(t, stacks, rng.Intn(len(stacks)), seed)

		for steps := 0; !h.IsComplete(); steps++ {
			require.Less(t, steps, 1000, "seed %d: hand did not terminate", seed)

			id := h.CurrentPlayerID()
			var action Action
			switch rng.Intn(5) {
			case 0:
				action = Action{Kind: Fold}
			case 1:
				action = Action{Kind: Check}
			case 2:
				action = Action{Kind: Call}
			case 3:
				action = RaiseTo(int64(rng.Intn(400)))
			case 4:
				action = Action{Kind: AllIn}
			}

			if _, err := h.ProcessAction(id, action); err != nil {
				// Illegal choice for this spot; fold instead.
				_, err = h.ProcessAction(id, Action{Kind: Fold})
				require.NoError(t, err, "seed %d", seed)
			}
		}

		var after int64
		for _, p := range h.Players() {
			after += p.Chips
		}
		require.Equal(t, total, after, "seed %d: chips not conserved", seed)

		result := h.Result()
		require.NotNil(t, result, "seed %d", seed)
		require.NotEmpty(t, result.Winners, "seed %d", seed)
	}
}
