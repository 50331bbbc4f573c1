package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

var (
	testIDs   = []string{"alice", "bob", "carol"}
	testNames = []string{"Alice", "Bob", "Carol"}
)

// checkDown plays the current hand to completion with the cheapest
// legal line: call or check every turn.
func checkDown(t *testing.T, s *Session) {
	t.Helper()
	for steps := 0; !s.HandComplete(); steps++ {
		require.Less(t, steps, 100, "hand did not terminate")
		id := s.CurrentPlayer()
		if _, err := s.ProcessAction(id, game.Action{Kind: game.Check}); err == nil {
			continue
		}
		_, err := s.ProcessAction(id, game.Action{Kind: game.Call})
		require.NoError(t, err)
	}
}

func TestSessionRequiresHand(t *testing.T) {
	s := NewSession(10, 20)

	_, err := s.ProcessAction("alice", game.Action{Kind: game.Check})
	assert.ErrorIs(t, err, game.ErrNoActiveHand)
	_, err = s.ViewFor("alice")
	assert.ErrorIs(t, err, game.ErrNoActiveHand)
	_, err = s.View()
	assert.ErrorIs(t, err, game.ErrNoActiveHand)
	assert.Nil(t, s.Result())
	assert.Empty(t, s.CurrentPlayer())
}

func TestSessionCarriesChipsBetweenHands(t *testing.T) {
	s := NewSession(10, 20, WithSeed(7))

	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))
	checkDown(t, s)

	chips := s.Chips()
	var total int64
	for _, c := range chips {
		total += c
	}
	require.Equal(t, int64(3000), total)

	require.NoError(t, s.StartHand(testIDs, testNames, 1000, true))
	view, err := s.View()
	require.NoError(t, err)

	// Stacks entering hand two are the settled stacks of hand one,
	// minus whatever the new blinds already collected.
	var entering int64
	for _, p := range view.Players {
		entering += p.Chips + p.TotalBet
	}
	assert.Equal(t, int64(3000), entering)
	assert.Equal(t, int64(2), s.HandNumber())
}

func TestSessionRestartsStacksWithoutPreserve(t *testing.T) {
	s := NewSession(10, 20, WithSeed(7))

	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))
	checkDown(t, s)

	require.NoError(t, s.StartHand(testIDs, testNames, 500, false))
	view, err := s.View()
	require.NoError(t, err)
	for _, p := range view.Players {
		assert.Equal(t, int64(500), p.Chips+p.TotalBet)
	}
}

func TestSessionRotatesDealer(t *testing.T) {
	s := NewSession(10, 20, WithSeed(3))

	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))
	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, 0, view.DealerSeat)

	checkDown(t, s)
	require.NoError(t, s.StartHand(testIDs, testNames, 1000, true))
	view, err = s.View()
	require.NoError(t, err)
	assert.Equal(t, 1, view.DealerSeat)
}

func TestSessionSitsOutBustedPlayers(t *testing.T) {
	s := NewSession(10, 20, WithSeed(5))
	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))
	checkDown(t, s)

	// Zero out bob by hand: the next preserved hand must seat only the
	// funded players.
	s.mu.Lock()
	s.chips["bob"] = 0
	s.mu.Unlock()

	require.NoError(t, s.StartHand(testIDs, testNames, 1000, true))
	view, err := s.View()
	require.NoError(t, err)
	require.Len(t, view.Players, 2)
	for _, p := range view.Players {
		assert.NotEqual(t, "bob", p.ID)
	}
}

func TestSessionNeedsTwoFundedPlayers(t *testing.T) {
	s := NewSession(10, 20, WithSeed(5))
	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))
	checkDown(t, s)

	s.mu.Lock()
	s.chips["bob"] = 0
	s.chips["carol"] = 0
	s.mu.Unlock()

	err := s.StartHand(testIDs, testNames, 1000, true)
	assert.Error(t, err)
}

func TestSessionSeedMakesHandsReproducible(t *testing.T) {
	a := NewSession(10, 20, WithSeed(99))
	b := NewSession(10, 20, WithSeed(99))

	require.NoError(t, a.StartHand(testIDs, testNames, 1000, false))
	require.NoError(t, b.StartHand(testIDs, testNames, 1000, false))

	for _, id := range testIDs {
		va, err := a.ViewFor(id)
		require.NoError(t, err)
		vb, err := b.ViewFor(id)
		require.NoError(t, err)
		assert.Equal(t, va.YourCards, vb.YourCards)
	}
}

func TestSessionDrainsEvents(t *testing.T) {
	s := NewSession(10, 20, WithSeed(1))
	require.NoError(t, s.StartHand(testIDs, testNames, 1000, false))

	evts := s.DrainEvents()
	assert.NotEmpty(t, evts)
	assert.Empty(t, s.DrainEvents())
}
