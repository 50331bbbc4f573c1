package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewForShowsOnlyOwnCards(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 21)

	view, err := h.ViewFor("p1")
	require.NoError(t, err)

	assert.Equal(t, cardStrings(h.HoleCards("p1")), view.YourCards)
	assert.Equal(t, int64(990), view.YourChips)
	assert.Equal(t, int64(10), view.YourCurrentBet)
	assert.Equal(t, int64(10), view.CallAmount)
	assert.False(t, view.IsYourTurn)

	// Other players appear without hole cards anywhere in the
	// serialized form.
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	for _, other := range []string{"p0", "p2"} {
		for _, c := range cardStrings(h.HoleCards(other)) {
			assert.NotContains(t, string(raw), c, "player %s card leaked", other)
		}
	}
}

func TestViewForUnknownPlayer(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000}, 0, 21)

	_, err := h.ViewFor("ghost")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestViewForCallAmountClampsToStack(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 30}, 0, 5)

	_, err := h.ProcessAction("p0", RaiseTo(500))
	require.NoError(t, err)

	view, err := h.ViewFor("p2")
	require.NoError(t, err)
	assert.Equal(t, int64(10), view.CallAmount, "call amount capped at remaining stack")
}

func TestTableViewNeverExposesHoleCards(t *testing.T) {
	h := newTestHand(t, []int64{1000, 1000, 1000}, 0, 21)

	view := h.View()
	assert.Equal(t, "p0", view.CurrentPlayer)
	assert.False(t, view.Complete)
	assert.Len(t, view.Players, 3)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	for _, p := range view.Players {
		for _, c := range cardStrings(h.HoleCards(p.ID)) {
			assert.NotContains(t, string(raw), c)
		}
	}
}
