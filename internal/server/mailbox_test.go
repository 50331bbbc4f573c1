package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

func TestSeatMailboxSubmitBeforeDecide(t *testing.T) {
	m := NewSeatMailbox()
	err := m.Submit(game.Action{Kind: game.Check})
	assert.ErrorIs(t, err, ErrNotAwaitingAction)
}

func TestSeatMailboxDeliversSubmittedAction(t *testing.T) {
	m := NewSeatMailbox()

	type result struct {
		action game.Action
		err    error
	}
	done := make(chan result, 1)
	go func() {
		action, err := m.Decide(context.Background(), game.PlayerView{})
		done <- result{action, err}
	}()

	// Wait until Decide is actually on the clock before submitting.
	require.Eventually(t, func() bool {
		return m.Submit(game.RaiseTo(80)) == nil
	}, time.Second, 5*time.Millisecond)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, game.RaiseTo(80), res.action)
	case <-time.After(time.Second):
		t.Fatal("Decide did not return after Submit")
	}
}

func TestSeatMailboxTimeoutFolds(t *testing.T) {
	m := NewSeatMailbox()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	action, err := m.Decide(ctx, game.PlayerView{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, game.Fold, action.Kind)

	// The clock is off again: a late submission must be rejected.
	assert.ErrorIs(t, m.Submit(game.Action{Kind: game.Call}), ErrNotAwaitingAction)
}

func TestSeatMailboxRejectsSecondSubmit(t *testing.T) {
	m := NewSeatMailbox()

	started := make(chan struct{})
	go func() {
		close(started)
		m.Decide(context.Background(), game.PlayerView{})
	}()
	<-started

	require.Eventually(t, func() bool {
		return m.Submit(game.Action{Kind: game.Check}) == nil
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, m.Submit(game.Action{Kind: game.Check}), ErrNotAwaitingAction)
}
