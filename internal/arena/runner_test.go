package arena

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// recordingSink collects every event across sink calls.
type recordingSink struct {
	mu   sync.Mutex
	evts []events.DomainEvent
}

func (s *recordingSink) Publish(_ context.Context, _ uuid.UUID, evts []events.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evts = append(s.evts, evts...)
}

func (s *recordingSink) ofType(et events.EventType) []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range s.evts {
		if e.GetEventType() == et {
			out = append(out, e)
		}
	}
	return out
}

type recordingResults struct {
	mu      sync.Mutex
	results []game.HandResult
}

func (s *recordingResults) HandFinished(_ context.Context, _ uuid.UUID, result game.HandResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

func testConfig() Config {
	return Config{
		SmallBlind:      10,
		BigBlind:        20,
		StartingChips:   1000,
		MaxHands:        5,
		DecisionTimeout: time.Second,
	}
}

func callingDeciders(ids ...string) map[string]Decider {
	out := make(map[string]Decider, len(ids))
	for _, id := range ids {
		out[id] = CallingStation{}
	}
	return out
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(uuid.New(), testConfig(), []string{"a", "b"}, []string{"A"}, callingDeciders("a", "b"))
	assert.Error(t, err)

	_, err = NewRunner(uuid.New(), testConfig(), []string{"a", "b"}, []string{"A", "B"}, callingDeciders("a"))
	assert.Error(t, err)
}

func TestRunnerPlaysCheckDownMatch(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 11
	sink := &recordingSink{}
	results := &recordingResults{}

	r, err := NewRunner(uuid.New(), cfg, []string{"a", "b", "c"}, []string{"A", "B", "C"}, callingDeciders("a", "b", "c"))
	require.NoError(t, err)
	r.AddEventSink(sink)
	r.AddResultSink(results)

	final, err := r.Run(context.Background())
	require.NoError(t, err)

	var total int64
	for _, chips := range final {
		total += chips
	}
	assert.Equal(t, int64(3000), total)

	require.Len(t, sink.ofType(events.MatchStartedEvent), 1)
	finished := sink.ofType(events.MatchFinishedEvent)
	require.Len(t, finished, 1)
	mf := finished[0].(*events.MatchFinished)
	assert.Equal(t, int64(cfg.MaxHands), mf.HandsPlayed)
	assert.Equal(t, final, mf.FinalChips)

	assert.Len(t, results.results, cfg.MaxHands)
	assert.Len(t, sink.ofType(events.HandSettledEvent), cfg.MaxHands)
}

func TestRunnerTimeoutFoldsForStalledDecider(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 3
	cfg.MaxHands = 1
	cfg.DecisionTimeout = 30 * time.Millisecond
	sink := &recordingSink{}

	// The stalled decider ignores ctx entirely; the runner must still
	// move on without it.
	stalled := DeciderFunc(func(_ context.Context, _ game.PlayerView) (game.Action, error) {
		time.Sleep(500 * time.Millisecond)
		return game.Action{Kind: game.AllIn}, nil
	})
	deciders := map[string]Decider{"slow": stalled, "b": CallingStation{}}

	r, err := NewRunner(uuid.New(), cfg, []string{"slow", "b"}, []string{"Slow", "B"}, deciders)
	require.NoError(t, err)
	r.AddEventSink(sink)

	start := time.Now()
	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 300*time.Millisecond)

	folded := false
	for _, e := range sink.ofType(events.ActionAppliedEvent) {
		applied := e.(*events.ActionApplied)
		if applied.PlayerID == "slow" && applied.Action == "fold" {
			folded = true
		}
	}
	assert.True(t, folded, "stalled player should have been folded")
	assert.Equal(t, int64(2000), final["slow"]+final["b"])
}

func TestRunnerFoldsOnDeciderError(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 3
	cfg.MaxHands = 1
	sink := &recordingSink{}

	broken := DeciderFunc(func(_ context.Context, _ game.PlayerView) (game.Action, error) {
		return game.Action{}, errors.New("agent crashed")
	})
	deciders := map[string]Decider{"broken": broken, "b": CallingStation{}}

	r, err := NewRunner(uuid.New(), cfg, []string{"broken", "b"}, []string{"Broken", "B"}, deciders)
	require.NoError(t, err)
	r.AddEventSink(sink)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	for _, e := range sink.ofType(events.ActionAppliedEvent) {
		applied := e.(*events.ActionApplied)
		if applied.PlayerID == "broken" {
			assert.Equal(t, "fold", applied.Action)
		}
	}
}

func TestRunnerSubstitutesFoldForIllegalAction(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 3
	cfg.MaxHands = 1
	sink := &recordingSink{}

	// Raising below the minimum with chips behind is a rules violation,
	// so the turn becomes a fold.
	cheater := DeciderFunc(func(_ context.Context, view game.PlayerView) (game.Action, error) {
		return game.RaiseTo(view.CurrentBet + 1), nil
	})
	deciders := map[string]Decider{"cheater": cheater, "b": CallingStation{}}

	r, err := NewRunner(uuid.New(), cfg, []string{"cheater", "b"}, []string{"Cheater", "B"}, deciders)
	require.NoError(t, err)
	r.AddEventSink(sink)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), final["cheater"]+final["b"])

	var cheaterActions []string
	for _, e := range sink.ofType(events.ActionAppliedEvent) {
		applied := e.(*events.ActionApplied)
		if applied.PlayerID == "cheater" {
			cheaterActions = append(cheaterActions, applied.Action)
		}
	}
	require.NotEmpty(t, cheaterActions)
	for _, a := range cheaterActions {
		assert.Equal(t, "fold", a)
	}
}

func TestRunnerStopsWhenOnePlayerHoldsEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 17
	cfg.MaxHands = 500
	sink := &recordingSink{}

	// One player shoves every turn, the other calls every shove. The
	// match must end long before MaxHands with a single stack standing.
	shover := DeciderFunc(func(_ context.Context, _ game.PlayerView) (game.Action, error) {
		return game.Action{Kind: game.AllIn}, nil
	})
	deciders := map[string]Decider{"shove": shover, "call": CallingStation{}}

	r, err := NewRunner(uuid.New(), cfg, []string{"shove", "call"}, []string{"Shove", "Call"}, deciders)
	require.NoError(t, err)
	r.AddEventSink(sink)

	final, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2000), final["shove"]+final["call"])
	winners := 0
	for _, chips := range final {
		if chips > 0 {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, sink.ofType(events.PlayerEliminatedEvent), 1)
	require.Len(t, sink.ofType(events.MatchFinishedEvent), 1)
}

func TestRunnerHonorsCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 5
	cfg.MaxHands = 1000

	ctx, cancel := context.WithCancel(context.Background())
	// Plays hand one straight, then pulls the plug during hand two, so
	// the runner is cancelled with one settled hand behind it.
	canceller := DeciderFunc(func(_ context.Context, view game.PlayerView) (game.Action, error) {
		if view.HandNumber >= 2 {
			cancel()
		}
		if view.CallAmount == 0 {
			return game.Action{Kind: game.Check}, nil
		}
		return game.Action{Kind: game.Call}, nil
	})
	deciders := map[string]Decider{"a": canceller, "b": CallingStation{}}

	r, err := NewRunner(uuid.New(), cfg, []string{"a", "b"}, []string{"A", "B"}, deciders)
	require.NoError(t, err)

	final, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// Whatever was settled last still conserves chips.
	var total int64
	for _, chips := range final {
		total += chips
	}
	assert.Equal(t, int64(2000), total)
}

func TestRunnerSeedReproducesMatch(t *testing.T) {
	play := func() map[string]int64 {
		cfg := testConfig()
		cfg.Seed = 99
		cfg.MaxHands = 10
		deciders := map[string]Decider{
			"a": &RandomStrategy{Rng: newSeededRng(1)},
			"b": &RandomStrategy{Rng: newSeededRng(2)},
		}
		r, err := NewRunner(uuid.New(), cfg, []string{"a", "b"}, []string{"A", "B"}, deciders)
		require.NoError(t, err)
		final, err := r.Run(context.Background())
		require.NoError(t, err)
		return final
	}

	assert.Equal(t, play(), play())
}

func newSeededRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
