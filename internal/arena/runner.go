package arena

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/engine"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// EventSink receives every domain event the match produces, in order.
// Persistence, caching and broadcasting all attach through this seam.
type EventSink interface {
	Publish(ctx context.Context, matchID uuid.UUID, evts []events.DomainEvent)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, matchID uuid.UUID, evts []events.DomainEvent)

func (f EventSinkFunc) Publish(ctx context.Context, matchID uuid.UUID, evts []events.DomainEvent) {
	f(ctx, matchID, evts)
}

// ResultSink receives the summary of every settled hand.
type ResultSink interface {
	HandFinished(ctx context.Context, matchID uuid.UUID, result game.HandResult)
}

// Config carries the fixed parameters of one match.
type Config struct {
	SmallBlind      int64
	BigBlind        int64
	StartingChips   int64
	MaxHands        int
	DecisionTimeout time.Duration
	Seed            int64 // 0 means non-deterministic
}

// Runner plays a multi-hand match between deciders. One goroutine owns
// the session for the whole match, which gives the engine the strict
// action serialization it requires. Cancellation is honored between
// actions, never mid-action; a cancelled match keeps whatever chip
// state was last settled.
type Runner struct {
	matchID  uuid.UUID
	cfg      Config
	session  *engine.Session
	ids      []string
	names    []string
	deciders map[string]Decider

	eventSinks  []EventSink
	resultSinks []ResultSink
	version     int64
	logger      *slog.Logger
}

// NewRunner creates a runner for one match. ids, names and deciders
// must line up: deciders is keyed by agent id.
func NewRunner(matchID uuid.UUID, cfg Config, ids, names []string, deciders map[string]Decider) (*Runner, error) {
	if len(ids) != len(names) {
		return nil, fmt.Errorf("mismatched ids and names: %d vs %d", len(ids), len(names))
	}
	for _, id := range ids {
		if _, ok := deciders[id]; !ok {
			return nil, fmt.Errorf("no decider for agent %s", id)
		}
	}

	opts := []engine.SessionOption{}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}

	return &Runner{
		matchID:  matchID,
		cfg:      cfg,
		session:  engine.NewSession(cfg.SmallBlind, cfg.BigBlind, opts...),
		ids:      ids,
		names:    names,
		deciders: deciders,
		logger:   slog.Default().With("match_id", matchID.String()),
	}, nil
}

// Session exposes the underlying engine session for state queries. Its
// methods are safe to call while the match runs.
func (r *Runner) Session() *engine.Session {
	return r.session
}

// AddEventSink attaches a sink before the match starts.
func (r *Runner) AddEventSink(sink EventSink) {
	r.eventSinks = append(r.eventSinks, sink)
}

// AddResultSink attaches a result sink before the match starts.
func (r *Runner) AddResultSink(sink ResultSink) {
	r.resultSinks = append(r.resultSinks, sink)
}

// Run plays the match to completion: up to MaxHands hands, ending
// early when a single player holds every chip or ctx is cancelled.
// It returns the final chip counts.
func (r *Runner) Run(ctx context.Context) (map[string]int64, error) {
	r.emitMatch(ctx, events.NewMatchStarted(r.matchID, r.ids, r.cfg.StartingChips, r.cfg.SmallBlind, r.cfg.BigBlind, r.cfg.MaxHands, r.next()))

	alive := make(map[string]bool, len(r.ids))
	for _, id := range r.ids {
		alive[id] = true
	}

	var handsPlayed int64
	for hand := 0; hand < r.cfg.MaxHands; hand++ {
		if err := ctx.Err(); err != nil {
			r.logger.Info("match cancelled", "hands_played", handsPlayed)
			return r.session.Chips(), err
		}

		preserve := hand > 0
		if err := r.session.StartHand(r.ids, r.names, r.cfg.StartingChips, preserve); err != nil {
			// Fewer than two funded players means the match is over,
			// not broken.
			r.logger.Info("stopping match", "reason", err, "hands_played", handsPlayed)
			break
		}
		r.flush(ctx)

		if err := r.playHand(ctx); err != nil {
			r.emitMatch(ctx, events.NewMatchFinished(r.matchID, handsPlayed, r.session.Chips(), r.next()))
			return r.session.Chips(), err
		}
		handsPlayed++

		if result := r.session.Result(); result != nil {
			for _, sink := range r.resultSinks {
				sink.HandFinished(ctx, r.matchID, *result)
			}
		}

		remaining := 0
		for id, chips := range r.session.Chips() {
			if chips <= 0 && alive[id] {
				alive[id] = false
				r.emitMatch(ctx, events.NewPlayerEliminated(r.matchID, id, handsPlayed, r.next()))
			}
			if chips > 0 {
				remaining++
			}
		}
		if remaining <= 1 {
			break
		}
	}

	final := r.session.Chips()
	r.emitMatch(ctx, events.NewMatchFinished(r.matchID, handsPlayed, final, r.next()))
	r.logger.Info("match finished", "hands_played", handsPlayed)
	return final, nil
}

// playHand drives a single hand turn by turn until it settles.
func (r *Runner) playHand(ctx context.Context) error {
	for !r.session.HandComplete() {
		if err := ctx.Err(); err != nil {
			return err
		}

		playerID := r.session.CurrentPlayer()
		view, err := r.session.ViewFor(playerID)
		if err != nil {
			return fmt.Errorf("failed to build view for %s: %w", playerID, err)
		}

		action := r.decide(ctx, playerID, view)

		if _, err := r.session.ProcessAction(playerID, action); err != nil {
			// The decision violated the betting rules. The agent loses
			// its turn: a fold is substituted, exactly as if it had
			// never answered.
			r.logger.Warn("action rejected, substituting fold",
				"player", playerID, "action", action.Kind.String(), "error", err)
			if _, ferr := r.session.ProcessAction(playerID, game.Action{Kind: game.Fold}); ferr != nil {
				return fmt.Errorf("substitute fold rejected for %s: %w", playerID, ferr)
			}
		}
		r.flush(ctx)
	}
	return nil
}

// decide obtains the player's decision, bounding the collaborator call
// with the configured timeout. No response, a late response or an
// error all collapse to a fold on the player's behalf.
func (r *Runner) decide(ctx context.Context, playerID string, view game.PlayerView) game.Action {
	decider := r.deciders[playerID]

	dctx, cancel := context.WithTimeout(ctx, r.cfg.DecisionTimeout)
	defer cancel()

	type reply struct {
		action game.Action
		err    error
	}
	ch := make(chan reply, 1)
	go func() {
		a, err := decider.Decide(dctx, view)
		ch <- reply{action: a, err: err}
	}()

	select {
	case <-dctx.Done():
		r.logger.Warn("decision timed out, folding", "player", playerID)
		return game.Action{Kind: game.Fold}
	case rep := <-ch:
		if rep.err != nil {
			r.logger.Warn("decision failed, folding", "player", playerID, "error", rep.err)
			return game.Action{Kind: game.Fold}
		}
		return rep.action
	}
}

// flush forwards the session's pending events to every sink.
func (r *Runner) flush(ctx context.Context) {
	evts := r.session.DrainEvents()
	if len(evts) == 0 {
		return
	}
	for _, sink := range r.eventSinks {
		sink.Publish(ctx, r.matchID, evts)
	}
}

func (r *Runner) emitMatch(ctx context.Context, ev events.DomainEvent) {
	for _, sink := range r.eventSinks {
		sink.Publish(ctx, r.matchID, []events.DomainEvent{ev})
	}
}

func (r *Runner) next() int64 {
	r.version++
	return r.version
}
