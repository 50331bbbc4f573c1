package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/pokerlab/holdem-arena/internal/arena"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// demoSink renders match events to the terminal as they happen.
type demoSink struct {
	delay time.Duration
}

func (s *demoSink) Publish(_ context.Context, _ uuid.UUID, evts []events.DomainEvent) {
	for _, ev := range evts {
		switch e := ev.(type) {
		case *events.HandStarted:
			renderHandStart(e)
		case *events.BlindsPosted:
			pterm.Info.Printfln("%s posts %d, %s posts %d", e.SmallBlindPlayer, e.SmallBlindAmount, e.BigBlindPlayer, e.BigBlindAmount)
		case *events.ActionApplied:
			renderAction(e)
			time.Sleep(s.delay)
		case *events.RoundAdvanced:
			renderBoard(e)
		case *events.HandSettled:
			renderSettlement(e)
		case *events.PlayerEliminated:
			pterm.Warning.Printfln("%s is eliminated after hand %d", e.PlayerID, e.HandNumber)
		case *events.MatchFinished:
			renderFinish(e)
		}
	}
}

func main() {
	var (
		hands = flag.Int("hands", 20, "maximum number of hands to play")
		chips = flag.Int64("chips", 1000, "starting stack per player")
		seed  = flag.Int64("seed", 0, "shuffle seed, 0 for random")
		delay = flag.Duration("delay", 300*time.Millisecond, "pause after each action")
	)
	flag.Parse()

	pterm.DefaultHeader.WithFullWidth().Println("holdem-arena demo")

	deciders := map[string]arena.Decider{
		"tag":     arena.TightAggressive{},
		"caller":  arena.CallingStation{},
		"gambler": &arena.RandomStrategy{Rng: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}

	runner, err := arena.NewRunner(uuid.New(), arena.Config{
		SmallBlind:      10,
		BigBlind:        20,
		StartingChips:   *chips,
		MaxHands:        *hands,
		DecisionTimeout: 5 * time.Second,
		Seed:            *seed,
	},
		[]string{"tag", "caller", "gambler"},
		[]string{"Tag", "Caller", "Gambler"},
		deciders,
	)
	if err != nil {
		pterm.Error.Printfln("Failed to set up match: %v", err)
		os.Exit(1)
	}
	runner.AddEventSink(&demoSink{delay: *delay})

	if _, err := runner.Run(context.Background()); err != nil {
		pterm.Error.Printfln("Match failed: %v", err)
		os.Exit(1)
	}
}
