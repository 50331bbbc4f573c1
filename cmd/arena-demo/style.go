package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// renderHandStart prints the hand header.
func renderHandStart(ev *events.HandStarted) {
	pterm.DefaultSection.Printfln("Hand #%d (dealer seat %d)", ev.HandNumber, ev.DealerSeat)
	pterm.Info.Printfln("Blinds %d/%d, players: %s", ev.SmallBlind, ev.BigBlind, strings.Join(ev.Players, ", "))
}

// renderAction prints one applied action in a box.
func renderAction(ev *events.ActionApplied) {
	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2)
	line := ""
	switch ev.Action {
	case "raise":
		line = pterm.Sprintf("%s raises to %d (pot %d)", ev.PlayerID, ev.PlayerBet, ev.Pot)
	case "all_in":
		line = pterm.Sprintf("%s is all in for %d (pot %d)", ev.PlayerID, ev.PlayerBet, ev.Pot)
	case "call":
		line = pterm.Sprintf("%s calls %d (pot %d)", ev.PlayerID, ev.Paid, ev.Pot)
	default:
		line = pterm.Sprintf("%s %ss (pot %d)", ev.PlayerID, ev.Action, ev.Pot)
	}
	fmt.Println(pbox.WithTitle(pterm.LightYellow(ev.Round)).Sprint(line))
}

// renderBoard prints the community cards after a street is dealt.
func renderBoard(ev *events.RoundAdvanced) {
	pterm.Info.Printfln("%s: %s", strings.ToUpper(ev.Round), strings.Join(ev.CommunityCards, " "))
}

// renderSettlement prints the winners and resulting stacks.
func renderSettlement(ev *events.HandSettled) {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	var lines []string
	for _, winner := range ev.Winners {
		lines = append(lines, pterm.Sprintf("%s wins (net %+d)", winner, ev.NetChange[winner]))
	}
	if len(ev.CommunityCards) > 0 {
		lines = append(lines, pterm.Sprintf("Board: %s", strings.Join(ev.CommunityCards, " ")))
	}
	fmt.Println(pbox.WithTitle(pterm.LightGreen("|SHOWDOWN|")).WithTitleTopCenter().Sprint(strings.Join(lines, "\n")))

	ids := make([]string, 0, len(ev.FinalChips))
	for id := range ev.FinalChips {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := [][]string{{"Player", "Chips", "Net"}}
	for _, id := range ids {
		rows = append(rows, []string{
			id,
			fmt.Sprintf("%d", ev.FinalChips[id]),
			fmt.Sprintf("%+d", ev.NetChange[id]),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// renderFinish prints the final standings of the match.
func renderFinish(ev *events.MatchFinished) {
	type standing struct {
		id    string
		chips int64
	}
	standings := make([]standing, 0, len(ev.FinalChips))
	for id, chips := range ev.FinalChips {
		standings = append(standings, standing{id: id, chips: chips})
	}
	sort.Slice(standings, func(i, j int) bool { return standings[i].chips > standings[j].chips })

	rows := [][]string{{"Place", "Player", "Chips"}}
	for i, s := range standings {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), s.id, fmt.Sprintf("%d", s.chips)})
	}

	pterm.DefaultSection.Printfln("Match over after %d hands", ev.HandsPlayed)
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
