package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// RemoteDecider asks an agent over HTTP for its decision: it POSTs the
// player view and expects `{"action": "...", "amount": N}` back. Any
// transport failure, non-200 status or unparseable body surfaces as an
// error; the runner maps those to a fold.
type RemoteDecider struct {
	URL    string
	Client *http.Client
}

// NewRemoteDecider creates a decider for an agent endpoint. The
// caller-supplied context on each Decide bounds the round trip; the
// client itself carries no timeout of its own.
func NewRemoteDecider(url string) *RemoteDecider {
	return &RemoteDecider{
		URL:    url,
		Client: &http.Client{},
	}
}

// wireDecision is the agent's reply on the wire.
type wireDecision struct {
	Action string `json:"action"`
	Amount int64  `json:"amount"`
}

func (d *RemoteDecider) Decide(ctx context.Context, view game.PlayerView) (game.Action, error) {
	body, err := json.Marshal(view)
	if err != nil {
		return game.Action{}, fmt.Errorf("failed to marshal player view: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return game.Action{}, fmt.Errorf("failed to build decision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return game.Action{}, fmt.Errorf("decision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return game.Action{}, fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	var wire wireDecision
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return game.Action{}, fmt.Errorf("failed to decode decision: %w", err)
	}

	return ParseWireAction(wire.Action, wire.Amount)
}

// ParseWireAction maps a wire-format decision onto the engine's closed
// action type. Unknown action strings fail here rather than anywhere
// near the state machine.
func ParseWireAction(action string, amount int64) (game.Action, error) {
	kind, err := game.ParseActionKind(action)
	if err != nil {
		return game.Action{}, fmt.Errorf("%w: %q", err, action)
	}
	a := game.Action{Kind: kind}
	if kind == game.Raise {
		a.To = amount
	}
	return a, nil
}
