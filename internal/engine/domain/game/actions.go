package game

import "errors"

// Protocol errors. Each failed precondition maps to exactly one of
// these so callers can branch on the reason; none of them leaves the
// hand mutated.
var (
	ErrNoActiveHand              = errors.New("no hand in progress")
	ErrUnknownPlayer             = errors.New("unknown player")
	ErrNotYourTurn               = errors.New("not this player's turn")
	ErrAlreadyFolded             = errors.New("player has already folded")
	ErrAlreadyAllIn              = errors.New("player is already all-in")
	ErrNoChipsRemaining          = errors.New("player has no chips remaining")
	ErrCannotCheckFacingBet      = errors.New("cannot check facing a bet")
	ErrRaiseMustExceedCurrentBet = errors.New("raise must exceed player's current bet")
	ErrRaiseBelowMinimum         = errors.New("raise below table minimum")
	ErrInvalidAction             = errors.New("invalid action")
)

// ErrChipConservation indicates the engine itself is defective: chips
// were created or destroyed during payout. It is fatal for the hand and
// must never be patched over by adjusting stacks.
var ErrChipConservation = errors.New("chip conservation violated")

// ActionKind enumerates the closed set of player actions.
type ActionKind int

const (
	Fold ActionKind = iota + 1
	Check
	Call
	Raise
	AllIn
)

func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case AllIn:
		return "all_in"
	default:
		return "unknown"
	}
}

// ParseActionKind maps a wire action string onto the closed action set.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "all_in":
		return AllIn, nil
	default:
		return 0, ErrInvalidAction
	}
}

// Action is a player decision. To carries the raise target as the total
// current-round bet the player raises to ("raise to", not "raise by");
// it is meaningless for every other kind.
type Action struct {
	Kind ActionKind `json:"kind"`
	To   int64      `json:"to,omitempty"`
}

// RaiseTo builds a raise action targeting a total current-round bet.
func RaiseTo(amount int64) Action {
	return Action{Kind: Raise, To: amount}
}

// ActionResult reports the observable effect of a successfully applied
// action.
type ActionResult struct {
	PlayerID   string     `json:"player_id"`
	Kind       ActionKind `json:"action"`
	Paid       int64      `json:"paid"`
	PlayerBet  int64      `json:"player_bet"`
	Pot        int64      `json:"pot"`
	CurrentBet int64      `json:"current_bet"`
	AllIn      bool       `json:"all_in"`
	Round      Round      `json:"round"`
	HandOver   bool       `json:"hand_over"`
}
