package server

import "encoding/json"

// inbound (spectator) actions
const (
	actionWatchMatch   string = "watch-match"
	actionUnwatchMatch string = "unwatch-match"
)

type base struct {
	// allows for correctly identifying messages
	Action string `json:"action"`
}

type watchMatch struct {
	base           // actionWatchMatch
	MatchID string `json:"match_id"`
}

type unwatchMatch struct {
	base // actionUnwatchMatch
}

// outbound (server) actions
const (
	actionMatchEvent string = "match-event"
	actionWatchAck   string = "watch-ack"
	actionError      string = "error"
)

type matchEvent struct {
	base                      // actionMatchEvent
	MatchID   string          `json:"match_id"`
	EventType string          `json:"event_type"`
	Version   int64           `json:"version"`
	Timestamp string          `json:"timestamp"`
	Event     json.RawMessage `json:"event"`
}

type watchAck struct {
	base           // actionWatchAck
	MatchID string `json:"match_id"`
}

type errorMessage struct {
	base           // actionError
	Message string `json:"message"`
}
