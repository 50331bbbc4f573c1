package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
)

// outbound pairs a serialized message with the match it belongs to, so
// the hub can fan it out to the right subscribers.
type outbound struct {
	matchID uuid.UUID
	payload []byte
}

// subscription retargets a connected spectator to a different match.
type subscription struct {
	client  *Client
	matchID uuid.UUID
}

// Hub maintains the set of connected spectators and broadcasts match
// events to them. All client state changes flow through the hub
// goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case sub := <-h.subscribe:
			if h.clients[sub.client] {
				sub.client.matchID = sub.matchID
			}
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) broadcastToClients(message outbound) {
	for client := range h.clients {
		if !client.wants(message.matchID) {
			continue
		}
		select {
		case client.send <- message.payload:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Publish serializes domain events into spectator messages and queues
// them for broadcast. It satisfies arena.EventSink.
func (h *Hub) Publish(_ context.Context, matchID uuid.UUID, evts []events.DomainEvent) {
	for _, ev := range evts {
		payload, err := json.Marshal(ev)
		if err != nil {
			slog.Default().Warn("Serialize event for broadcast", "type", ev.GetEventType(), "error", err)
			continue
		}
		msg := matchEvent{
			base:      base{Action: actionMatchEvent},
			MatchID:   matchID.String(),
			EventType: string(ev.GetEventType()),
			Version:   ev.GetVersion(),
			Timestamp: ev.GetTimestamp().Format(time.RFC3339Nano),
			Event:     payload,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			slog.Default().Warn("Serialize broadcast envelope", "error", err)
			continue
		}
		select {
		case h.broadcast <- outbound{matchID: matchID, payload: data}:
		default:
			slog.Default().Warn("Broadcast queue full, dropping event", "type", ev.GetEventType())
		}
	}
}
