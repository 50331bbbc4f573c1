package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is a middleman between the websocket connection and the hub.
// Spectators are read-mostly: the only inbound traffic is match
// subscription changes.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn // Websocket connection
	send    chan []byte     // Buffered channel of outbound bytes
	uuid    string          // UUID
	matchID uuid.UUID       // Watched match; uuid.Nil watches everything
}

func newClient(conn *websocket.Conn, hub *Hub, matchID uuid.UUID) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		uuid:    uuid.New().String(),
		matchID: matchID,
	}
}

// wants reports whether this spectator should receive messages for the
// given match. matchID is owned by the hub goroutine after
// registration, so no locking is needed.
func (c *Client) wants(matchID uuid.UUID) bool {
	return c.matchID == uuid.Nil || c.matchID == matchID
}

func (c *Client) disconnect() {
	c.hub.unregister <- c
	c.conn.Close()
}

// readPump pumps subscription messages from the websocket connection to
// the hub.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Default().Warn("set read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Default().Warn("Websocket unexpected close", "error", err)
			}
			break
		}
		if err = c.processMessage(message); err != nil {
			slog.Default().Warn("Process websocket message", "error", err)
			c.sendError(err.Error())
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				slog.Default().Warn("Write websocket message", "error", err)
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) processMessage(rawMessage []byte) error {
	var baseMessage base
	err := json.Unmarshal(rawMessage, &baseMessage)
	if err != nil {
		return err
	}

	if baseMessage.Action == "" {
		return errors.New("deserialize message")
	}

	switch baseMessage.Action {

	case actionWatchMatch:
		var watch watchMatch
		if err := json.Unmarshal(rawMessage, &watch); err != nil {
			return err
		}
		matchID, err := uuid.Parse(watch.MatchID)
		if err != nil {
			return errors.New("invalid match id")
		}
		c.hub.subscribe <- subscription{client: c, matchID: matchID}
		c.sendJSON(watchAck{base: base{Action: actionWatchAck}, MatchID: matchID.String()})
		return nil

	case actionUnwatchMatch:
		c.hub.subscribe <- subscription{client: c, matchID: uuid.Nil}
		return nil

	default:
		return errors.New("unexpected message action")
	}
}

func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(errorMessage{base: base{Action: actionError}, Message: message})
}

// ServeWs handles websocket requests from spectators. A match_id query
// parameter scopes the stream to one match; without it the spectator
// sees every match on the server.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Default().Warn("Websocket upgrade", "error", err)
		return
	}

	matchID := uuid.Nil
	if raw := r.URL.Query().Get("match_id"); raw != "" {
		if parsed, perr := uuid.Parse(raw); perr == nil {
			matchID = parsed
		}
	}

	client := newClient(conn, hub, matchID)

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
}
