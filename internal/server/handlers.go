package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/arena"
	"github.com/pokerlab/holdem-arena/internal/auth"
	"github.com/pokerlab/holdem-arena/internal/database"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
	"github.com/pokerlab/holdem-arena/internal/models"
	"github.com/pokerlab/holdem-arena/internal/validation"
)

type MatchHandler struct {
	db      *database.DB
	manager *MatchManager
}

func NewMatchHandler(db *database.DB, manager *MatchManager) *MatchHandler {
	return &MatchHandler{
		db:      db,
		manager: manager,
	}
}

// Routes returns the public match endpoints. The caller mounts the
// seat-token-protected routes separately.
func (h *MatchHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListMatches)
	r.Post("/", h.CreateMatch)
	r.Get("/{matchID}", h.GetMatch)
	r.Post("/{matchID}/start", h.StartMatch)
	r.Delete("/{matchID}", h.CancelMatch)
	r.Get("/{matchID}/view", h.GetPublicView)
	r.Get("/{matchID}/hands", h.GetHistory)
	r.Get("/{matchID}/events", h.GetEventLog)

	return r
}

// SeatRoutes returns the endpoints that require a seat token.
func (h *MatchHandler) SeatRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{matchID}/seat/view", h.GetSeatView)
	r.Post("/{matchID}/actions", h.SubmitAction)

	return r
}

type SubmitActionRequest struct {
	Action string `json:"action" validate:"required,oneof=fold check call raise all_in"`
	Amount int64  `json:"amount,omitempty" validate:"omitempty,min=0"`
}

// ListMatches returns matches newest first, with limit/offset paging.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	query := h.db.WithContext(r.Context()).Preload("Seats").Order("created_at DESC").Offset(offset).Limit(limit)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var matches []models.Match
	if err := query.Find(&matches).Error; err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}

	var total int64
	countQuery := h.db.WithContext(r.Context()).Model(&models.Match{})
	if status := r.URL.Query().Get("status"); status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}
	countQuery.Count(&total)

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"pagination": map[string]interface{}{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	})
}

// CreateMatch registers a match and returns one seat token per agent.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.manager.ApplyDefaults(&req)
	if err := validation.Validate(req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	match, tokens, err := h.manager.Create(r.Context(), req)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"match":       match,
		"seat_tokens": tokens,
	})
}

// GetMatch returns one match with its seats.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	var match models.Match
	err := h.db.WithContext(r.Context()).Preload("Seats").First(&match, "id = ?", matchID).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			writeErrorResponse(w, http.StatusNotFound, "Match not found")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch match")
		return
	}

	writeJSONResponse(w, http.StatusOK, match)
}

// StartMatch launches the runner for a created match.
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	if err := h.manager.Start(r.Context(), matchID); err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			writeErrorResponse(w, http.StatusNotFound, "Match not found")
		case errors.Is(err, ErrMatchNotCreated):
			writeErrorResponse(w, http.StatusConflict, "Match has already been started")
		default:
			writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "running"})
}

// CancelMatch stops a running match between actions.
func (h *MatchHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	if err := h.manager.Cancel(matchID); err != nil {
		writeErrorResponse(w, http.StatusConflict, "Match is not running")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// GetPublicView returns the redacted table state: board, pot, stacks
// and bets, never hole cards.
func (h *MatchHandler) GetPublicView(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	view, err := h.manager.PublicView(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, ErrMatchNotRunning) {
			writeErrorResponse(w, http.StatusNotFound, "Match is not running")
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to build view")
		return
	}

	writeJSONResponse(w, http.StatusOK, view)
}

// GetSeatView returns the per-seat state including the seat's own hole
// cards. The match and agent come from the seat token, so an agent can
// only ever see its own cards.
func (h *MatchHandler) GetSeatView(w http.ResponseWriter, r *http.Request) {
	matchID, agentID, ok := h.seatFromToken(w, r)
	if !ok {
		return
	}

	view, err := h.manager.SeatView(matchID, agentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotRunning):
			writeErrorResponse(w, http.StatusNotFound, "Match is not running")
		case errors.Is(err, ErrUnknownSeat):
			writeErrorResponse(w, http.StatusForbidden, "Agent holds no seat in this match")
		default:
			writeErrorResponse(w, http.StatusInternalServerError, "Failed to build view")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, view)
}

// SubmitAction accepts an agent's decision for its current turn.
func (h *MatchHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	matchID, agentID, ok := h.seatFromToken(w, r)
	if !ok {
		return
	}

	var req SubmitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validation.Validate(req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	action, err := arena.ParseWireAction(req.Action, req.Amount)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.manager.SubmitAction(matchID, agentID, action); err != nil {
		switch {
		case errors.Is(err, ErrMatchNotRunning):
			writeErrorResponse(w, http.StatusNotFound, "Match is not running")
		case errors.Is(err, ErrSeatNotManaged):
			writeErrorResponse(w, http.StatusConflict, "Seat is not driven through the API")
		case errors.Is(err, ErrNotAwaitingAction):
			writeErrorResponse(w, http.StatusConflict, "Seat is not awaiting an action")
		default:
			writeErrorResponse(w, http.StatusInternalServerError, "Failed to submit action")
		}
		return
	}

	writeJSONResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetHistory returns the settled hands of a match.
func (h *MatchHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	results, err := h.manager.History(r.Context(), matchID)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch hand history")
		return
	}
	if results == nil {
		results = []game.HandResult{}
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"hands": results})
}

// storedEventResponse is one entry of the audit log as served over the
// API. Payload is the raw event body.
type storedEventResponse struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	Version   int64           `json:"version"`
	Payload   json.RawMessage `json:"payload"`
}

// GetEventLog returns the full persisted event stream of a match.
func (h *MatchHandler) GetEventLog(w http.ResponseWriter, r *http.Request) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return
	}

	evts, err := h.manager.EventLog(r.Context(), matchID)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch event log")
		return
	}

	out := make([]storedEventResponse, len(evts))
	for i, e := range evts {
		out[i] = storedEventResponse{
			ID:        e.ID,
			EventType: e.EventType,
			Version:   e.Version,
			Payload:   json.RawMessage(e.Payload),
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"events": out})
}

func (h *MatchHandler) parseMatchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid match ID")
		return uuid.Nil, false
	}
	return matchID, true
}

// seatFromToken pulls match and agent identity from the seat token and
// checks the token was minted for the match in the URL.
func (h *MatchHandler) seatFromToken(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	matchID, ok := h.parseMatchID(w, r)
	if !ok {
		return uuid.Nil, "", false
	}

	tokenMatchID, ok := auth.MatchIDFromContext(r.Context())
	if !ok || tokenMatchID != matchID {
		writeErrorResponse(w, http.StatusForbidden, "Seat token is for a different match")
		return uuid.Nil, "", false
	}
	agentID, ok := auth.AgentIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Seat token missing agent identity")
		return uuid.Nil, "", false
	}
	return matchID, agentID, true
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
