package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/arena"
	"github.com/pokerlab/holdem-arena/internal/auth"
	"github.com/pokerlab/holdem-arena/internal/config"
	"github.com/pokerlab/holdem-arena/internal/database"
	"github.com/pokerlab/holdem-arena/internal/engine"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
	"github.com/pokerlab/holdem-arena/internal/engine/repositories"
	"github.com/pokerlab/holdem-arena/internal/models"
	wshub "github.com/pokerlab/holdem-arena/server"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchNotRunning = errors.New("match is not running")
	ErrMatchNotCreated = errors.New("match has already been started")
	ErrUnknownSeat     = errors.New("agent holds no seat in this match")
	ErrSeatNotManaged  = errors.New("seat is not driven through the API")
)

// runningMatch is the in-memory side of an active match: the runner
// goroutine, the mailboxes for API-driven seats and the cancel handle.
type runningMatch struct {
	id        uuid.UUID
	runner    *arena.Runner
	mailboxes map[string]*SeatMailbox
	cancel    context.CancelFunc
	done      chan struct{}
}

// MatchManager owns the lifecycle of matches: creation, start, state
// queries, action routing and cancellation.
type MatchManager struct {
	db         *database.DB
	eventStore *repositories.PostgresEventStore
	cache      *repositories.RedisCache
	hub        *wshub.Hub
	jwtManager *auth.JWTManager
	cfg        *config.Config

	mu      sync.RWMutex
	running map[uuid.UUID]*runningMatch
}

func NewMatchManager(db *database.DB, eventStore *repositories.PostgresEventStore, cache *repositories.RedisCache, hub *wshub.Hub, jwtManager *auth.JWTManager, cfg *config.Config) *MatchManager {
	return &MatchManager{
		db:         db,
		eventStore: eventStore,
		cache:      cache,
		hub:        hub,
		jwtManager: jwtManager,
		cfg:        cfg,
		running:    make(map[uuid.UUID]*runningMatch),
	}
}

// SeatToken pairs an agent with its signed seat credential.
type SeatToken struct {
	AgentID string `json:"agent_id"`
	Seat    int    `json:"seat"`
	Token   string `json:"token"`
}

// ApplyDefaults fills unset game parameters from the server config, so
// a create request only has to name what it wants to override.
func (m *MatchManager) ApplyDefaults(req *models.CreateMatchRequest) {
	if req.SmallBlind == 0 {
		req.SmallBlind = m.cfg.SmallBlind
	}
	if req.BigBlind == 0 {
		req.BigBlind = m.cfg.BigBlind
	}
	if req.StartingChips == 0 {
		req.StartingChips = m.cfg.StartingChips
	}
	if req.MaxHands == 0 {
		req.MaxHands = m.cfg.MaxHands
	}
}

// Create persists a new match with its seats and issues one seat token
// per agent. The match stays in 'created' until Start.
func (m *MatchManager) Create(ctx context.Context, req models.CreateMatchRequest) (*models.Match, []SeatToken, error) {
	seen := make(map[string]bool, len(req.Seats))
	for _, seat := range req.Seats {
		if seen[seat.AgentID] {
			return nil, nil, fmt.Errorf("duplicate agent id %q", seat.AgentID)
		}
		seen[seat.AgentID] = true
		if seat.Decider == models.DeciderRemote && seat.URL == "" {
			return nil, nil, fmt.Errorf("seat for %q needs a url", seat.AgentID)
		}
	}

	match := models.Match{
		ID:            uuid.New(),
		Name:          req.Name,
		SmallBlind:    req.SmallBlind,
		BigBlind:      req.BigBlind,
		StartingChips: req.StartingChips,
		MaxHands:      req.MaxHands,
		Seed:          req.Seed,
		Status:        "created",
	}
	for i, seat := range req.Seats {
		match.Seats = append(match.Seats, models.MatchSeat{
			ID:        uuid.New(),
			MatchID:   match.ID,
			AgentID:   seat.AgentID,
			AgentName: seat.AgentName,
			Seat:      i,
			Decider:   seat.Decider,
			AgentURL:  seat.URL,
		})
	}

	if err := m.db.WithContext(ctx).Create(&match).Error; err != nil {
		if database.IsUniqueConstraintError(err) {
			return nil, nil, fmt.Errorf("conflicting match seats: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to create match: %w", err)
	}

	tokens := make([]SeatToken, 0, len(match.Seats))
	for _, seat := range match.Seats {
		token, err := m.jwtManager.GenerateSeatToken(match.ID, seat.AgentID, seat.Seat)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to issue seat token: %w", err)
		}
		tokens = append(tokens, SeatToken{AgentID: seat.AgentID, Seat: seat.Seat, Token: token})
	}

	return &match, tokens, nil
}

// Start brings a created match to life: builds a decider per seat,
// wires the persistence and broadcast sinks, and launches the runner
// goroutine.
func (m *MatchManager) Start(ctx context.Context, matchID uuid.UUID) error {
	var match models.Match
	err := m.db.WithContext(ctx).Preload("Seats").First(&match, "id = ?", matchID).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match: %w", err)
	}
	if match.Status != "created" {
		return ErrMatchNotCreated
	}

	ids := make([]string, 0, len(match.Seats))
	names := make([]string, 0, len(match.Seats))
	deciders := make(map[string]arena.Decider, len(match.Seats))
	mailboxes := make(map[string]*SeatMailbox)
	for _, seat := range match.Seats {
		ids = append(ids, seat.AgentID)
		names = append(names, seat.AgentName)
		switch seat.Decider {
		case models.DeciderCaller:
			deciders[seat.AgentID] = arena.CallingStation{}
		case models.DeciderRandom:
			deciders[seat.AgentID] = &arena.RandomStrategy{Rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
		case models.DeciderTight:
			deciders[seat.AgentID] = arena.TightAggressive{}
		case models.DeciderRemote:
			deciders[seat.AgentID] = arena.NewRemoteDecider(seat.AgentURL)
		case models.DeciderHTTP:
			mailbox := NewSeatMailbox()
			mailboxes[seat.AgentID] = mailbox
			deciders[seat.AgentID] = mailbox
		default:
			return fmt.Errorf("seat %d has unknown decider %q", seat.Seat, seat.Decider)
		}
	}

	runner, err := arena.NewRunner(match.ID, arena.Config{
		SmallBlind:      match.SmallBlind,
		BigBlind:        match.BigBlind,
		StartingChips:   match.StartingChips,
		MaxHands:        match.MaxHands,
		DecisionTimeout: m.cfg.DecisionTimeout,
		Seed:            match.Seed,
	}, ids, names, deciders)
	if err != nil {
		return fmt.Errorf("failed to build runner: %w", err)
	}

	sink := newPersistenceSink(m.db, m.eventStore, m.cache)
	runner.AddEventSink(sink)
	runner.AddResultSink(sink)
	if m.hub != nil {
		runner.AddEventSink(m.hub)
	}

	if err := m.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, "created").
		Update("status", "running").Error; err != nil {
		return fmt.Errorf("failed to mark match running: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	rm := &runningMatch{
		id:        match.ID,
		runner:    runner,
		mailboxes: mailboxes,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.running[match.ID] = rm
	m.mu.Unlock()

	go m.runMatch(runCtx, rm)
	return nil
}

// runMatch drives the runner to completion and writes the final state
// back to the database.
func (m *MatchManager) runMatch(ctx context.Context, rm *runningMatch) {
	defer close(rm.done)
	defer func() {
		m.mu.Lock()
		delete(m.running, rm.id)
		m.mu.Unlock()
	}()

	chips, err := rm.runner.Run(ctx)

	status := "finished"
	if errors.Is(err, context.Canceled) {
		status = "cancelled"
	} else if err != nil {
		slog.Error("Match ended with error", "match_id", rm.id, "error", err)
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.db.WithContext(dbCtx).
		Model(&models.Match{}).
		Where("id = ?", rm.id).
		Update("status", status).Error; err != nil {
		slog.Error("Failed to update match status", "match_id", rm.id, "error", err)
	}
	for agentID, final := range chips {
		if err := m.db.WithContext(dbCtx).
			Model(&models.MatchSeat{}).
			Where("match_id = ? AND agent_id = ?", rm.id, agentID).
			Update("final_chips", final).Error; err != nil {
			slog.Error("Failed to update seat chips", "match_id", rm.id, "agent_id", agentID, "error", err)
		}
	}
}

// Cancel stops a running match between actions.
func (m *MatchManager) Cancel(matchID uuid.UUID) error {
	m.mu.RLock()
	rm, ok := m.running[matchID]
	m.mu.RUnlock()
	if !ok {
		return ErrMatchNotRunning
	}
	rm.cancel()
	return nil
}

// SubmitAction routes an agent's posted action into the waiting seat
// mailbox.
func (m *MatchManager) SubmitAction(matchID uuid.UUID, agentID string, action game.Action) error {
	m.mu.RLock()
	rm, ok := m.running[matchID]
	m.mu.RUnlock()
	if !ok {
		return ErrMatchNotRunning
	}

	mailbox, ok := rm.mailboxes[agentID]
	if !ok {
		return ErrSeatNotManaged
	}
	return mailbox.Submit(action)
}

// PublicView returns the redacted table state, reading through the
// redis cache.
func (m *MatchManager) PublicView(ctx context.Context, matchID uuid.UUID) (*game.TableView, error) {
	if m.cache != nil {
		if view, err := m.cache.GetTableView(ctx, matchID); err != nil {
			slog.Warn("Failed to read cached view", "match_id", matchID, "error", err)
		} else if view != nil {
			return view, nil
		}
	}

	m.mu.RLock()
	rm, ok := m.running[matchID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMatchNotRunning
	}

	view, err := rm.runner.Session().View()
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.SetTableView(ctx, matchID, view); err != nil {
			slog.Warn("Failed to cache view", "match_id", matchID, "error", err)
		}
	}
	return &view, nil
}

// SeatView returns the per-agent state, hole cards included. Never
// cached: it is private to one seat.
func (m *MatchManager) SeatView(matchID uuid.UUID, agentID string) (*game.PlayerView, error) {
	m.mu.RLock()
	rm, ok := m.running[matchID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMatchNotRunning
	}

	view, err := rm.runner.Session().ViewFor(agentID)
	if err != nil {
		if errors.Is(err, game.ErrUnknownPlayer) {
			return nil, ErrUnknownSeat
		}
		return nil, err
	}
	return &view, nil
}

// History returns the settled hands of a match, newest last, reading
// through the redis cache and falling back to the hand records table.
func (m *MatchManager) History(ctx context.Context, matchID uuid.UUID) ([]game.HandResult, error) {
	if m.cache != nil {
		if results, err := m.cache.GetHandResults(ctx, matchID); err != nil {
			slog.Warn("Failed to read cached history", "match_id", matchID, "error", err)
		} else if results != nil {
			return results, nil
		}
	}

	var records []models.HandRecord
	err := m.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("hand_number ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load hand records: %w", err)
	}

	results := make([]game.HandResult, 0, len(records))
	for _, record := range records {
		result := game.HandResult{
			HandID:         record.ID.String(),
			HandNumber:     record.HandNumber,
			PotDistributed: record.PotDistributed,
		}
		if err := json.Unmarshal(record.CommunityCards, &result.CommunityCards); err != nil {
			return nil, fmt.Errorf("failed to decode hand %d board: %w", record.HandNumber, err)
		}
		if err := json.Unmarshal(record.Winners, &result.Winners); err != nil {
			return nil, fmt.Errorf("failed to decode hand %d winners: %w", record.HandNumber, err)
		}
		if err := json.Unmarshal(record.Outcomes, &result.Players); err != nil {
			return nil, fmt.Errorf("failed to decode hand %d outcomes: %w", record.HandNumber, err)
		}
		results = append(results, result)
	}

	if m.cache != nil && len(results) > 0 {
		if err := m.cache.SetHandResults(ctx, matchID, results); err != nil {
			slog.Warn("Failed to cache history", "match_id", matchID, "error", err)
		}
	}
	return results, nil
}

// EventLog returns the persisted event stream of a match in append
// order. It covers finished matches too, straight from the store.
func (m *MatchManager) EventLog(ctx context.Context, matchID uuid.UUID) ([]engine.StoredEvent, error) {
	evts, err := m.eventStore.GetEvents(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event log: %w", err)
	}
	return evts, nil
}

// Wait blocks until the match's runner goroutine exits. Used by tests
// and graceful shutdown.
func (m *MatchManager) Wait(matchID uuid.UUID) {
	m.mu.RLock()
	rm, ok := m.running[matchID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	<-rm.done
}

// Shutdown cancels every running match and waits for the runners to
// settle.
func (m *MatchManager) Shutdown() {
	m.mu.RLock()
	active := make([]*runningMatch, 0, len(m.running))
	for _, rm := range m.running {
		active = append(active, rm)
	}
	m.mu.RUnlock()

	for _, rm := range active {
		rm.cancel()
	}
	for _, rm := range active {
		<-rm.done
	}
}
