package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/database"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/events"
	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
	"github.com/pokerlab/holdem-arena/internal/engine/repositories"
	"github.com/pokerlab/holdem-arena/internal/models"
)

// persistenceSink writes match telemetry to postgres and keeps the
// redis caches coherent. It implements both arena.EventSink and
// arena.ResultSink. Persistence failures are logged, never allowed to
// stop a running match.
type persistenceSink struct {
	db         *database.DB
	eventStore *repositories.PostgresEventStore
	cache      *repositories.RedisCache
}

func newPersistenceSink(db *database.DB, eventStore *repositories.PostgresEventStore, cache *repositories.RedisCache) *persistenceSink {
	return &persistenceSink{
		db:         db,
		eventStore: eventStore,
		cache:      cache,
	}
}

// Publish stores the raw events, records applied actions in their own
// table, and drops the cached public view, which has just gone stale.
func (s *persistenceSink) Publish(ctx context.Context, matchID uuid.UUID, evts []events.DomainEvent) {
	if err := s.eventStore.SaveEvents(ctx, matchID, evts); err != nil {
		slog.Error("Failed to persist match events", "match_id", matchID, "error", err)
	}

	for _, ev := range evts {
		applied, ok := ev.(*events.ActionApplied)
		if !ok {
			continue
		}
		record := models.ActionRecord{
			ID:      uuid.New(),
			HandID:  applied.GetAggregateID(),
			MatchID: matchID,
			AgentID: applied.PlayerID,
			Round:   applied.Round,
			Action:  applied.Action,
			Paid:    applied.Paid,
			Pot:     applied.Pot,
		}
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			slog.Error("Failed to persist action record", "match_id", matchID, "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTableView(ctx, matchID); err != nil {
			slog.Warn("Failed to invalidate cached view", "match_id", matchID, "error", err)
		}
	}
}

// HandFinished stores the settled hand summary and invalidates the
// cached history page.
func (s *persistenceSink) HandFinished(ctx context.Context, matchID uuid.UUID, result game.HandResult) {
	board, err := json.Marshal(result.CommunityCards)
	if err != nil {
		slog.Error("Failed to serialize community cards", "match_id", matchID, "error", err)
		return
	}
	winners, err := json.Marshal(result.Winners)
	if err != nil {
		slog.Error("Failed to serialize winners", "match_id", matchID, "error", err)
		return
	}
	outcomes, err := json.Marshal(result.Players)
	if err != nil {
		slog.Error("Failed to serialize outcomes", "match_id", matchID, "error", err)
		return
	}

	handID, err := uuid.Parse(result.HandID)
	if err != nil {
		handID = uuid.New()
	}
	record := models.HandRecord{
		ID:             handID,
		MatchID:        matchID,
		HandNumber:     result.HandNumber,
		PotDistributed: result.PotDistributed,
		CommunityCards: models.JSONB(board),
		Winners:        models.JSONB(winners),
		Outcomes:       models.JSONB(outcomes),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		slog.Error("Failed to persist hand record", "match_id", matchID, "error", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("hands_played", result.HandNumber).Error; err != nil {
		slog.Error("Failed to update hands played", "match_id", matchID, "error", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateHandResults(ctx, matchID); err != nil {
			slog.Warn("Failed to invalidate cached history", "match_id", matchID, "error", err)
		}
	}
}
