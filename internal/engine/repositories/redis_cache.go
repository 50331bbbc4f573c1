package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/pokerlab/holdem-arena/internal/engine/domain/game"
)

// RedisCache keeps hot read paths off postgres: the latest public
// table view per match and the first page of hand results.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

const (
	tableViewPrefix   = "table_view:"
	handResultsPrefix = "hand_results:"

	tableViewTTL   = 1 * time.Hour
	handResultsTTL = 48 * time.Hour
)

// SetTableView caches the current public view for a match
func (rc *RedisCache) SetTableView(ctx context.Context, matchID uuid.UUID, view game.TableView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal table view: %w", err)
	}
	if err := rc.client.Set(ctx, tableViewPrefix+matchID.String(), data, tableViewTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache table view: %w", err)
	}
	return nil
}

// GetTableView retrieves the cached public view, (nil, nil) on miss
func (rc *RedisCache) GetTableView(ctx context.Context, matchID uuid.UUID) (*game.TableView, error) {
	data, err := rc.client.Get(ctx, tableViewPrefix+matchID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached table view: %w", err)
	}
	var view game.TableView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table view: %w", err)
	}
	return &view, nil
}

// InvalidateTableView drops the cached view after an action mutates it
func (rc *RedisCache) InvalidateTableView(ctx context.Context, matchID uuid.UUID) error {
	return rc.client.Del(ctx, tableViewPrefix+matchID.String()).Err()
}

// SetHandResults caches the most recent hand results for a match
func (rc *RedisCache) SetHandResults(ctx context.Context, matchID uuid.UUID, results []game.HandResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal hand results: %w", err)
	}
	if err := rc.client.Set(ctx, handResultsPrefix+matchID.String(), data, handResultsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache hand results: %w", err)
	}
	return nil
}

// GetHandResults retrieves cached hand results, (nil, nil) on miss
func (rc *RedisCache) GetHandResults(ctx context.Context, matchID uuid.UUID) ([]game.HandResult, error) {
	data, err := rc.client.Get(ctx, handResultsPrefix+matchID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached hand results: %w", err)
	}
	var results []game.HandResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hand results: %w", err)
	}
	return results, nil
}

// InvalidateHandResults drops the cached results after a hand settles
func (rc *RedisCache) InvalidateHandResults(ctx context.Context, matchID uuid.UUID) error {
	return rc.client.Del(ctx, handResultsPrefix+matchID.String()).Err()
}
