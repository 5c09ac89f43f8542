package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

const (
	statsKey     = "stats"
	hasWonPrefix = "has_won:"
)

type StatsRepository interface {
	Increment(ctx context.Context, field string) error
	MarkHasWon(ctx context.Context, turn entity.Turn) error
	Get(ctx context.Context) (*entity.Stats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func (that *dbStats) Increment(ctx context.Context, field string) error {
	if err := that.client.HIncrBy(ctx, statsKey, field, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	return nil
}

func (that *dbStats) MarkHasWon(ctx context.Context, turn entity.Turn) error {
	if err := that.client.Set(ctx, hasWonPrefix+turn.String(), 1, 0).Err(); err != nil {
		return fmt.Errorf("failed to mark %s as winner: %w", turn, err)
	}

	return nil
}

func (that *dbStats) Get(ctx context.Context) (*entity.Stats, error) {
	counters, err := that.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.Stats{HasWon: make(map[string]bool)}

	fields := map[string]*int64{
		entity.StatTotalTurns: &stats.TotalTurns,
		entity.StatPlayerWins: &stats.PlayerWins,
		entity.StatAIWins:     &stats.AIWins,
	}
	for field, target := range fields {
		raw, ok := counters[field]
		if !ok {
			continue
		}

		if *target, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", field, err)
		}
	}

	for _, turn := range []entity.Turn{entity.TurnPlayerA, entity.TurnPlayerB} {
		exists, err := that.client.Exists(ctx, hasWonPrefix+turn.String()).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check %s win flag: %w", turn, err)
		}
		stats.HasWon[turn.String()] = exists == 1
	}

	return stats, nil
}
