package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/event"
)

const defaultStatsQueueSize = 64

type statsRepo interface {
	Increment(ctx context.Context, field string) error
	MarkHasWon(ctx context.Context, turn entity.Turn) error
	Get(ctx context.Context) (*entity.Stats, error)
}

// StatsService keeps the cumulative counters of every session. Events are queued by
// Listen and written to storage by Run, so a slow store never blocks a match.
type StatsService struct {
	logger *slog.Logger
	repo   statsRepo
	events chan event.Event
}

func NewStatsService(logger *slog.Logger, repo statsRepo, queueSize int) *StatsService {
	if queueSize <= 0 {
		queueSize = defaultStatsQueueSize
	}

	return &StatsService{
		logger: logger.With("component", "stats"),
		repo:   repo,
		events: make(chan event.Event, queueSize),
	}
}

// Listen - is an event.Listener. It never blocks; events are dropped when the queue is full.
func (that *StatsService) Listen(e event.Event) {
	switch e.(type) {
	case event.TurnChanged, event.MatchWon:
	default:
		return
	}

	select {
	case that.events <- e:
	default:
		that.logger.Warn("stats queue is full, event dropped", "event", e.Name())
	}
}

// Run - writes queued events until ctx is done.
func (that *StatsService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-that.events:
			if err := that.Record(ctx, e); err != nil {
				that.logger.Error("failed to record stats", "event", e.Name(), "error", err)
			}
		}
	}
}

// Record - applies one event to the stored counters.
func (that *StatsService) Record(ctx context.Context, e event.Event) error {
	switch ev := e.(type) {
	case event.TurnChanged:
		if err := that.repo.Increment(ctx, entity.StatTotalTurns); err != nil {
			return fmt.Errorf("failed to count turn: %w", err)
		}
	case event.MatchWon:
		// the first win of a player unlocks its alternative mark
		if err := that.repo.MarkHasWon(ctx, ev.Turn); err != nil {
			return fmt.Errorf("failed to mark winner: %w", err)
		}

		field := entity.StatPlayerWins
		if ev.WasComputer {
			field = entity.StatAIWins
		}

		if err := that.repo.Increment(ctx, field); err != nil {
			return fmt.Errorf("failed to count win: %w", err)
		}
	}

	return nil
}

func (that *StatsService) GetStats(ctx context.Context) (*entity.Stats, error) {
	stats, err := that.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}
