package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-match/internal/config"
	"github.com/rocketscienceinc/tictactoe-match/internal/repository"
	"github.com/rocketscienceinc/tictactoe-match/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-match/internal/service"
	"github.com/rocketscienceinc/tictactoe-match/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-match/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-match/transport/rest"
	"github.com/rocketscienceinc/tictactoe-match/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	statsRepo := repository.NewStatsRepository(redisStorage)
	statsService := service.NewStatsService(logger, statsRepo, conf.Stats.QueueSize)
	go statsService.Run(ctx)

	sessions, err := usecase.NewSessionManager(logger, matchOptions(conf.Match), conf.Match.LoopQueueSize, statsService.Listen)
	if err != nil {
		return fmt.Errorf("could not create session manager: %w", err)
	}
	defer sessions.Close()

	stream := websocket.New(logger, sessions, conf.Stream.OutboxSize)
	router := rest.NewRouter(logger, sessions, statsService, stream)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func matchOptions(conf config.Match) usecase.MatchOptions {
	return usecase.MatchOptions{
		Rules: tictactoe.Rules{
			GridSize:   conf.GridSize,
			MatchCount: conf.MatchCount,
		},
		SettleDelay:     conf.SettleDelay,
		AICheckInterval: conf.AICheckInterval,
		ResultsTimeout:  conf.ResultsTimeout,
	}
}
