package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/config"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/repository"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/room"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-infinite/transport/rest"
	"github.com/rocketscienceinc/tictactoe-infinite/transport/websocket"
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

	leaderboard, closeLeaderboard, err := newLeaderboard(ctx, conf)
	if err != nil {
		return fmt.Errorf("could not create leaderboard: %w", err)
	}

	defer func() {
		if err = closeLeaderboard(); err != nil {
			log.Error("could not close leaderboard storage", "error", err)
		}
	}()

	log.Info("leaderboard ready", "backend", conf.Leaderboard.Backend)

	rooms := repository.NewRoomRepository(logger, roomConfig(conf), conf.Game.WaitTimeout)
	gameManager := usecase.NewGameManager(logger, usecase.Config{
		MaxChatLength: conf.Game.MaxChatLength,
		MaxNameLength: conf.Game.MaxNameLength,
	}, rooms, leaderboard)

	httpServer := rest.New(logger, leaderboard)
	wsServer := websocket.New(logger, websocket.Config{
		SendBuffer:   conf.Socket.SendBuffer,
		WriteTimeout: conf.Socket.WriteTimeout,
		PongTimeout:  conf.Socket.PongTimeout,
		ReadLimit:    conf.Socket.ReadLimit,
	}, gameManager)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rooms.RunJanitor(groupCtx, conf.Game.JanitorInterval)
		return nil
	})

	group.Go(func() error {
		if httpErr := httpServer.Start(groupCtx, conf.HTTPPort); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		if wsErr := wsServer.Start(groupCtx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func roomConfig(conf *config.Config) room.Config {
	return room.Config{
		Rules: tictactoe.Rules{
			RunLength: conf.Game.RunLength,
			ExactRun:  conf.Game.ExactRun,
			MaxMoves:  conf.Game.MaxMoves,
		},
		CoordinateLimit: conf.Game.CoordinateLimit,
		RequireReady:    conf.Game.RequireReady,
	}
}

func newLeaderboard(ctx context.Context, conf *config.Config) (repository.LeaderboardRepository, func() error, error) {
	switch conf.Leaderboard.Backend {
	case config.BackendRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisLeaderboard(redisStorage.Connection), redisStorage.Close, nil
	case config.BackendSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Leaderboard.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteLeaderboard(sqliteStorage.Connection), sqliteStorage.Close, nil
	default:
		return repository.NewMemoryLeaderboard(), func() error { return nil }, nil
	}
}
