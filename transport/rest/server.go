package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type leaderboardRepo interface {
	GetEntry(ctx context.Context, name string) (*entity.LeaderboardEntry, error)
	List(ctx context.Context) ([]*entity.LeaderboardEntry, error)
}

type Server struct {
	logger      *slog.Logger
	leaderboard leaderboardRepo
}

func New(logger *slog.Logger, leaderboard leaderboardRepo) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		leaderboard: leaderboard,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("GET /leaderboard", that.handleLeaderboard)
	mux.HandleFunc("GET /leaderboard/{name}", that.handleLeaderboardEntry)

	return mux
}

// Start serves HTTP on port until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	that.logger.Info("http server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
