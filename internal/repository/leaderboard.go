package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

// LeaderboardRepository keeps per-name win/loss/draw counters. Every update is atomic.
type LeaderboardRepository interface {
	RecordResult(ctx context.Context, name string, result entity.PlayerResult) error
	GetEntry(ctx context.Context, name string) (*entity.LeaderboardEntry, error)
	List(ctx context.Context) ([]*entity.LeaderboardEntry, error)
}

type memoryLeaderboard struct {
	mu      sync.Mutex
	entries map[string]*entity.LeaderboardEntry
}

func NewMemoryLeaderboard() LeaderboardRepository {
	return &memoryLeaderboard{
		entries: make(map[string]*entity.LeaderboardEntry),
	}
}

func (that *memoryLeaderboard) RecordResult(_ context.Context, name string, result entity.PlayerResult) error {
	if err := validateResult(result); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.entries[name]
	if !ok {
		entry = &entity.LeaderboardEntry{Name: name}
		that.entries[name] = entry
	}

	entry.Apply(result)

	return nil
}

func (that *memoryLeaderboard) GetEntry(_ context.Context, name string) (*entity.LeaderboardEntry, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrEntryNotFound, name)
	}

	clone := *entry

	return &clone, nil
}

func (that *memoryLeaderboard) List(_ context.Context) ([]*entity.LeaderboardEntry, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entries := make([]*entity.LeaderboardEntry, 0, len(that.entries))
	for _, entry := range that.entries {
		clone := *entry
		entries = append(entries, &clone)
	}

	return entries, nil
}

func validateResult(result entity.PlayerResult) error {
	switch result {
	case entity.PlayerWin, entity.PlayerLoss, entity.PlayerDraw:
		return nil
	default:
		return fmt.Errorf("unknown player result %q", result)
	}
}
