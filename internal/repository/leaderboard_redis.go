package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

const (
	leaderboardKeyPrefix = "leaderboard:"
	leaderboardNamesKey  = "leaderboard_names"
)

type dbLeaderboardEntry struct {
	Wins   int64 `redis:"wins"`
	Losses int64 `redis:"losses"`
	Draws  int64 `redis:"draws"`
}

func (that dbLeaderboardEntry) toEntity(name string) *entity.LeaderboardEntry {
	return &entity.LeaderboardEntry{
		Name:   name,
		Wins:   that.Wins,
		Losses: that.Losses,
		Draws:  that.Draws,
	}
}

type redisLeaderboard struct {
	client *redis.Client
}

func NewRedisLeaderboard(client *redis.Client) LeaderboardRepository {
	return &redisLeaderboard{
		client: client,
	}
}

func (that *redisLeaderboard) RecordResult(ctx context.Context, name string, result entity.PlayerResult) error {
	field, err := redisField(result)
	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, leaderboardKeyPrefix+name, field, 1)
		pipe.SAdd(ctx, leaderboardNamesKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", result, name, err)
	}

	return nil
}

func (that *redisLeaderboard) GetEntry(ctx context.Context, name string) (*entity.LeaderboardEntry, error) {
	cmd := that.client.HGetAll(ctx, leaderboardKeyPrefix+name)

	values, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrEntryNotFound, name)
	}

	var stored dbLeaderboardEntry
	if err = cmd.Scan(&stored); err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
	}

	return stored.toEntity(name), nil
}

func (that *redisLeaderboard) List(ctx context.Context) ([]*entity.LeaderboardEntry, error) {
	names, err := that.client.SMembers(ctx, leaderboardNamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard names: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(names))

	_, err = that.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			cmds[i] = pipe.HGetAll(ctx, leaderboardKeyPrefix+name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard entries: %w", err)
	}

	entries := make([]*entity.LeaderboardEntry, 0, len(names))
	for i, name := range names {
		var stored dbLeaderboardEntry
		if err = cmds[i].Scan(&stored); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry %s: %w", name, err)
		}

		entries = append(entries, stored.toEntity(name))
	}

	return entries, nil
}

func redisField(result entity.PlayerResult) (string, error) {
	switch result {
	case entity.PlayerWin:
		return "wins", nil
	case entity.PlayerLoss:
		return "losses", nil
	case entity.PlayerDraw:
		return "draws", nil
	default:
		return "", fmt.Errorf("unknown player result %q", result)
	}
}
