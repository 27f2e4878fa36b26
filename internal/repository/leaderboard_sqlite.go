package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

type sqliteLeaderboard struct {
	conn *sql.DB
}

// NewSQLiteLeaderboard expects the leaderboard table created by storage.Storage.Init.
func NewSQLiteLeaderboard(conn *sql.DB) LeaderboardRepository {
	return &sqliteLeaderboard{
		conn: conn,
	}
}

func (that *sqliteLeaderboard) RecordResult(ctx context.Context, name string, result entity.PlayerResult) error {
	if err := validateResult(result); err != nil {
		return err
	}

	delta := &entity.LeaderboardEntry{Name: name}
	delta.Apply(result)

	query := `INSERT INTO leaderboard (name, wins, losses, draws) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			draws = draws + excluded.draws`

	_, err := that.conn.ExecContext(ctx, query, delta.Name, delta.Wins, delta.Losses, delta.Draws)
	if err != nil {
		return fmt.Errorf("can't record %s for %s: %w", result, name, err)
	}

	return nil
}

func (that *sqliteLeaderboard) GetEntry(ctx context.Context, name string) (*entity.LeaderboardEntry, error) {
	query := `SELECT name, wins, losses, draws FROM leaderboard WHERE name = ?`

	var entry entity.LeaderboardEntry

	err := that.conn.QueryRowContext(ctx, query, name).Scan(&entry.Name, &entry.Wins, &entry.Losses, &entry.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrEntryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("can't find leaderboard entry: %w", err)
	}

	return &entry, nil
}

func (that *sqliteLeaderboard) List(ctx context.Context) ([]*entity.LeaderboardEntry, error) {
	query := `SELECT name, wins, losses, draws FROM leaderboard`

	rows, err := that.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("can't list leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*entity.LeaderboardEntry{}
	for rows.Next() {
		var entry entity.LeaderboardEntry
		if err = rows.Scan(&entry.Name, &entry.Wins, &entry.Losses, &entry.Draws); err != nil {
			return nil, fmt.Errorf("can't scan leaderboard entry: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate leaderboard: %w", err)
	}

	return entries, nil
}
