package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "modernc.org/sqlite"
)

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// a single connection keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS leaderboard (
		name   TEXT PRIMARY KEY,
		wins   INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		draws  INTEGER NOT NULL DEFAULT 0
	)`

	_, err := that.Connection.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
