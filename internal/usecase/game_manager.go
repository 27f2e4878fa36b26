package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/room"
)

const (
	DefaultMaxChatLength = 500
	DefaultMaxNameLength = 32
)

type leaderboardRepoDep interface {
	RecordResult(ctx context.Context, name string, result entity.PlayerResult) error
	GetEntry(ctx context.Context, name string) (*entity.LeaderboardEntry, error)
}

type roomRepoDep interface {
	FindOrCreate(roomID string) (*room.Room, error)
	RemoveIfEmpty(roomID string) bool
}

type Config struct {
	MaxChatLength int
	MaxNameLength int
}

type JoinRequest struct {
	RoomID          string
	PlayerName      string
	RequestedSymbol entity.Symbol
}

// GameManager translates session requests into room operations and scores finished games.
type GameManager struct {
	logger *slog.Logger
	config Config

	rooms       roomRepoDep
	leaderboard leaderboardRepoDep
}

func NewGameManager(logger *slog.Logger, config Config, rooms roomRepoDep, leaderboard leaderboardRepoDep) *GameManager {
	if config.MaxChatLength <= 0 {
		config.MaxChatLength = DefaultMaxChatLength
	}

	if config.MaxNameLength <= 0 {
		config.MaxNameLength = DefaultMaxNameLength
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),
		config: config,

		rooms:       rooms,
		leaderboard: leaderboard,
	}
}

// JoinRoom seats the session in a room. An empty RoomID creates a new room.
// A session already sitting in a room leaves it first, unless the request names that same room.
func (that *GameManager) JoinRoom(ctx context.Context, session *Session, request JoinRequest) error {
	log := that.logger.With("method", "JoinRoom", "session_id", session.ID)

	name, err := that.validateName(request.PlayerName)
	if err != nil {
		return err
	}

	if session.room != nil && request.RoomID == session.RoomID() {
		return fmt.Errorf("%w: %s is already seated in room %s", apperror.ErrNameTaken, session.Name, request.RoomID)
	}

	if session.room != nil {
		if err = that.Leave(ctx, session, session.RoomID()); err != nil {
			return fmt.Errorf("failed to leave previous room: %w", err)
		}
	}

	target, err := that.rooms.FindOrCreate(request.RoomID)
	if err != nil {
		return fmt.Errorf("failed to find room: %w", err)
	}

	symbol, err := target.Join(name, request.RequestedSymbol, session.notifier)
	if err != nil {
		that.rooms.RemoveIfEmpty(target.ID())
		return fmt.Errorf("failed to join room %s: %w", target.ID(), err)
	}

	session.Name = name
	session.room = target

	log.Info("player joined", "room_id", target.ID(), "player", name, "symbol", symbol.String())

	return nil
}

func (that *GameManager) PlayerReady(_ context.Context, session *Session, roomID string) error {
	current, err := that.sessionRoom(session, roomID)
	if err != nil {
		return err
	}

	if err = current.SetReady(session.Name); err != nil {
		return fmt.Errorf("failed to set ready: %w", err)
	}

	return nil
}

// MakeMove submits a move. A returned error means the move was rejected and nothing changed.
func (that *GameManager) MakeMove(ctx context.Context, session *Session, roomID string, coordinate entity.Coordinate) error {
	current, err := that.sessionRoom(session, roomID)
	if err != nil {
		return err
	}

	result, err := current.SubmitMove(session.Name, coordinate)
	if err != nil {
		return fmt.Errorf("move %s rejected: %w", coordinate, err)
	}

	if result.Finish != nil {
		that.logger.Info("game finished",
			"method", "MakeMove",
			"room_id", current.ID(),
			"result", string(result.Finish.Result),
			"winner", result.Finish.WinnerName,
		)

		that.settle(ctx, current, result.Finish)
	}

	return nil
}

func (that *GameManager) Chat(_ context.Context, session *Session, roomID, text string) error {
	current, err := that.sessionRoom(session, roomID)
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty chat message", apperror.ErrProtocol)
	}

	if utf8.RuneCountInString(text) > that.config.MaxChatLength {
		text = string([]rune(text)[:that.config.MaxChatLength])
	}

	if err = current.Chat(session.Name, text); err != nil {
		return fmt.Errorf("failed to relay chat: %w", err)
	}

	return nil
}

// Leave removes the session from its room. Leaving a running game forfeits it.
func (that *GameManager) Leave(ctx context.Context, session *Session, roomID string) error {
	log := that.logger.With("method", "Leave", "session_id", session.ID)

	current, err := that.sessionRoom(session, roomID)
	if err != nil {
		return err
	}

	session.room = nil

	result, err := current.Leave(session.Name)
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if result.Abandoned {
		log.Info("room abandoned", "room_id", current.ID(), "player", session.Name)
	}

	if result.Finish != nil {
		that.settle(ctx, current, result.Finish)
	}

	if that.rooms.RemoveIfEmpty(current.ID()) {
		log.Debug("empty room removed", "room_id", current.ID())
	}

	return nil
}

// Disconnect is a leave from whatever room the session is in.
func (that *GameManager) Disconnect(ctx context.Context, session *Session) {
	if session.room == nil {
		return
	}

	if err := that.Leave(ctx, session, session.RoomID()); err != nil {
		that.logger.Warn("leave on disconnect failed", "method", "Disconnect", "session_id", session.ID, "error", err)
	}
}

// settle records the outcome of a finished game and tells the remaining players their new standings.
func (that *GameManager) settle(ctx context.Context, finished *room.Room, finish *room.Finish) {
	log := that.logger.With("method", "settle", "room_id", finished.ID())

	for name, result := range scores(finish) {
		if err := that.leaderboard.RecordResult(ctx, name, result); err != nil {
			log.Error("failed to record result", "player", name, "result", string(result), "error", err)
		}
	}

	entries := make([]*entity.LeaderboardEntry, 0, len(finish.Players))
	for _, name := range finish.Players {
		entry, err := that.leaderboard.GetEntry(ctx, name)
		if err != nil {
			log.Warn("failed to read leaderboard entry", "player", name, "error", err)
			continue
		}

		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		finished.Broadcast(entity.LeaderboardUpdate{Entries: entries})
	}
}

func (that *GameManager) sessionRoom(session *Session, roomID string) (*room.Room, error) {
	if session.room == nil {
		return nil, fmt.Errorf("%w: session has not joined a room", apperror.ErrNotInRoom)
	}

	if roomID != "" && roomID != session.room.ID() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotInRoom, roomID)
	}

	return session.room, nil
}

func (that *GameManager) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("%w: player_name is required", apperror.ErrProtocol)
	}

	if utf8.RuneCountInString(name) > that.config.MaxNameLength {
		return "", fmt.Errorf("%w: player_name longer than %d", apperror.ErrProtocol, that.config.MaxNameLength)
	}

	return name, nil
}

// scores maps a finish to the per-player leaderboard updates. Abandoned games without a winner score nothing.
func scores(finish *room.Finish) map[string]entity.PlayerResult {
	switch {
	case finish.Draw():
		results := make(map[string]entity.PlayerResult, len(finish.Players))
		for _, name := range finish.Players {
			results[name] = entity.PlayerDraw
		}
		return results
	case finish.WinnerName != "":
		results := map[string]entity.PlayerResult{finish.WinnerName: entity.PlayerWin}
		if finish.LoserName != "" {
			results[finish.LoserName] = entity.PlayerLoss
		}
		return results
	default:
		return nil
	}
}
