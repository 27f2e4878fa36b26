package entity

import "encoding/json"

// Outbound actions.
const (
	ActionRoomJoined        = "room_joined"
	ActionOpponentJoined    = "opponent_joined"
	ActionGameStarted       = "game_started"
	ActionMoveAccepted      = "move_accepted"
	ActionMoveRejected      = "move_rejected"
	ActionGameOver          = "game_over"
	ActionChatRelay         = "chat_relay"
	ActionRoomTimedOut      = "room_timed_out"
	ActionLeaderboardUpdate = "leaderboard_update"
	ActionError             = "error"
)

// Event is a server to client message. Action names the wire message type.
type Event interface {
	Action() string
}

type RoomJoined struct {
	RoomID         string `json:"room_id"`
	AssignedSymbol Symbol `json:"assigned_symbol"`
	Status         Status `json:"status"`
}

func (RoomJoined) Action() string { return ActionRoomJoined }

type OpponentJoined struct {
	OpponentName   string `json:"opponent_name"`
	OpponentSymbol Symbol `json:"opponent_symbol"`
}

func (OpponentJoined) Action() string { return ActionOpponentJoined }

type GameStarted struct {
	RoomID         string `json:"room_id"`
	Status         Status `json:"status"`
	NextTurnSymbol Symbol `json:"next_turn_symbol"`
}

func (GameStarted) Action() string { return ActionGameStarted }

type MoveAccepted struct {
	X              int64   `json:"x"`
	Y              int64   `json:"y"`
	Symbol         Symbol  `json:"symbol"`
	NextTurnSymbol Symbol  `json:"next_turn_symbol,omitempty"`
	Outcome        Outcome `json:"outcome"`
}

func (MoveAccepted) Action() string { return ActionMoveAccepted }

// MoveRejected echoes the coordinates exactly as the client sent them.
type MoveRejected struct {
	Reason string      `json:"reason"`
	X      json.Number `json:"x"`
	Y      json.Number `json:"y"`
}

func (MoveRejected) Action() string { return ActionMoveRejected }

type GameOver struct {
	Result       Result `json:"result"`
	WinnerSymbol Symbol `json:"winner_symbol,omitempty"`
}

func (GameOver) Action() string { return ActionGameOver }

type ChatRelay struct {
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
}

func (ChatRelay) Action() string { return ActionChatRelay }

type RoomTimedOut struct {
	RoomID string `json:"room_id"`
	Reason string `json:"reason"`
}

func (RoomTimedOut) Action() string { return ActionRoomTimedOut }

type LeaderboardUpdate struct {
	Entries []*LeaderboardEntry `json:"entries"`
}

func (LeaderboardUpdate) Action() string { return ActionLeaderboardUpdate }

// ErrorEvent reports a rejected request to its sender only.
type ErrorEvent struct {
	RequestAction string `json:"action,omitempty"`
	Reason        string `json:"reason"`
	Message       string `json:"message,omitempty"`
}

func (ErrorEvent) Action() string { return ActionError }
