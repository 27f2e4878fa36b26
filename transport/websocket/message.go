package websocket

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

// Inbound actions.
const (
	ActionJoinRoom    = "join_room"
	ActionPlayerReady = "player_ready"
	ActionMakeMove    = "make_move"
	ActionChat        = "chat"
	ActionLeave       = "leave"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomID          string `json:"room_id,omitempty"`
	PlayerName      string `json:"player_name"`
	RequestedSymbol string `json:"requested_symbol,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"room_id,omitempty"`
}

type MakeMovePayload struct {
	RoomID string `json:"room_id,omitempty"`

	// X and Y stay raw so that non-integers can be rejected as moves.
	X *json.Number `json:"x"`
	Y *json.Number `json:"y"`
}

type ChatPayload struct {
	RoomID string `json:"room_id,omitempty"`
	Text   string `json:"text"`
}

func encodeEvent(event entity.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.Action(), err)
	}

	data, err := json.Marshal(Message{Action: event.Action(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", event.Action(), err)
	}

	return data, nil
}

// parseCoordinate accepts whole numbers that fit in int64.
func parseCoordinate(x, y json.Number) (entity.Coordinate, error) {
	parsedX, err := parseAxis(x)
	if err != nil {
		return entity.Coordinate{}, err
	}

	parsedY, err := parseAxis(y)
	if err != nil {
		return entity.Coordinate{}, err
	}

	return entity.Coordinate{X: parsedX, Y: parsedY}, nil
}

func parseAxis(value json.Number) (int64, error) {
	parsed, err := strconv.ParseInt(value.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", apperror.ErrInvalidCoordinate, value.String())
	}

	return parsed, nil
}
