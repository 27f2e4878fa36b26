package apperror

import "errors"

var (
	ErrProtocol          = errors.New("malformed message")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrDuplicateSymbol   = errors.New("symbol is already taken")
	ErrNameTaken         = errors.New("player name is already taken in this room")
	ErrNotInRoom         = errors.New("player is not in this room")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrRoomNotActive     = errors.New("room is not active")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrOccupiedCell      = errors.New("cell is already occupied")
	ErrOpponentLeft      = errors.New("opponent left the room")
	ErrRoomTimedOut      = errors.New("room timed out waiting for an opponent")
	ErrEntryNotFound     = errors.New("leaderboard entry not found")
)

// Reason codes sent to clients.
const (
	ReasonProtocol          = "ProtocolError"
	ReasonRoomNotFound      = "RoomNotFound"
	ReasonRoomFull          = "RoomFull"
	ReasonDuplicateSymbol   = "DuplicateSymbolRequest"
	ReasonNameTaken         = "NameTaken"
	ReasonNotInRoom         = "NotInRoom"
	ReasonNotYourTurn       = "NotYourTurn"
	ReasonRoomNotActive     = "RoomNotActive"
	ReasonInvalidCoordinate = "InvalidCoordinate"
	ReasonOccupiedCell      = "OccupiedCell"
	ReasonOpponentLeft      = "OpponentLeft"
	ReasonRoomTimedOut      = "RoomTimedOut"
	ReasonInternal          = "InternalError"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrProtocol, ReasonProtocol},
	{ErrRoomNotFound, ReasonRoomNotFound},
	{ErrRoomFull, ReasonRoomFull},
	{ErrDuplicateSymbol, ReasonDuplicateSymbol},
	{ErrNameTaken, ReasonNameTaken},
	{ErrNotInRoom, ReasonNotInRoom},
	{ErrNotYourTurn, ReasonNotYourTurn},
	{ErrRoomNotActive, ReasonRoomNotActive},
	{ErrInvalidCoordinate, ReasonInvalidCoordinate},
	{ErrOccupiedCell, ReasonOccupiedCell},
	{ErrOpponentLeft, ReasonOpponentLeft},
	{ErrRoomTimedOut, ReasonRoomTimedOut},
}

// Reason maps an error to the reason code reported to the client.
// Unknown errors are reported as InternalError so storage details never leak.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}

	return ReasonInternal
}
