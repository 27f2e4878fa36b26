package usecase

import (
	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/room"
)

// Session is the per-connection state. Only the connection's reader goroutine uses it.
type Session struct {
	ID   string
	Name string

	room     *room.Room
	notifier entity.Notifier
}

func NewSession(notifier entity.Notifier) *Session {
	return &Session{
		ID:       uuid.NewString(),
		notifier: notifier,
	}
}

// RoomID returns the id of the room the session sits in, or "".
func (that *Session) RoomID() string {
	if that.room == nil {
		return ""
	}

	return that.room.ID()
}

// Notify sends an event to this session only.
func (that *Session) Notify(event entity.Event) {
	that.notifier.Notify(event)
}
