package entity

// Notifier delivers outbound events to one connected client. Notify must not block.
type Notifier interface {
	Notify(event Event)
}

type Player struct {
	Name   string `json:"name"`
	Symbol Symbol `json:"symbol"`
	Ready  bool   `json:"ready"`
	Left   bool   `json:"left,omitempty"`

	notifier Notifier
}

func NewPlayer(name string, symbol Symbol, notifier Notifier) *Player {
	return &Player{
		Name:     name,
		Symbol:   symbol,
		notifier: notifier,
	}
}

// Notify sends the event to the player unless they have left.
func (that *Player) Notify(event Event) {
	if that.Left || that.notifier == nil {
		return
	}

	that.notifier.Notify(event)
}

// Detach marks the player as gone; no further events are delivered.
func (that *Player) Detach() {
	that.Left = true
	that.notifier = nil
}
