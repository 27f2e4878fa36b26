package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

// client owns the write side of one connection. Notify never blocks; writePump drains the queue.
type client struct {
	logger *slog.Logger
	conn   *websocket.Conn
	config Config

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn, config Config) *client {
	return &client{
		logger: logger,
		conn:   conn,
		config: config,
		send:   make(chan []byte, config.SendBuffer),
		done:   make(chan struct{}),
	}
}

// Notify queues an event. A client that cannot keep up is disconnected.
func (that *client) Notify(event entity.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		that.logger.Error("failed to encode event", "action", event.Action(), "error", err)
		return
	}

	select {
	case <-that.done:
		return
	default:
	}

	select {
	case that.send <- data:
	default:
		that.logger.Warn("send buffer full, dropping connection", "action", event.Action())
		that.close()
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(that.config.pingPeriod())

	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			deadline := time.Now().Add(that.config.WriteTimeout)
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := that.conn.WriteControl(websocket.CloseMessage, closeMessage, deadline); err != nil {
				that.logger.Debug("failed to write close frame", "error", err)
			}
			return
		case data := <-that.send:
			that.extendWriteDeadline()
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				that.close()
				return
			}
		case <-ticker.C:
			that.extendWriteDeadline()
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				that.logger.Debug("failed to write ping", "error", err)
				that.close()
				return
			}
		}
	}
}

func (that *client) extendWriteDeadline() {
	if err := that.conn.SetWriteDeadline(time.Now().Add(that.config.WriteTimeout)); err != nil {
		that.logger.Debug("failed to set write deadline", "error", err)
	}
}
