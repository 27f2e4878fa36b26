package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	ReadLimit    int64
}

func DefaultConfig() Config {
	return Config{
		SendBuffer:   64,
		WriteTimeout: 10 * time.Second,
		PongTimeout:  60 * time.Second,
		ReadLimit:    4096,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (that Config) withDefaults() Config {
	defaults := DefaultConfig()

	if that.SendBuffer <= 0 {
		that.SendBuffer = defaults.SendBuffer
	}

	if that.WriteTimeout <= 0 {
		that.WriteTimeout = defaults.WriteTimeout
	}

	if that.PongTimeout <= 0 {
		that.PongTimeout = defaults.PongTimeout
	}

	if that.ReadLimit <= 0 {
		that.ReadLimit = defaults.ReadLimit
	}

	return that
}

func (that Config) pingPeriod() time.Duration {
	return that.PongTimeout * 9 / 10
}

type gameManager interface {
	JoinRoom(ctx context.Context, session *usecase.Session, request usecase.JoinRequest) error
	PlayerReady(ctx context.Context, session *usecase.Session, roomID string) error
	MakeMove(ctx context.Context, session *usecase.Session, roomID string, coordinate entity.Coordinate) error
	Chat(ctx context.Context, session *usecase.Session, roomID, text string) error
	Leave(ctx context.Context, session *usecase.Session, roomID string) error
	Disconnect(ctx context.Context, session *usecase.Session)
}

type handlerFunc func(ctx context.Context, session *usecase.Session, message *Message) error

type Server struct {
	logger   *slog.Logger
	config   Config
	game     gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	connectionsMutex sync.Mutex
	connections      map[*client]struct{}
}

func New(logger *slog.Logger, config Config, game gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		config: config.withDefaults(),
		game:   game,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]handlerFunc),
		connections: make(map[*client]struct{}),
	}

	server.handlers[ActionJoinRoom] = server.handleJoinRoom
	server.handlers[ActionPlayerReady] = server.handlePlayerReady
	server.handlers[ActionMakeMove] = server.handleMakeMove
	server.handlers[ActionChat] = server.handleChat
	server.handlers[ActionLeave] = server.handleLeave

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWebSocket)

	return mux
}

// Start serves WebSocket connections on port until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown server", "error", err)
		}

		that.closeConnections()
	}()

	log.Info("websocket server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(that.config.ReadLimit)

	client := newClient(that.logger, conn, that.config)
	session := usecase.NewSession(client)
	client.logger = client.logger.With("session_id", session.ID)

	that.connectionsMutex.Lock()
	that.connections[client] = struct{}{}
	that.connectionsMutex.Unlock()

	go client.writePump()

	log.Info("websocket connection established", "session_id", session.ID, "remote", req.RemoteAddr)

	ctx := req.Context()

	defer func() {
		that.game.Disconnect(context.WithoutCancel(ctx), session)
		client.close()

		that.connectionsMutex.Lock()
		delete(that.connections, client)
		that.connectionsMutex.Unlock()

		log.Info("websocket connection closed", "session_id", session.ID)
	}()

	that.handleMessages(ctx, conn, client, session)
}

// handleMessages reads frames until the connection fails or is closed.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, client *client, session *usecase.Session) {
	log := that.logger.With("method", "handleMessages", "session_id", session.ID)

	extend := func() error {
		if err := conn.SetReadDeadline(time.Now().Add(that.config.PongTimeout)); err != nil {
			log.Debug("failed to extend read deadline", "error", err)
			return err
		}

		return nil
	}

	_ = extend()
	conn.SetPongHandler(func(string) error { return extend() })

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		_ = extend()

		if messageType != websocket.TextMessage {
			that.sendError(session, "", fmt.Errorf("%w: only text frames are accepted", apperror.ErrProtocol))
			continue
		}

		that.dispatch(ctx, session, data)

		select {
		case <-client.done:
			return
		default:
		}
	}
}

// dispatch routes one frame to its handler. A panicking handler only fails that request.
func (that *Server) dispatch(ctx context.Context, session *usecase.Session, data []byte) {
	log := that.logger.With("method", "dispatch", "session_id", session.ID)

	var message Message

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("handler panicked", "action", message.Action, "panic", recovered)
			that.sendError(session, message.Action, fmt.Errorf("panic: %v", recovered))
		}
	}()

	if err := json.Unmarshal(data, &message); err != nil {
		log.Info("malformed message", "error", err)
		that.sendError(session, "", fmt.Errorf("%w: malformed message: %v", apperror.ErrProtocol, err))
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Info("unknown action", "action", message.Action)
		that.sendError(session, message.Action, fmt.Errorf("%w: unknown action %q", apperror.ErrProtocol, message.Action))
		return
	}

	if err := handler(ctx, session, &message); err != nil {
		log.Info("request rejected", "action", message.Action, "error", err)
		that.sendError(session, message.Action, err)
	}
}

func (that *Server) closeConnections() {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for client := range that.connections {
		client.close()
	}
}
