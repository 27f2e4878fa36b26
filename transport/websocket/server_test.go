package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/repository"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/room"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-infinite/testing/suite"
)

const readTimeout = 2 * time.Second

type testServer struct {
	url         string
	server      *Server
	leaderboard repository.LeaderboardRepository
	rooms       repository.RoomRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	return newTestServerWithConfig(t, DefaultConfig())
}

func newTestServerWithConfig(t *testing.T, config Config) *testServer {
	t.Helper()

	logger := suite.NewLogger()
	rooms := repository.NewRoomRepository(logger, room.DefaultConfig(), 0)
	leaderboard := repository.NewMemoryLeaderboard()
	manager := usecase.NewGameManager(logger, usecase.Config{}, rooms, leaderboard)
	server := New(logger, config, manager)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testServer{
		url:         "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		server:      server,
		leaderboard: leaderboard,
		rooms:       rooms,
	}
}

// clients returns the server side of every open connection.
func (that *testServer) clients() map[*client]struct{} {
	that.server.connectionsMutex.Lock()
	defer that.server.connectionsMutex.Unlock()

	clients := make(map[*client]struct{}, len(that.server.connections))
	for c := range that.server.connections {
		clients[c] = struct{}{}
	}

	return clients
}

func isClosed(c *client) bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (that *testServer) dial(t *testing.T) *testClient {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(that.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testClient{t: t, conn: conn}
}

func (that *testClient) send(action string, payload any) {
	that.t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(that.t, err)

	that.sendRaw(`{"action":"` + action + `","payload":` + string(data) + `}`)
}

func (that *testClient) sendRaw(frame string) {
	that.t.Helper()

	require.NoError(that.t, that.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// expect reads the next message, checks its action and decodes its payload into target.
func (that *testClient) expect(action string, target any) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var message Message
	require.NoError(that.t, that.conn.ReadJSON(&message))
	require.Equal(that.t, action, message.Action, "payload: %s", message.Payload)

	if target != nil {
		require.NoError(that.t, json.Unmarshal(message.Payload, target))
	}
}

func (that *testClient) join(roomID, name string) entity.RoomJoined {
	that.t.Helper()

	that.send(ActionJoinRoom, JoinRoomPayload{RoomID: roomID, PlayerName: name})

	var joined entity.RoomJoined
	that.expect(entity.ActionRoomJoined, &joined)

	return joined
}

func (that *testClient) move(x, y int64) {
	that.t.Helper()

	rawX := json.Number(strconv.FormatInt(x, 10))
	rawY := json.Number(strconv.FormatInt(y, 10))

	that.send(ActionMakeMove, MakeMovePayload{X: &rawX, Y: &rawY})
}

// startGame connects alice (X) and bob (O) in one room and drains the join notifications.
func startGame(t *testing.T, server *testServer) (*testClient, *testClient) {
	t.Helper()

	alice := server.dial(t)
	joined := alice.join("", "alice")

	bob := server.dial(t)
	bob.join(joined.RoomID, "bob")

	alice.expect(entity.ActionOpponentJoined, nil)
	alice.expect(entity.ActionGameStarted, nil)
	bob.expect(entity.ActionOpponentJoined, nil)
	bob.expect(entity.ActionGameStarted, nil)

	return alice, bob
}

// play has both clients observe one accepted move.
func play(t *testing.T, mover *testClient, other *testClient, x, y int64) entity.MoveAccepted {
	t.Helper()

	mover.move(x, y)

	var accepted entity.MoveAccepted
	mover.expect(entity.ActionMoveAccepted, &accepted)

	var mirrored entity.MoveAccepted
	other.expect(entity.ActionMoveAccepted, &mirrored)
	require.Equal(t, accepted, mirrored)

	return accepted
}

func TestServer_JoinAndStart(t *testing.T) {
	server := newTestServer(t)

	// Given: alice creates a room
	alice := server.dial(t)
	joined := alice.join("", "alice")

	// Then: she waits as X
	assert.Equal(t, entity.RoomJoined{RoomID: "1", AssignedSymbol: entity.SymbolX, Status: entity.StatusWaiting}, joined)

	// When: bob joins the same room
	bob := server.dial(t)
	bobJoined := bob.join("1", "bob")

	// Then: bob gets O and both see each other and the start
	assert.Equal(t, entity.SymbolO, bobJoined.AssignedSymbol)

	var opponent entity.OpponentJoined
	alice.expect(entity.ActionOpponentJoined, &opponent)
	assert.Equal(t, entity.OpponentJoined{OpponentName: "bob", OpponentSymbol: entity.SymbolO}, opponent)

	bob.expect(entity.ActionOpponentJoined, &opponent)
	assert.Equal(t, entity.OpponentJoined{OpponentName: "alice", OpponentSymbol: entity.SymbolX}, opponent)

	var started entity.GameStarted
	alice.expect(entity.ActionGameStarted, &started)
	assert.Equal(t, entity.GameStarted{RoomID: "1", Status: entity.StatusInProgress, NextTurnSymbol: entity.SymbolX}, started)
	bob.expect(entity.ActionGameStarted, &started)
}

func TestServer_MakeMove(t *testing.T) {
	t.Run("Rejected moves go to the issuer only", func(t *testing.T) {
		// Given: X holds (0,0)
		server := newTestServer(t)
		alice, bob := startGame(t, server)
		play(t, alice, bob, 0, 0)

		// When: O plays the occupied cell
		bob.move(0, 0)

		// Then: O is told why and can still move
		var rejected entity.MoveRejected
		bob.expect(entity.ActionMoveRejected, &rejected)
		assert.Equal(t, entity.MoveRejected{Reason: apperror.ReasonOccupiedCell, X: "0", Y: "0"}, rejected)

		// When: X tries to move out of turn
		alice.move(3, 3)
		alice.expect(entity.ActionMoveRejected, &rejected)
		assert.Equal(t, apperror.ReasonNotYourTurn, rejected.Reason)

		// Then: the next thing each side sees is O's legal move
		accepted := play(t, bob, alice, 1, 1)
		assert.Equal(t, entity.SymbolO, accepted.Symbol)
		assert.Equal(t, entity.SymbolX, accepted.NextTurnSymbol)
	})

	t.Run("Non-integer coordinates are rejected as invalid moves", func(t *testing.T) {
		// Given: a game where X is to move
		server := newTestServer(t)
		alice, bob := startGame(t, server)

		cases := []struct {
			frame string
			x     json.Number
			y     json.Number
		}{
			{frame: `{"action":"make_move","payload":{"x":1.5,"y":0}}`, x: "1.5", y: "0"},
			{frame: `{"action":"make_move","payload":{"x":0,"y":-2.25}}`, x: "0", y: "-2.25"},
			{frame: `{"action":"make_move","payload":{"x":1e30,"y":0}}`, x: "1e30", y: "0"},
			{frame: `{"action":"make_move","payload":{"x":99999999999999999999,"y":0}}`, x: "99999999999999999999", y: "0"},
		}

		for _, tc := range cases {
			// When: X sends a coordinate that is not a whole int64
			alice.sendRaw(tc.frame)

			// Then: the move is rejected with the raw values echoed back
			var rejected entity.MoveRejected
			alice.expect(entity.ActionMoveRejected, &rejected)
			assert.Equal(t, entity.MoveRejected{Reason: apperror.ReasonInvalidCoordinate, X: tc.x, Y: tc.y}, rejected)
		}

		// And: the turn is still X's
		accepted := play(t, alice, bob, 0, 0)
		assert.Equal(t, entity.SymbolX, accepted.Symbol)
	})

	t.Run("Five in a row wins and updates the leaderboard", func(t *testing.T) {
		server := newTestServer(t)
		alice, bob := startGame(t, server)

		for x := int64(0); x < 4; x++ {
			play(t, alice, bob, x, x)
			play(t, bob, alice, x, -10)
		}

		// When: X completes the diagonal
		accepted := play(t, alice, bob, 4, 4)

		// Then: both see the win and the new standings
		assert.Equal(t, entity.OutcomeWin, accepted.Outcome)

		for _, client := range []*testClient{alice, bob} {
			var over entity.GameOver
			client.expect(entity.ActionGameOver, &over)
			assert.Equal(t, entity.GameOver{Result: entity.ResultWin, WinnerSymbol: entity.SymbolX}, over)

			var update entity.LeaderboardUpdate
			client.expect(entity.ActionLeaderboardUpdate, &update)
			assert.ElementsMatch(t, []*entity.LeaderboardEntry{
				{Name: "alice", Wins: 1},
				{Name: "bob", Losses: 1},
			}, update.Entries)
		}

		// And: the room is closed for further moves
		bob.move(9, 9)
		var rejected entity.MoveRejected
		bob.expect(entity.ActionMoveRejected, &rejected)
		assert.Equal(t, apperror.ReasonRoomNotActive, rejected.Reason)
	})
}

func TestServer_Disconnect(t *testing.T) {
	// Given: a game in progress
	server := newTestServer(t)
	alice, bob := startGame(t, server)
	play(t, alice, bob, 0, 0)

	// When: bob's connection drops
	require.NoError(t, bob.conn.Close())

	// Then: alice wins by abandonment
	var over entity.GameOver
	alice.expect(entity.ActionGameOver, &over)
	assert.Equal(t, entity.GameOver{Result: entity.ResultAbandoned, WinnerSymbol: entity.SymbolX}, over)
	alice.expect(entity.ActionLeaderboardUpdate, nil)

	// And: her next move is rejected because the opponent left
	alice.move(1, 0)
	var rejected entity.MoveRejected
	alice.expect(entity.ActionMoveRejected, &rejected)
	assert.Equal(t, apperror.ReasonOpponentLeft, rejected.Reason)

	entry, err := server.leaderboard.GetEntry(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Losses)
}

func TestServer_ProtocolErrors(t *testing.T) {
	server := newTestServer(t)
	client := server.dial(t)

	cases := []struct {
		name   string
		frame  string
		action string
		reason string
	}{
		{name: "malformed json", frame: `{"action":`, reason: apperror.ReasonProtocol},
		{name: "unknown action", frame: `{"action":"fly"}`, action: "fly", reason: apperror.ReasonProtocol},
		{name: "missing payload", frame: `{"action":"join_room"}`, action: ActionJoinRoom, reason: apperror.ReasonProtocol},
		{name: "bad symbol", frame: `{"action":"join_room","payload":{"player_name":"a","requested_symbol":"Z"}}`, action: ActionJoinRoom, reason: apperror.ReasonProtocol},
		{name: "unknown room", frame: `{"action":"join_room","payload":{"room_id":"77","player_name":"a"}}`, action: ActionJoinRoom, reason: apperror.ReasonRoomNotFound},
		{name: "move without coordinates", frame: `{"action":"make_move","payload":{"x":1}}`, action: ActionMakeMove, reason: apperror.ReasonProtocol},
		{name: "move with null coordinate", frame: `{"action":"make_move","payload":{"x":1,"y":null}}`, action: ActionMakeMove, reason: apperror.ReasonProtocol},
		{name: "move with text coordinate", frame: `{"action":"make_move","payload":{"x":"left","y":0}}`, action: ActionMakeMove, reason: apperror.ReasonProtocol},
		{name: "chat outside a room", frame: `{"action":"chat","payload":{"text":"hi"}}`, action: ActionChat, reason: apperror.ReasonNotInRoom},
		{name: "leave outside a room", frame: `{"action":"leave"}`, action: ActionLeave, reason: apperror.ReasonNotInRoom},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// When: a bad request is sent
			client.sendRaw(tc.frame)

			// Then: an error comes back and the connection stays usable
			var errorEvent entity.ErrorEvent
			client.expect(entity.ActionError, &errorEvent)
			assert.Equal(t, tc.action, errorEvent.RequestAction)
			assert.Equal(t, tc.reason, errorEvent.Reason)
		})
	}

	joined := client.join("", "survivor")
	assert.Equal(t, entity.StatusWaiting, joined.Status)
}

func TestServer_ChatAndLeave(t *testing.T) {
	server := newTestServer(t)
	alice, bob := startGame(t, server)

	// When: alice chats
	alice.send(ActionChat, ChatPayload{Text: " gl hf "})

	// Then: both receive the trimmed text
	for _, client := range []*testClient{alice, bob} {
		var relay entity.ChatRelay
		client.expect(entity.ActionChatRelay, &relay)
		assert.Equal(t, entity.ChatRelay{SenderName: "alice", Text: "gl hf"}, relay)
	}

	// When: alice leaves explicitly
	alice.send(ActionLeave, RoomPayload{RoomID: "1"})

	// Then: bob is told the room was abandoned
	var over entity.GameOver
	bob.expect(entity.ActionGameOver, &over)
	assert.Equal(t, entity.ResultAbandoned, over.Result)
	assert.Equal(t, entity.SymbolO, over.WinnerSymbol)
}

func TestConfig_WithDefaults(t *testing.T) {
	// Given: a config with only the send buffer set
	conf := Config{SendBuffer: 8}.withDefaults()

	// Then: the rest comes from DefaultConfig
	defaults := DefaultConfig()
	assert.Equal(t, 8, conf.SendBuffer)
	assert.Equal(t, defaults.WriteTimeout, conf.WriteTimeout)
	assert.Equal(t, defaults.PongTimeout, conf.PongTimeout)
	assert.Equal(t, defaults.ReadLimit, conf.ReadLimit)
	assert.Less(t, conf.pingPeriod(), conf.PongTimeout)
}

func TestServer_SlowConsumer(t *testing.T) {
	// Given: connections that queue a single message and give up on stuck writes quickly
	server := newTestServerWithConfig(t, Config{SendBuffer: 1, WriteTimeout: 200 * time.Millisecond})

	alice := server.dial(t)
	joined := alice.join("", "alice")
	before := server.clients()

	bob := server.dial(t)
	bob.join(joined.RoomID, "bob")

	var bobClient *client
	for c := range server.clients() {
		if _, ok := before[c]; !ok {
			bobClient = c
		}
	}
	require.NotNil(t, bobClient)

	alice.expect(entity.ActionOpponentJoined, nil)
	alice.expect(entity.ActionGameStarted, nil)
	bob.expect(entity.ActionOpponentJoined, nil)
	bob.expect(entity.ActionGameStarted, nil)

	// When: bob stops reading while events keep coming
	flood := entity.ChatRelay{SenderName: "alice", Text: strings.Repeat("x", 64*1024)}
	for i := 0; i < 4096 && !isClosed(bobClient); i++ {
		bobClient.Notify(flood)
	}

	// Then: bob's connection is dropped and the game is abandoned in alice's favour
	require.True(t, isClosed(bobClient))

	var over entity.GameOver
	alice.expect(entity.ActionGameOver, &over)
	assert.Equal(t, entity.GameOver{Result: entity.ResultAbandoned, WinnerSymbol: entity.SymbolX}, over)
	alice.expect(entity.ActionLeaderboardUpdate, nil)

	entry, err := server.leaderboard.GetEntry(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Losses)
}

func TestServer_Start(t *testing.T) {
	// Given: a server listening on a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)
	require.NoError(t, listener.Close())

	logger := suite.NewLogger()
	rooms := repository.NewRoomRepository(logger, room.DefaultConfig(), 0)
	manager := usecase.NewGameManager(logger, usecase.Config{}, rooms, repository.NewMemoryLeaderboard())
	server := New(logger, DefaultConfig(), manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan error, 1)
	go func() {
		stopped <- server.Start(ctx, port)
	}()

	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		dialed, _, dialErr := websocket.DefaultDialer.Dial("ws://127.0.0.1:"+port+"/ws", nil)
		if dialErr != nil {
			return false
		}

		conn = dialed
		return true
	}, readTimeout, 20*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })

	player := &testClient{t: t, conn: conn}
	player.join("", "alice")

	// When: the server context is cancelled
	cancel()

	// Then: the live connection receives a normal close frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)

	// And: Start returns without error
	select {
	case err = <-stopped:
		require.NoError(t, err)
	case <-time.After(readTimeout):
		t.Fatal("server did not stop")
	}
}
