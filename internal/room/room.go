// Package room holds the authoritative state of a single two-player game.
//
// A Room is the only writer of its board and turn. Every mutating method runs
// under the room's mutex and hands the resulting events to both seated players
// before the lock is released, so both clients observe the same sequence.
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/tictactoe"
)

const maxPlayers = 2

type Config struct {
	Rules tictactoe.Rules
	// CoordinateLimit bounds |x| and |y| of a move. Zero disables the guard.
	CoordinateLimit int64
	// RequireReady makes both players send player_ready before the first move.
	RequireReady bool
}

func DefaultConfig() Config {
	return Config{
		Rules:           tictactoe.DefaultRules(),
		CoordinateLimit: 1_000_000_000,
	}
}

// Finish describes a terminal outcome that should be scored.
type Finish struct {
	Result     entity.Result
	WinnerName string
	LoserName  string
	// Players lists every player that took part, in seat order.
	Players []string
}

// Draw reports whether the finish credits both players with a draw.
func (that *Finish) Draw() bool {
	return that.Result == entity.ResultDraw
}

type MoveResult struct {
	Move     entity.Move
	Outcome  entity.Outcome
	NextTurn entity.Symbol
	// Finish is set when the move ended the game.
	Finish *Finish
}

type LeaveResult struct {
	// Abandoned is true when the leave ended the room for the remaining player.
	Abandoned bool
	// Finish is set when the abandonment happened mid-game and must be scored.
	Finish *Finish
	// Empty is true when nobody is connected to the room anymore.
	Empty bool
}

type Snapshot struct {
	ID        string
	Status    entity.Status
	Result    entity.Result
	Turn      entity.Symbol
	Winner    entity.Symbol
	Players   []entity.Player
	Board     entity.Board
	Moves     []entity.Move
	CreatedAt time.Time
}

type Room struct {
	id        string
	config    Config
	createdAt time.Time

	mu        sync.Mutex
	players   []*entity.Player
	board     entity.Board
	moves     []entity.Move
	turn      entity.Symbol
	status    entity.Status
	result    entity.Result
	winner    entity.Symbol
	abandoned bool
}

func New(id string, config Config, now time.Time) *Room {
	return &Room{
		id:        id,
		config:    config,
		createdAt: now,
		board:     entity.NewBoard(),
		turn:      entity.SymbolX,
		status:    entity.StatusWaiting,
	}
}

func (that *Room) ID() string {
	return that.id
}

// Joinable reports why a new player could not take a seat, or nil.
func (that *Room) Joinable() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.joinableLocked()
}

func (that *Room) joinableLocked() error {
	if len(that.players) >= maxPlayers {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.id)
	}

	if that.status != entity.StatusWaiting {
		return fmt.Errorf("%w: room %s is %s", apperror.ErrRoomNotActive, that.id, that.status)
	}

	return nil
}

// Join seats a player. requested may be SymbolNone to take whatever symbol is free.
func (that *Room) Join(name string, requested entity.Symbol, notifier entity.Notifier) (entity.Symbol, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.joinableLocked(); err != nil {
		return entity.SymbolNone, err
	}

	var opponent *entity.Player
	if len(that.players) == 1 {
		opponent = that.players[0]
	}

	if opponent != nil && opponent.Name == name {
		return entity.SymbolNone, fmt.Errorf("%w: %s", apperror.ErrNameTaken, name)
	}

	symbol := requested
	switch {
	case opponent != nil && requested == opponent.Symbol:
		return entity.SymbolNone, fmt.Errorf("%w: %s", apperror.ErrDuplicateSymbol, requested)
	case opponent != nil && !requested.Valid():
		symbol = opponent.Symbol.Opponent()
	case !requested.Valid():
		symbol = entity.SymbolX
	}

	player := entity.NewPlayer(name, symbol, notifier)
	player.Ready = !that.config.RequireReady
	that.players = append(that.players, player)

	started := that.startIfReadyLocked()

	player.Notify(entity.RoomJoined{RoomID: that.id, AssignedSymbol: symbol, Status: that.status})

	if opponent != nil {
		opponent.Notify(entity.OpponentJoined{OpponentName: player.Name, OpponentSymbol: player.Symbol})
		player.Notify(entity.OpponentJoined{OpponentName: opponent.Name, OpponentSymbol: opponent.Symbol})
	}

	if started {
		that.broadcastLocked(entity.GameStarted{RoomID: that.id, Status: that.status, NextTurnSymbol: that.turn})
	}

	return symbol, nil
}

// SetReady marks the player ready. Once both seated players are ready the game starts.
func (that *Room) SetReady(name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.activePlayerLocked(name)
	if err != nil {
		return err
	}

	switch that.status {
	case entity.StatusInProgress:
		return nil
	case entity.StatusFinished:
		return fmt.Errorf("%w: room %s", apperror.ErrRoomNotActive, that.id)
	}

	player.Ready = true

	if that.startIfReadyLocked() {
		that.broadcastLocked(entity.GameStarted{RoomID: that.id, Status: that.status, NextTurnSymbol: that.turn})
	}

	return nil
}

// SubmitMove validates and applies a move by the named player.
func (that *Room) SubmitMove(name string, coordinate entity.Coordinate) (MoveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.activePlayerLocked(name)
	if err != nil {
		return MoveResult{}, err
	}

	if err = that.confirmOngoingLocked(); err != nil {
		return MoveResult{}, err
	}

	if !that.withinLimit(coordinate) {
		return MoveResult{}, fmt.Errorf("%w: %s exceeds limit %d", apperror.ErrInvalidCoordinate, coordinate, that.config.CoordinateLimit)
	}

	if player.Symbol != that.turn {
		return MoveResult{}, apperror.ErrNotYourTurn
	}

	if err = tictactoe.Place(that.board, coordinate, player.Symbol); err != nil {
		return MoveResult{}, fmt.Errorf("invalid move: %w", err)
	}

	move := entity.Move{RoomID: that.id, PlayerName: player.Name, Coordinate: coordinate, Symbol: player.Symbol}
	that.moves = append(that.moves, move)

	result := MoveResult{
		Move:    move,
		Outcome: tictactoe.CheckOutcome(that.board, coordinate, player.Symbol, that.config.Rules),
	}

	switch result.Outcome {
	case entity.OutcomeWin:
		that.finishLocked(entity.ResultWin, player.Symbol)
		result.Finish = that.finishFor(entity.ResultWin, player)
	case entity.OutcomeDraw:
		that.finishLocked(entity.ResultDraw, entity.SymbolNone)
		result.Finish = that.finishFor(entity.ResultDraw, nil)
	default:
		that.turn = that.turn.Opponent()
		result.NextTurn = that.turn
	}

	that.broadcastLocked(entity.MoveAccepted{
		X:              coordinate.X,
		Y:              coordinate.Y,
		Symbol:         player.Symbol,
		NextTurnSymbol: result.NextTurn,
		Outcome:        result.Outcome,
	})

	if result.Finish != nil {
		that.broadcastLocked(entity.GameOver{Result: that.result, WinnerSymbol: that.winner})
	}

	return result, nil
}

// Leave removes the named player. Leaving a room with an opponent seated abandons it.
func (that *Room) Leave(name string) (LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	leaver := that.playerLocked(name)
	if leaver == nil {
		return LeaveResult{}, fmt.Errorf("%w: %s in room %s", apperror.ErrNotInRoom, name, that.id)
	}

	if leaver.Left {
		return LeaveResult{Empty: that.connectedLocked() == 0}, nil
	}

	wasStatus := that.status
	leaver.Detach()

	var result LeaveResult

	if wasStatus != entity.StatusFinished {
		remaining := that.opponentLocked(leaver)

		switch {
		case remaining == nil:
			that.finishLocked(entity.ResultAbandoned, entity.SymbolNone)
		case wasStatus == entity.StatusInProgress:
			that.abandoned = true
			that.finishLocked(entity.ResultAbandoned, remaining.Symbol)
			result.Abandoned = true
			result.Finish = &Finish{
				Result:     entity.ResultAbandoned,
				WinnerName: remaining.Name,
				LoserName:  leaver.Name,
				Players:    that.namesLocked(),
			}
		default:
			that.abandoned = true
			that.finishLocked(entity.ResultAbandoned, entity.SymbolNone)
			result.Abandoned = true
		}

		if remaining != nil {
			remaining.Notify(entity.GameOver{Result: entity.ResultAbandoned, WinnerSymbol: that.winner})
		}
	}

	result.Empty = that.connectedLocked() == 0

	return result, nil
}

// Expire closes a room that waited longer than timeout with a single player.
func (that *Room) Expire(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != entity.StatusWaiting || now.Sub(that.createdAt) < timeout {
		return false
	}

	if len(that.players) >= maxPlayers {
		return false
	}

	that.finishLocked(entity.ResultTimedOut, entity.SymbolNone)

	for _, player := range that.players {
		player.Notify(entity.RoomTimedOut{RoomID: that.id, Reason: apperror.ReasonRoomTimedOut})
		player.Detach()
	}

	return true
}

// Chat relays text from a seated player to everyone still connected.
func (that *Room) Chat(name, text string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.activePlayerLocked(name); err != nil {
		return err
	}

	that.broadcastLocked(entity.ChatRelay{SenderName: name, Text: text})

	return nil
}

// Broadcast sends event to every connected player.
func (that *Room) Broadcast(event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcastLocked(event)
}

// IsEmpty reports whether no player is connected to the room.
func (that *Room) IsEmpty() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.connectedLocked() == 0
}

func (that *Room) Status() entity.Status {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

// Snapshot returns a consistent copy of the room state.
func (that *Room) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	players := make([]entity.Player, 0, len(that.players))
	for _, player := range that.players {
		players = append(players, entity.Player{Name: player.Name, Symbol: player.Symbol, Ready: player.Ready, Left: player.Left})
	}

	return Snapshot{
		ID:        that.id,
		Status:    that.status,
		Result:    that.result,
		Turn:      that.turn,
		Winner:    that.winner,
		Players:   players,
		Board:     that.board.Clone(),
		Moves:     append([]entity.Move(nil), that.moves...),
		CreatedAt: that.createdAt,
	}
}

func (that *Room) startIfReadyLocked() bool {
	if that.status != entity.StatusWaiting || len(that.players) < maxPlayers {
		return false
	}

	for _, player := range that.players {
		if !player.Ready {
			return false
		}
	}

	that.status = entity.StatusInProgress
	that.turn = entity.SymbolX

	return true
}

func (that *Room) confirmOngoingLocked() error {
	switch that.status {
	case entity.StatusInProgress:
		return nil
	case entity.StatusWaiting:
		return fmt.Errorf("%w: room %s has not started", apperror.ErrRoomNotActive, that.id)
	default:
		return fmt.Errorf("%w: room %s is finished", apperror.ErrRoomNotActive, that.id)
	}
}

func (that *Room) finishLocked(result entity.Result, winner entity.Symbol) {
	that.status = entity.StatusFinished
	that.result = result
	that.winner = winner
	that.turn = entity.SymbolNone
}

func (that *Room) finishFor(result entity.Result, winner *entity.Player) *Finish {
	finish := &Finish{Result: result, Players: that.namesLocked()}

	if winner != nil {
		finish.WinnerName = winner.Name
		if loser := that.opponentLocked(winner); loser != nil {
			finish.LoserName = loser.Name
		}
	}

	return finish
}

// activePlayerLocked returns the seated, connected player or the reason they may not act.
func (that *Room) activePlayerLocked(name string) (*entity.Player, error) {
	player := that.playerLocked(name)
	if player == nil || player.Left {
		return nil, fmt.Errorf("%w: %s in room %s", apperror.ErrNotInRoom, name, that.id)
	}

	if that.abandoned {
		return nil, apperror.ErrOpponentLeft
	}

	return player, nil
}

func (that *Room) playerLocked(name string) *entity.Player {
	for _, player := range that.players {
		if player.Name == name {
			return player
		}
	}

	return nil
}

func (that *Room) opponentLocked(player *entity.Player) *entity.Player {
	for _, other := range that.players {
		if other != player {
			return other
		}
	}

	return nil
}

func (that *Room) namesLocked() []string {
	names := make([]string, 0, len(that.players))
	for _, player := range that.players {
		names = append(names, player.Name)
	}

	return names
}

func (that *Room) connectedLocked() int {
	connected := 0
	for _, player := range that.players {
		if !player.Left {
			connected++
		}
	}

	return connected
}

func (that *Room) broadcastLocked(event entity.Event) {
	for _, player := range that.players {
		player.Notify(event)
	}
}

func (that *Room) withinLimit(coordinate entity.Coordinate) bool {
	limit := that.config.CoordinateLimit
	if limit <= 0 {
		return true
	}

	return coordinate.X >= -limit && coordinate.X <= limit && coordinate.Y >= -limit && coordinate.Y <= limit
}
