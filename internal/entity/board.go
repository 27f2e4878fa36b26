package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
)

// Symbol is the mark a player places on the board.
type Symbol uint8

const (
	SymbolNone Symbol = iota
	SymbolX
	SymbolO
)

func (that Symbol) String() string {
	switch that {
	case SymbolX:
		return "X"
	case SymbolO:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other symbol. SymbolNone has no opponent.
func (that Symbol) Opponent() Symbol {
	switch that {
	case SymbolX:
		return SymbolO
	case SymbolO:
		return SymbolX
	default:
		return SymbolNone
	}
}

func (that Symbol) Valid() bool {
	return that == SymbolX || that == SymbolO
}

func (that Symbol) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Symbol) UnmarshalText(text []byte) error {
	symbol, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}

	*that = symbol

	return nil
}

// ParseSymbol accepts "X", "O" (any case) and the empty string for SymbolNone.
func ParseSymbol(value string) (Symbol, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "":
		return SymbolNone, nil
	case "X":
		return SymbolX, nil
	case "O":
		return SymbolO, nil
	default:
		return SymbolNone, fmt.Errorf("%w: unknown symbol %q", apperror.ErrProtocol, value)
	}
}

// Coordinate is a cell position on the unbounded board.
type Coordinate struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func (that Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", that.X, that.Y)
}

// Shift returns the coordinate moved by steps along the direction (dx, dy).
func (that Coordinate) Shift(dx, dy, steps int64) Coordinate {
	return Coordinate{X: that.X + dx*steps, Y: that.Y + dy*steps}
}

// Board stores only occupied cells.
type Board map[Coordinate]Symbol

func NewBoard() Board {
	return make(Board)
}

// Clone returns an independent copy of the board.
func (that Board) Clone() Board {
	clone := make(Board, len(that))
	for coordinate, symbol := range that {
		clone[coordinate] = symbol
	}

	return clone
}

// Move is an accepted placement. It is never mutated once recorded.
type Move struct {
	RoomID     string     `json:"room_id"`
	PlayerName string     `json:"player_name"`
	Coordinate Coordinate `json:"coordinate"`
	Symbol     Symbol     `json:"symbol"`
}
