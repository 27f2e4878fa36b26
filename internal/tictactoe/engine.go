// Package tictactoe holds the stateless rules of N-in-a-row on an unbounded board.
package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-infinite/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-infinite/internal/entity"
)

const DefaultRunLength = 5

// axes are the four lines through a cell; each is walked in both directions.
var axes = [4][2]int64{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

// Rules configure win and draw detection.
type Rules struct {
	// RunLength is the number of contiguous cells needed to win.
	RunLength int
	// ExactRun makes runs longer than RunLength not count (gomoku overline rule).
	ExactRun bool
	// MaxMoves ends the game in a draw once that many cells are occupied. Zero disables draws.
	MaxMoves int
}

func DefaultRules() Rules {
	return Rules{RunLength: DefaultRunLength}
}

func (that Rules) runLength() int {
	if that.RunLength <= 0 {
		return DefaultRunLength
	}

	return that.RunLength
}

// Place puts symbol on coordinate. An occupied cell is never overwritten.
func Place(board entity.Board, coordinate entity.Coordinate, symbol entity.Symbol) error {
	if _, ok := board[coordinate]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrOccupiedCell, coordinate)
	}

	board[coordinate] = symbol

	return nil
}

// CheckOutcome evaluates the board after symbol was placed at last.
func CheckOutcome(board entity.Board, last entity.Coordinate, symbol entity.Symbol, rules Rules) entity.Outcome {
	if !symbol.Valid() || board[last] != symbol {
		return entity.OutcomeContinue
	}

	runLength := rules.runLength()

	for _, axis := range axes {
		count := 1 + countRun(board, last, symbol, axis[0], axis[1]) + countRun(board, last, symbol, -axis[0], -axis[1])

		if count == runLength || (count > runLength && !rules.ExactRun) {
			return entity.OutcomeWin
		}
	}

	if rules.MaxMoves > 0 && len(board) >= rules.MaxMoves {
		return entity.OutcomeDraw
	}

	return entity.OutcomeContinue
}

// countRun counts contiguous cells holding symbol starting next to from, walking (dx, dy).
func countRun(board entity.Board, from entity.Coordinate, symbol entity.Symbol, dx, dy int64) int {
	count := 0

	for step := int64(1); ; step++ {
		if board[from.Shift(dx, dy, step)] != symbol {
			return count
		}

		count++
	}
}
