package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/entity"
)

// NewState - zeroed tic-tac-toe state, member 0 moves first.
func NewState() *entity.GameState {
	return &entity.GameState{
		Variant:   entity.VariantTicTacToe,
		TurnIndex: 0,
		TicTacToe: &entity.TicTacToe{},
	}
}

// MakeTurn - validates and applies a mark, then checks for the end of the game.
// A non-nil outcome means the game has just ended.
func MakeTurn(state *entity.GameState, room *entity.Room, position int, mark string) (*entity.Outcome, error) {
	if !state.IsTicTacToe() {
		return nil, fmt.Errorf("%w: room plays %s", apperror.ErrWrongVariant, state.Variant)
	}

	if state.Ended {
		return nil, apperror.ErrGameEnded
	}

	if err := validateMove(state.TicTacToe, position, mark); err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	state.Board[position] = mark
	state.TurnIndex = (state.TurnIndex + 1) % entity.MaxMembers

	outcome := DetermineOutcome(state.TicTacToe, room)
	if outcome != nil {
		state.Ended = true
		state.Winner = outcome.Winner
		state.IsDraw = outcome.Result == entity.ResultDraw
	}

	return outcome, nil
}

// validateMove - checks if the move is valid.
func validateMove(board *entity.TicTacToe, position int, mark string) error {
	if position < 0 || position >= len(board.Board) {
		return fmt.Errorf("%w: position %d", apperror.ErrOutOfRange, position)
	}

	if mark != entity.MarkX && mark != entity.MarkO {
		return fmt.Errorf("%w: mark %q", apperror.ErrOutOfRange, mark)
	}

	if board.Board[position] != entity.EmptyCell {
		return fmt.Errorf("%w: position %d", apperror.ErrCellOccupied, position)
	}

	return nil
}

// DetermineOutcome - nil while the game continues.
func DetermineOutcome(board *entity.TicTacToe, room *entity.Room) *entity.Outcome {
	mark, isDraw := checkGameStatus(board.Board)

	if isDraw {
		return &entity.Outcome{Result: entity.ResultDraw}
	}

	if mark == entity.EmptyCell {
		return nil
	}

	outcome := &entity.Outcome{Result: entity.ResultWin, Symbol: mark}
	if winner, ok := room.MemberAt(markOwner(mark)); ok {
		outcome.Winner = winner.Name
	}

	return outcome
}

// markOwner - X belongs to the first member, O to the second.
func markOwner(mark string) int {
	if mark == entity.MarkX {
		return 0
	}
	return 1
}

func checkGameStatus(board entity.Board) (string, bool) {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a, false
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return entity.EmptyCell, false
		}
	}

	return entity.EmptyCell, true
}
