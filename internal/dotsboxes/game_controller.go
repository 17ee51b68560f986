package dotsboxes

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/entity"
)

// Snapshot is the post-move board a mover's client submits. Box completion and
// scoring are computed client-side; the server only checks that the snapshot is
// a legal successor of the stored one.
type Snapshot struct {
	Move            json.RawMessage `json:"move,omitempty"`
	TurnIndex       int             `json:"newTurnIndex"`
	Scores          map[string]int  `json:"scores"`
	HorizontalLines [][]bool        `json:"horizontalLines"`
	VerticalLines   [][]bool        `json:"verticalLines"`
	Boxes           [][]*int        `json:"boxes"`
}

// NewState - empty grid of the given size with a zero score for every member.
func NewState(gridSize int, members []entity.Member) *entity.GameState {
	board := &entity.DotsBoxes{
		GridSize:        gridSize,
		HorizontalLines: newLines(gridSize+1, gridSize),
		VerticalLines:   newLines(gridSize, gridSize+1),
		Boxes:           make([][]*int, gridSize),
		Scores:          make(map[string]int, len(members)),
	}

	for i := range board.Boxes {
		board.Boxes[i] = make([]*int, gridSize)
	}

	for _, member := range members {
		board.Scores[member.Name] = 0
	}

	return &entity.GameState{
		Variant:   entity.VariantDotsBoxes,
		TurnIndex: 0,
		DotsBoxes: board,
	}
}

func newLines(rows, cols int) [][]bool {
	lines := make([][]bool, rows)
	for i := range lines {
		lines[i] = make([]bool, cols)
	}
	return lines
}

// ApplySnapshot - replaces the stored board with the submitted one.
// A non-nil outcome means the game has just ended.
func ApplySnapshot(state *entity.GameState, room *entity.Room, snapshot *Snapshot) (*entity.Outcome, error) {
	if !state.IsDotsBoxes() {
		return nil, fmt.Errorf("%w: room plays %s", apperror.ErrWrongVariant, state.Variant)
	}

	if state.Ended {
		return nil, apperror.ErrGameEnded
	}

	if err := validateSnapshot(state.DotsBoxes, snapshot); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	next := (&entity.DotsBoxes{
		GridSize:        state.GridSize,
		HorizontalLines: snapshot.HorizontalLines,
		VerticalLines:   snapshot.VerticalLines,
		Boxes:           snapshot.Boxes,
		Scores:          snapshot.Scores,
	}).Clone()

	state.DotsBoxes = next
	state.TurnIndex = snapshot.TurnIndex

	outcome := DetermineOutcome(state.DotsBoxes, room)
	if outcome != nil {
		state.Ended = true
	}

	return outcome, nil
}

func validateSnapshot(current *entity.DotsBoxes, snapshot *Snapshot) error {
	size := current.GridSize

	if snapshot.TurnIndex < 0 || snapshot.TurnIndex >= entity.MaxMembers {
		return fmt.Errorf("%w: turn index %d", apperror.ErrOutOfRange, snapshot.TurnIndex)
	}

	if err := checkShape("horizontal lines", snapshot.HorizontalLines, size+1, size); err != nil {
		return err
	}

	if err := checkShape("vertical lines", snapshot.VerticalLines, size, size+1); err != nil {
		return err
	}

	if len(snapshot.Boxes) != size {
		return fmt.Errorf("%w: boxes has %d rows, want %d", apperror.ErrOutOfRange, len(snapshot.Boxes), size)
	}

	for name, score := range snapshot.Scores {
		if score < 0 {
			return fmt.Errorf("%w: negative score for %s", apperror.ErrOutOfRange, name)
		}
	}

	for i := range current.HorizontalLines {
		for j, claimed := range current.HorizontalLines[i] {
			if claimed && !snapshot.HorizontalLines[i][j] {
				return fmt.Errorf("%w: horizontal line %d,%d cleared", apperror.ErrCellOccupied, i, j)
			}
		}
	}

	for i := range current.VerticalLines {
		for j, claimed := range current.VerticalLines[i] {
			if claimed && !snapshot.VerticalLines[i][j] {
				return fmt.Errorf("%w: vertical line %d,%d cleared", apperror.ErrCellOccupied, i, j)
			}
		}
	}

	for i, row := range snapshot.Boxes {
		if len(row) != size {
			return fmt.Errorf("%w: boxes row %d has %d cells, want %d", apperror.ErrOutOfRange, i, len(row), size)
		}

		for j, owner := range row {
			if err := checkBox(current, snapshot, i, j, owner); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkBox - a box keeps its owner once set and can only be owned when all four sides are drawn.
func checkBox(current *entity.DotsBoxes, snapshot *Snapshot, i, j int, owner *int) error {
	previous := current.Boxes[i][j]

	if previous != nil && (owner == nil || *owner != *previous) {
		return fmt.Errorf("%w: box %d,%d already owned", apperror.ErrCellOccupied, i, j)
	}

	if owner == nil {
		return nil
	}

	if *owner < 0 || *owner >= entity.MaxMembers {
		return fmt.Errorf("%w: box %d,%d owner %d", apperror.ErrOutOfRange, i, j, *owner)
	}

	closed := snapshot.HorizontalLines[i][j] && snapshot.HorizontalLines[i+1][j] &&
		snapshot.VerticalLines[i][j] && snapshot.VerticalLines[i][j+1]
	if !closed {
		return fmt.Errorf("%w: box %d,%d is not closed", apperror.ErrOutOfRange, i, j)
	}

	return nil
}

func checkShape(name string, lines [][]bool, rows, cols int) error {
	if len(lines) != rows {
		return fmt.Errorf("%w: %s has %d rows, want %d", apperror.ErrOutOfRange, name, len(lines), rows)
	}

	for i, row := range lines {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d has %d cells, want %d", apperror.ErrOutOfRange, name, i, len(row), cols)
		}
	}

	return nil
}

// DetermineOutcome - nil until every box is owned. Equal scores are a tie.
func DetermineOutcome(board *entity.DotsBoxes, room *entity.Room) *entity.Outcome {
	if board.ClaimedBoxes() < board.GridSize*board.GridSize {
		return nil
	}

	scores := make(map[string]int, len(board.Scores))
	for name, score := range board.Scores {
		scores[name] = score
	}

	first, ok := room.MemberAt(0)
	if !ok {
		return &entity.Outcome{Result: entity.ResultTie, Scores: scores}
	}

	second, ok := room.MemberAt(1)
	if !ok {
		return &entity.Outcome{Result: entity.ResultWin, Winner: first.Name, Scores: scores}
	}

	switch a, b := scores[first.Name], scores[second.Name]; {
	case a > b:
		return &entity.Outcome{Result: entity.ResultWin, Winner: first.Name, Scores: scores}
	case b > a:
		return &entity.Outcome{Result: entity.ResultWin, Winner: second.Name, Scores: scores}
	default:
		return &entity.Outcome{Result: entity.ResultTie, Scores: scores}
	}
}
