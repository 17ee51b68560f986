package entity

import "encoding/json"

const (
	MarkX     = "X"
	MarkO     = "O"
	EmptyCell = ""

	BoardCells = 9
)

const (
	ResultWin  = "win"
	ResultTie  = "tie"
	ResultDraw = "draw"
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// GameState is the authoritative progress record of one room. Exactly one of the
// embedded variant boards is set, matching Variant; the embedding keeps the wire
// format flat.
type GameState struct {
	Variant   Variant `json:"gameType"`
	TurnIndex int     `json:"turnIndex"`
	Ended     bool    `json:"gameEnded"`

	*DotsBoxes
	*TicTacToe
}

type DotsBoxes struct {
	GridSize        int            `json:"gridSize"`
	HorizontalLines [][]bool       `json:"horizontalLines"`
	VerticalLines   [][]bool       `json:"verticalLines"`
	Boxes           [][]*int       `json:"boxes"`
	Scores          map[string]int `json:"scores"`
}

// Board - tic-tac-toe cells, empty cells go out as null.
type Board [BoardCells]string

func (that Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, len(that))
	for i := range that {
		if that[i] != EmptyCell {
			cells[i] = &that[i]
		}
	}
	return json.Marshal(cells)
}

type TicTacToe struct {
	Board  Board  `json:"board"`
	Winner string `json:"winner"`
	IsDraw bool   `json:"isDraw"`
}

// Outcome describes how a game ended.
type Outcome struct {
	Result string         `json:"result"`
	Winner string         `json:"winner,omitempty"`
	Symbol string         `json:"symbol,omitempty"`
	Scores map[string]int `json:"scores,omitempty"`
}

func (that *GameState) IsDotsBoxes() bool {
	return that.Variant == VariantDotsBoxes && that.DotsBoxes != nil
}

func (that *GameState) IsTicTacToe() bool {
	return that.Variant == VariantTicTacToe && that.TicTacToe != nil
}

// ClaimedBoxes - number of boxes that have an owner.
func (that *DotsBoxes) ClaimedBoxes() int {
	claimed := 0
	for _, row := range that.Boxes {
		for _, owner := range row {
			if owner != nil {
				claimed++
			}
		}
	}
	return claimed
}

// Clone - deep copy, safe to hand out of the room lock.
func (that *GameState) Clone() *GameState {
	clone := &GameState{
		Variant:   that.Variant,
		TurnIndex: that.TurnIndex,
		Ended:     that.Ended,
	}

	if that.DotsBoxes != nil {
		clone.DotsBoxes = that.DotsBoxes.Clone()
	}

	if that.TicTacToe != nil {
		board := *that.TicTacToe
		clone.TicTacToe = &board
	}

	return clone
}

func (that *DotsBoxes) Clone() *DotsBoxes {
	clone := &DotsBoxes{
		GridSize:        that.GridSize,
		HorizontalLines: cloneLines(that.HorizontalLines),
		VerticalLines:   cloneLines(that.VerticalLines),
		Boxes:           make([][]*int, len(that.Boxes)),
		Scores:          make(map[string]int, len(that.Scores)),
	}

	for i, row := range that.Boxes {
		clone.Boxes[i] = make([]*int, len(row))
		for j, owner := range row {
			if owner != nil {
				value := *owner
				clone.Boxes[i][j] = &value
			}
		}
	}

	for name, score := range that.Scores {
		clone.Scores[name] = score
	}

	return clone
}

func cloneLines(lines [][]bool) [][]bool {
	clone := make([][]bool, len(lines))
	for i, row := range lines {
		clone[i] = append([]bool(nil), row...)
	}
	return clone
}
