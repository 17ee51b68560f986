package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	t.Run("Empty game type defaults to dots-boxes", func(t *testing.T) {
		variant, err := ParseVariant("")

		require.NoError(t, err)
		assert.Equal(t, VariantDotsBoxes, variant)
	})

	t.Run("Game type is case insensitive", func(t *testing.T) {
		variant, err := ParseVariant(" Tic-Tac-Toe ")

		require.NoError(t, err)
		assert.Equal(t, VariantTicTacToe, variant)
	})

	t.Run("Unknown game type is rejected", func(t *testing.T) {
		_, err := ParseVariant("chess")

		assert.ErrorIs(t, err, apperror.ErrUnknownVariant)
	})
}

func TestRoom_AddMember(t *testing.T) {
	t.Run("Members keep join order", func(t *testing.T) {
		// Given: a new room
		room := NewRoom("ABC", VariantDotsBoxes, 3)

		// When: two members join
		require.NoError(t, room.AddMember(Member{ID: "c1", Name: "alice"}))
		require.NoError(t, room.AddMember(Member{ID: "c2", Name: "bob"}))

		// Then: they are stored in join order and the room is full
		assert.Equal(t, []string{"alice", "bob"}, room.MemberNames())
		assert.True(t, room.IsFull())
	})

	t.Run("Third member is rejected with ErrRoomFull", func(t *testing.T) {
		// Given: a full room
		room := NewRoom("abc", VariantDotsBoxes, 3)
		require.NoError(t, room.AddMember(Member{ID: "c1", Name: "alice"}))
		require.NoError(t, room.AddMember(Member{ID: "c2", Name: "bob"}))

		// When: a third member tries to join
		err := room.AddMember(Member{ID: "c3", Name: "carol"})

		// Then: the join is rejected and members are unchanged
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Members, MaxMembers)
	})

	t.Run("Duplicate name is rejected with ErrDuplicateName", func(t *testing.T) {
		// Given: a room with alice
		room := NewRoom("abc", VariantTicTacToe, 0)
		require.NoError(t, room.AddMember(Member{ID: "c1", Name: "alice"}))

		// When: alice joins again from another connection
		err := room.AddMember(Member{ID: "c2", Name: "alice"})

		// Then: the join is rejected
		require.ErrorIs(t, err, apperror.ErrDuplicateName)
		assert.Len(t, room.Members, 1)
	})
}

func TestRoom_RemoveMember(t *testing.T) {
	room := NewRoom("abc", VariantDotsBoxes, 3)
	require.NoError(t, room.AddMember(Member{ID: "c1", Name: "alice"}))
	require.NoError(t, room.AddMember(Member{ID: "c2", Name: "bob"}))

	member, ok := room.RemoveMember("c1")

	require.True(t, ok)
	assert.Equal(t, "alice", member.Name)
	assert.Equal(t, []string{"bob"}, room.MemberNames())

	_, ok = room.RemoveMember("missing")
	assert.False(t, ok)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, NormalizeCode("Room1"), NormalizeCode("room1 "))
	assert.Equal(t, "room1", NormalizeCode("  ROOM1\t"))
}

func TestGameState_Clone(t *testing.T) {
	// Given: a dots-boxes state with a claimed box
	owner := 1
	state := &GameState{
		Variant: VariantDotsBoxes,
		DotsBoxes: &DotsBoxes{
			GridSize:        1,
			HorizontalLines: [][]bool{{true}, {false}},
			VerticalLines:   [][]bool{{true, true}},
			Boxes:           [][]*int{{&owner}},
			Scores:          map[string]int{"alice": 1},
		},
	}

	// When: cloning and mutating the clone
	clone := state.Clone()
	clone.DotsBoxes.HorizontalLines[1][0] = true
	*clone.DotsBoxes.Boxes[0][0] = 0
	clone.DotsBoxes.Scores["alice"] = 5

	// Then: the original is untouched
	assert.False(t, state.DotsBoxes.HorizontalLines[1][0])
	assert.Equal(t, 1, *state.DotsBoxes.Boxes[0][0])
	assert.Equal(t, 1, state.DotsBoxes.Scores["alice"])
}

func TestGameState_MarshalIsFlat(t *testing.T) {
	state := &GameState{
		Variant:   VariantTicTacToe,
		TurnIndex: 1,
		TicTacToe: &TicTacToe{Board: [BoardCells]string{MarkX}},
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "tic-tac-toe", decoded["gameType"])
	assert.Contains(t, decoded, "board")
	assert.NotContains(t, decoded, "horizontalLines")
}

func TestBoard_MarshalJSON(t *testing.T) {
	t.Run("Empty cells are null", func(t *testing.T) {
		// Given: a board with X in the corner and O in the center
		board := Board{MarkX}
		board[4] = MarkO

		// When: encoding it
		raw, err := json.Marshal(board)

		// Then: unmarked cells are null
		require.NoError(t, err)
		assert.JSONEq(t, `["X",null,null,null,"O",null,null,null,null]`, string(raw))
	})

	t.Run("Null cells decode as empty", func(t *testing.T) {
		var board Board

		require.NoError(t, json.Unmarshal([]byte(`["X",null,null,null,"O",null,null,null,null]`), &board))

		assert.Equal(t, MarkX, board[0])
		assert.Equal(t, EmptyCell, board[1])
		assert.Equal(t, MarkO, board[4])
	})

	t.Run("Game state carries the null board", func(t *testing.T) {
		state := &GameState{Variant: VariantTicTacToe, TicTacToe: &TicTacToe{}}

		raw, err := json.Marshal(state)
		require.NoError(t, err)

		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.JSONEq(t, `[null,null,null,null,null,null,null,null,null]`, string(decoded["board"]))
	})
}
