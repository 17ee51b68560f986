package usecase

import (
	"encoding/json"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/entity"
)

// Outbound event names, kept compatible with the existing web clients.
const (
	EventPlayersUpdate      = "playersUpdate"
	EventStartGame          = "startGame"
	EventGameState          = "game_state"
	EventOpponentMove       = "opponent_move"
	EventGameEnded          = "gameEnded"
	EventTicTacToeMoveMade  = "tic_tac_toe_move_made"
	EventTicTacToeGameEnded = "ticTacToeGameEnded"
	EventRoomFull           = "roomFull"
	EventPlayerDisconnected = "playerDisconnected"
	EventInvalidMove        = "invalidMove"
	EventGameRestarted      = "gameRestarted"
	EventSignal             = "signal"
	EventError              = "error"
)

type JoinRequest struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
	GameType string `json:"gameType"`
	GridSize int    `json:"gridSize"`
}

type RoomPayload struct {
	Players  []entity.Member `json:"players"`
	GridSize int             `json:"gridSize"`
	GameType entity.Variant  `json:"gameType"`
}

type TicTacToeMovePayload struct {
	Position  int          `json:"position"`
	Symbol    string       `json:"symbol"`
	Board     entity.Board `json:"board"`
	TurnIndex int          `json:"turnIndex"`
}

type DisconnectPayload struct {
	PlayerName string `json:"playerName"`
}

type SignalPayload struct {
	Data json.RawMessage `json:"data"`
}

// Rejection is sent back to the connection whose request was refused.
type Rejection struct {
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Position *int   `json:"position,omitempty"`
}

// DebugView is the read-only dump served by the introspection endpoint.
type DebugView struct {
	Rooms      []*entity.Room               `json:"rooms"`
	GameStates map[string]*entity.GameState `json:"gameStates"`
}

func newRoomPayload(room *entity.Room) RoomPayload {
	return RoomPayload{
		Players:  room.Clone().Members,
		GridSize: room.GridSize,
		GameType: room.Variant,
	}
}

func newRejection(err error) Rejection {
	reason := apperror.Reason(err)
	if reason == apperror.ReasonInternal {
		return Rejection{Reason: reason, Message: "internal error"}
	}

	return Rejection{Reason: reason, Message: err.Error()}
}
