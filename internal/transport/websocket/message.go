package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/duelrooms-backend/internal/dotsboxes"
)

// Inbound actions.
const (
	actionJoinRoom         = "joinRoom"
	actionMakeMove         = "make_move"
	actionTicTacToeMove    = "tic_tac_toe_move"
	actionRequestGameState = "request_game_state"
	actionRestartGame      = "restart_game"
	actionSignal           = "signal"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type roomPayload struct {
	RoomCode string `json:"roomCode"`
}

// movePayload - dots-boxes snapshot addressed to a room.
type movePayload struct {
	RoomCode string `json:"roomCode"`
	dotsboxes.Snapshot
}

type ticTacToeMovePayload struct {
	RoomCode string `json:"roomCode"`
	Position *int   `json:"position"`
	Symbol   string `json:"symbol"`
}

type signalPayload struct {
	RoomCode string          `json:"roomCode"`
	Data     json.RawMessage `json:"data"`
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
