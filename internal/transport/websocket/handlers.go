package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/usecase"
)

func (that *Server) handleJoinRoom(ctx context.Context, client *Client, msg *Message) error {
	var payload usecase.JoinRequest
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	return that.game.Join(ctx, client.id, payload)
}

func (that *Server) handleMakeMove(ctx context.Context, client *Client, msg *Message) error {
	var payload movePayload
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	return that.game.MakeDotsBoxesMove(ctx, client.id, payload.RoomCode, &payload.Snapshot)
}

func (that *Server) handleTicTacToeMove(ctx context.Context, client *Client, msg *Message) error {
	var payload ticTacToeMovePayload
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	if payload.Position == nil {
		err := fmt.Errorf("%w: position is required", apperror.ErrInvalidPayload)
		that.rejectPayload(client, err)
		return err
	}

	return that.game.MakeTicTacToeMove(ctx, client.id, payload.RoomCode, *payload.Position, payload.Symbol)
}

func (that *Server) handleRequestGameState(ctx context.Context, client *Client, msg *Message) error {
	var payload roomPayload
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	return that.game.RequestGameState(ctx, client.id, payload.RoomCode)
}

func (that *Server) handleRestartGame(ctx context.Context, client *Client, msg *Message) error {
	var payload roomPayload
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	return that.game.RestartGame(ctx, client.id, payload.RoomCode)
}

func (that *Server) handleSignal(ctx context.Context, client *Client, msg *Message) error {
	var payload signalPayload
	if err := that.decode(client, msg, &payload); err != nil {
		return err
	}

	return that.game.RelaySignal(ctx, client.id, payload.RoomCode, payload.Data)
}

// decode - unmarshals the payload, a malformed one is reported back to the sender.
func (that *Server) decode(client *Client, msg *Message, target any) error {
	if len(msg.Payload) == 0 {
		err := fmt.Errorf("%w: %s has no payload", apperror.ErrInvalidPayload, msg.Action)
		that.rejectPayload(client, err)
		return err
	}

	if err := json.Unmarshal(msg.Payload, target); err != nil {
		err = fmt.Errorf("%w: %s: %w", apperror.ErrInvalidPayload, msg.Action, err)
		that.rejectPayload(client, err)
		return err
	}

	return nil
}

func (that *Server) rejectPayload(client *Client, err error) {
	that.hub.SendTo(client.id, usecase.EventError, usecase.Rejection{
		Reason:  apperror.Reason(apperror.ErrInvalidPayload),
		Message: err.Error(),
	})
}
