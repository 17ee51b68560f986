package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rocketscienceinc/duelrooms-backend/internal/apperror"
	"github.com/rocketscienceinc/duelrooms-backend/internal/config"
	"github.com/rocketscienceinc/duelrooms-backend/internal/dotsboxes"
	"github.com/rocketscienceinc/duelrooms-backend/internal/entity"
	"github.com/rocketscienceinc/duelrooms-backend/internal/metrics"
	"github.com/rocketscienceinc/duelrooms-backend/internal/repository"
	"github.com/rocketscienceinc/duelrooms-backend/internal/tictactoe"
)

const (
	moveAccepted = "accepted"
	moveRejected = "rejected"
	moveIgnored  = "ignored"
)

// Gateway delivers events to connections and groups connections by room code.
// Implementations must not block.
type Gateway interface {
	SendTo(connectionID, event string, payload any)
	SendToRoom(roomCode, event string, payload any)
	SendToRoomExcept(roomCode, excludedConnectionID, event string, payload any)
	JoinGroup(connectionID, roomCode string)
	LeaveGroup(connectionID, roomCode string)
}

type notifier interface {
	Notify(subject, body string)
}

type roomRepo interface {
	WithRoom(code string, fn func(slot *repository.RoomSlot) error) error
	WithRoomOrCreate(code string, create func() *entity.Room, fn func(slot *repository.RoomSlot) error) error
	RoomsOf(connectionID string) []string
	Dump() ([]*entity.Room, map[string]*entity.GameState)
	Count() int
}

// GameManager runs every room operation under the room lock and emits the
// resulting events while still holding it, so a room's events leave in commit order.
type GameManager struct {
	logger   *slog.Logger
	rooms    roomRepo
	gateway  Gateway
	notifier notifier
	metrics  *metrics.Metrics
	game     config.Game
}

func NewGameManager(
	logger *slog.Logger,
	rooms roomRepo,
	gateway Gateway,
	notifier notifier,
	stats *metrics.Metrics,
	game config.Game,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		rooms:    rooms,
		gateway:  gateway,
		notifier: notifier,
		metrics:  stats,
		game:     game,
	}
}

// Join - adds the connection to a room, creating the room on first use.
// Rejections are sent back to the connection and returned.
func (that *GameManager) Join(_ context.Context, connectionID string, req JoinRequest) error {
	code := entity.NormalizeCode(req.RoomCode)
	name := strings.TrimSpace(req.Name)
	log := that.logger.With("method", "Join", "room", code, "name", name)

	if code == "" || name == "" {
		return that.rejectRequest(connectionID,
			fmt.Errorf("%w: room code and name are required", apperror.ErrInvalidPayload))
	}

	// settings are applied by the callback, only for the member creating the room
	create := func() *entity.Room {
		return entity.NewRoom(code, entity.VariantDotsBoxes, 0)
	}

	err := that.rooms.WithRoomOrCreate(code, create, func(slot *repository.RoomSlot) error {
		room := slot.Room
		created := room.IsEmpty()

		if created {
			variant, gridSize, err := that.parseSettings(req)
			if err != nil {
				// the empty room is dropped by the repository
				return that.rejectRequest(connectionID, err)
			}

			room.Variant = variant
			room.GridSize = gridSize
		}

		if err := room.AddMember(entity.Member{ID: connectionID, Name: name}); err != nil {
			that.rejectJoin(connectionID, room, name, err)
			return err
		}

		that.gateway.JoinGroup(connectionID, code)
		that.metrics.Joins.WithLabelValues("accepted").Inc()

		if created {
			log.Info("room created", "game_type", room.Variant, "grid_size", room.GridSize)
			that.notifier.Notify("Room created",
				fmt.Sprintf("%s created room '%s' (%s%s).", name, code, room.Variant.Label(), gridLabel(room)))
		} else {
			log.Info("member joined room", "members", len(room.Members))
			that.notifier.Notify("Player joined",
				fmt.Sprintf("%s joined room '%s'.", name, code))
		}

		that.gateway.SendToRoom(code, EventPlayersUpdate, newRoomPayload(room))

		if room.IsFull() {
			that.startGame(slot)
		}

		return nil
	})

	that.metrics.RoomsActive.Set(float64(that.rooms.Count()))

	return err
}

func (that *GameManager) rejectRequest(connectionID string, err error) error {
	that.metrics.Joins.WithLabelValues(apperror.Reason(err)).Inc()
	that.gateway.SendTo(connectionID, EventError, newRejection(err))
	return fmt.Errorf("invalid join request: %w", err)
}

// parseSettings - game type and grid size of a new room. Later joiners' settings are ignored.
func (that *GameManager) parseSettings(req JoinRequest) (entity.Variant, int, error) {
	variant, err := entity.ParseVariant(req.GameType)
	if err != nil {
		return "", 0, err
	}

	if variant != entity.VariantDotsBoxes {
		return variant, 0, nil
	}

	gridSize := req.GridSize
	if gridSize == 0 {
		gridSize = that.game.DefaultGridSize
	}

	if gridSize < 1 || gridSize > that.game.MaxGridSize {
		return "", 0, fmt.Errorf("%w: %d, allowed 1..%d", apperror.ErrInvalidGridSize, gridSize, that.game.MaxGridSize)
	}

	return variant, gridSize, nil
}

func (that *GameManager) rejectJoin(connectionID string, room *entity.Room, name string, err error) {
	that.logger.Info("join rejected", "room", room.Code, "name", name, "error", err)
	that.metrics.Joins.WithLabelValues(apperror.Reason(err)).Inc()
	that.gateway.SendTo(connectionID, EventRoomFull, newRejection(err))

	if errors.Is(err, apperror.ErrDuplicateName) {
		that.notifier.Notify("Duplicate player",
			fmt.Sprintf("%s tried to join room '%s' again while already present.", name, room.Code))
		return
	}

	that.notifier.Notify("Room full",
		fmt.Sprintf("%s tried to join room '%s' but it is full (%d/%d players).", name, room.Code, len(room.Members), entity.MaxMembers))
}

// startGame - the room just became full.
func (that *GameManager) startGame(slot *repository.RoomSlot) {
	room := slot.Room
	slot.State = newState(room)

	that.logger.Info("game started", "room", room.Code, "game_type", room.Variant)
	that.notifier.Notify("Room complete, game started",
		fmt.Sprintf("Room '%s' is complete (%s). %s has started.",
			room.Code, strings.Join(room.MemberNames(), " vs "), room.Variant.Label()))

	that.gateway.SendToRoom(room.Code, EventStartGame, newRoomPayload(room))
	that.gateway.SendToRoom(room.Code, EventGameState, slot.State.Clone())
}

func newState(room *entity.Room) *entity.GameState {
	if room.Variant == entity.VariantTicTacToe {
		return tictactoe.NewState()
	}
	return dotsboxes.NewState(room.GridSize, room.Members)
}

// Leave - removes the connection from every room it is a member of.
func (that *GameManager) Leave(_ context.Context, connectionID string) {
	log := that.logger.With("method", "Leave", "connection", connectionID)

	for _, code := range that.rooms.RoomsOf(connectionID) {
		err := that.rooms.WithRoom(code, func(slot *repository.RoomSlot) error {
			for {
				member, ok := slot.Room.RemoveMember(connectionID)
				if !ok {
					return nil
				}

				that.memberLeft(slot, member)
			}
		})
		if err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
			log.Error("failed to leave room", "room", code, "error", err)
		}

		that.gateway.LeaveGroup(connectionID, code)
	}

	that.metrics.RoomsActive.Set(float64(that.rooms.Count()))
}

func (that *GameManager) memberLeft(slot *repository.RoomSlot, member entity.Member) {
	room := slot.Room

	// a game needs both members, the next completed room starts fresh
	slot.State = nil

	if room.IsEmpty() {
		that.logger.Info("room deleted", "room", room.Code, "last_member", member.Name)
		that.notifier.Notify("Room deleted",
			fmt.Sprintf("Room '%s' was deleted after every player disconnected. The last one to leave was %s.", room.Code, member.Name))
		return
	}

	that.logger.Info("member left room", "room", room.Code, "name", member.Name)
	that.notifier.Notify("Player disconnected",
		fmt.Sprintf("%s disconnected from room '%s'. %d player(s) remain.", member.Name, room.Code, len(room.Members)))

	that.gateway.SendToRoom(room.Code, EventPlayersUpdate, newRoomPayload(room))
	that.gateway.SendToRoom(room.Code, EventPlayerDisconnected, DisconnectPayload{PlayerName: member.Name})
}

// MakeDotsBoxesMove - stores the mover's snapshot and relays it to the opponent.
// Moves against a room without a game are dropped silently.
func (that *GameManager) MakeDotsBoxesMove(_ context.Context, connectionID, roomCode string, snapshot *dotsboxes.Snapshot) error {
	code := entity.NormalizeCode(roomCode)
	variant := string(entity.VariantDotsBoxes)

	err := that.rooms.WithRoom(code, func(slot *repository.RoomSlot) error {
		if slot.State == nil {
			that.metrics.Moves.WithLabelValues(variant, moveIgnored).Inc()
			that.logger.Debug("move ignored, game is not started", "room", code)
			return nil
		}

		outcome, err := dotsboxes.ApplySnapshot(slot.State, slot.Room, snapshot)
		if err != nil {
			that.metrics.Moves.WithLabelValues(variant, moveRejected).Inc()
			that.gateway.SendTo(connectionID, EventInvalidMove, newRejection(err))
			return err
		}

		that.metrics.Moves.WithLabelValues(variant, moveAccepted).Inc()

		if outcome != nil {
			that.gateway.SendToRoom(code, EventGameEnded, outcome)
			that.gameFinished(slot.Room, outcome)
		}

		that.gateway.SendToRoomExcept(code, connectionID, EventOpponentMove, snapshot)
		that.gateway.SendToRoomExcept(code, connectionID, EventGameState, slot.State.Clone())

		return nil
	})

	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.metrics.Moves.WithLabelValues(variant, moveIgnored).Inc()
		return nil
	}

	return err
}

// MakeTicTacToeMove - validates and applies a mark, broadcasting the result to the room.
func (that *GameManager) MakeTicTacToeMove(_ context.Context, connectionID, roomCode string, position int, mark string) error {
	code := entity.NormalizeCode(roomCode)
	variant := string(entity.VariantTicTacToe)

	err := that.rooms.WithRoom(code, func(slot *repository.RoomSlot) error {
		if slot.State == nil {
			return apperror.ErrGameIsNotStarted
		}

		outcome, err := tictactoe.MakeTurn(slot.State, slot.Room, position, mark)
		if err != nil {
			return err
		}

		that.metrics.Moves.WithLabelValues(variant, moveAccepted).Inc()

		if outcome != nil {
			that.gateway.SendToRoom(code, EventTicTacToeGameEnded, outcome)
			that.gameFinished(slot.Room, outcome)
		}

		that.gateway.SendToRoom(code, EventTicTacToeMoveMade, TicTacToeMovePayload{
			Position:  position,
			Symbol:    mark,
			Board:     slot.State.TicTacToe.Board,
			TurnIndex: slot.State.TurnIndex,
		})
		that.gateway.SendToRoom(code, EventGameState, slot.State.Clone())

		return nil
	})
	if err != nil {
		that.metrics.Moves.WithLabelValues(variant, moveRejected).Inc()

		rejection := newRejection(err)
		rejection.Position = &position
		that.gateway.SendTo(connectionID, EventInvalidMove, rejection)

		return fmt.Errorf("tic-tac-toe move rejected: %w", err)
	}

	return nil
}

func (that *GameManager) gameFinished(room *entity.Room, outcome *entity.Outcome) {
	that.metrics.GamesFinished.WithLabelValues(string(room.Variant), outcome.Result).Inc()
	that.logger.Info("game finished", "room", room.Code, "result", outcome.Result, "winner", outcome.Winner)

	label := room.Variant.Label()

	switch outcome.Result {
	case entity.ResultWin:
		that.notifier.Notify("Victory in "+label,
			fmt.Sprintf("%s won the game in room '%s'.%s", outcome.Winner, room.Code, scoreLine(room, outcome)))
	case entity.ResultTie:
		that.notifier.Notify("Tie in "+label,
			fmt.Sprintf("The game in room '%s' ended in a tie.%s", room.Code, scoreLine(room, outcome)))
	default:
		that.notifier.Notify("Draw in "+label,
			fmt.Sprintf("The game in room '%s' ended in a draw.", room.Code))
	}
}

// RequestGameState - sends the current snapshot to the requester only.
func (that *GameManager) RequestGameState(_ context.Context, connectionID, roomCode string) error {
	code := entity.NormalizeCode(roomCode)

	err := that.rooms.WithRoom(code, func(slot *repository.RoomSlot) error {
		if slot.State == nil {
			return fmt.Errorf("%w: no game in room %s", apperror.ErrRoomNotFound, code)
		}

		that.gateway.SendTo(connectionID, EventGameState, slot.State.Clone())

		return nil
	})
	if err != nil {
		that.gateway.SendTo(connectionID, EventError, newRejection(err))
		return fmt.Errorf("failed to get game state: %w", err)
	}

	return nil
}

// RestartGame - reinitializes the game of a full room, members and game type are kept.
func (that *GameManager) RestartGame(_ context.Context, connectionID, roomCode string) error {
	code := entity.NormalizeCode(roomCode)

	err := that.rooms.WithRoom(code, func(slot *repository.RoomSlot) error {
		if slot.State == nil || !slot.Room.IsFull() {
			return apperror.ErrGameIsNotStarted
		}

		*slot.State = *newState(slot.Room)

		that.logger.Info("game restarted", "room", code)
		that.notifier.Notify("Game restarted",
			fmt.Sprintf("The %s game in room '%s' was restarted.", slot.Room.Variant.Label(), code))

		that.gateway.SendToRoom(code, EventGameRestarted, slot.State.Clone())
		that.gateway.SendToRoom(code, EventGameState, slot.State.Clone())

		return nil
	})
	if err != nil {
		that.gateway.SendTo(connectionID, EventError, newRejection(err))
		return fmt.Errorf("failed to restart game: %w", err)
	}

	return nil
}

// RelaySignal - forwards opaque peer signalling data to the rest of the room.
// Only members of the room may signal it.
func (that *GameManager) RelaySignal(_ context.Context, connectionID, roomCode string, data json.RawMessage) error {
	code := entity.NormalizeCode(roomCode)

	if !slices.Contains(that.rooms.RoomsOf(connectionID), code) {
		return fmt.Errorf("%w: connection is not a member of %s", apperror.ErrRoomNotFound, code)
	}

	that.gateway.SendToRoomExcept(code, connectionID, EventSignal, SignalPayload{Data: data})

	return nil
}

// Dump - read-only view of every room and game state.
func (that *GameManager) Dump() DebugView {
	rooms, states := that.rooms.Dump()

	return DebugView{
		Rooms:      rooms,
		GameStates: states,
	}
}

func gridLabel(room *entity.Room) string {
	if room.GridSize == 0 {
		return ""
	}
	return fmt.Sprintf(", %dx%d grid", room.GridSize, room.GridSize)
}

func scoreLine(room *entity.Room, outcome *entity.Outcome) string {
	if len(outcome.Scores) == 0 {
		return ""
	}

	parts := make([]string, 0, len(room.Members))
	for _, name := range room.MemberNames() {
		parts = append(parts, fmt.Sprintf("%s: %d", name, outcome.Scores[name]))
	}

	return " Final score " + strings.Join(parts, ", ") + "."
}
