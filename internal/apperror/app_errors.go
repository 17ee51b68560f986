package apperror

import "errors"

var (
	ErrRoomFull         = errors.New("room is full")
	ErrDuplicateName    = errors.New("name is already taken in this room")
	ErrRoomNotFound     = errors.New("room not found")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameEnded        = errors.New("game is already finished")
	ErrOutOfRange       = errors.New("move is out of range")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrWrongVariant     = errors.New("move does not match the room game type")
	ErrUnknownVariant   = errors.New("unknown game type")
	ErrInvalidGridSize  = errors.New("invalid grid size")
	ErrInvalidPayload   = errors.New("invalid payload")
)

const ReasonInternal = "internal"

// Reason maps an application error to the short code sent back to clients.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrGameIsNotStarted):
		return "game_not_started"
	case errors.Is(err, ErrGameEnded):
		return "game_ended"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, ErrWrongVariant):
		return "wrong_variant"
	case errors.Is(err, ErrUnknownVariant):
		return "unknown_game_type"
	case errors.Is(err, ErrInvalidGridSize):
		return "invalid_grid_size"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	default:
		return ReasonInternal
	}
}
