package apperror

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected game server status")
	ErrMalformedState   = errors.New("malformed game state")
	ErrInvalidCoords    = errors.New("invalid cell coordinates")
	ErrUnknownAction    = errors.New("unknown action")
)
