package apperror

import "errors"

var (
	ErrInvalidDimension     = errors.New("grid dimension must be positive")
	ErrInvalidTarget        = errors.New("win check target must be a player mark")
	ErrInvalidMatchCount    = errors.New("match count must be between 1 and the grid size")
	ErrInvalidTurn          = errors.New("starting turn must be a player")
	ErrInvalidTransition    = errors.New("phase transition is not allowed")
	ErrMatchNotInProgress   = errors.New("match is not in progress")
	ErrMoveGateClosed       = errors.New("a move is already being processed")
	ErrNotYourTurn          = errors.New("it's not your turn")
	ErrCoordinateOutOfRange = errors.New("coordinate is outside the grid")
	ErrSessionNotFound      = errors.New("session not found")
)
