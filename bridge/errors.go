package bridge

import "errors"

var (
	ErrRoundInProgress = errors.New("round already in progress")
	ErrGameOver        = errors.New("game is over")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
