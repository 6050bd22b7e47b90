package game

import "errors"

// Session errors
var (
	ErrGameOver        = errors.New("game is over")
	ErrIncompleteGuess = errors.New("guess is incomplete")
	ErrNotInWordList   = errors.New("not in word list")
	ErrInvalidLetter   = errors.New("invalid letter")
	ErrRowFull         = errors.New("row is full")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrNoSecret        = errors.New("no secret word available")
	ErrUnknownMode     = errors.New("unknown mode")
)
