package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Match lifecycle errors
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchAlreadyActive = errors.New("an active match already exists for this key")
	ErrMatchFull          = errors.New("match already has two players")
	ErrAlreadyJoined      = errors.New("player already joined this match")
	ErrMatchFinished      = errors.New("match is finished")

	// Gameplay errors
	ErrUnknownPlayer    = errors.New("player is not a participant in this match")
	ErrInvalidCode      = errors.New("code must be 4 distinct digits 1-9")
	ErrSecretAlreadySet = errors.New("secret has already been set")
	ErrMatchNotReady    = errors.New("waiting for a second player to join")
	ErrNotInProgress    = errors.New("match is not in progress")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrNoPendingSecret  = errors.New("no match is waiting on a secret from this player")
)
