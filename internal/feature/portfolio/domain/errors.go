// Package domain defines domain-level errors for the portfolio feature.
package domain

import "errors"

// Validation errors. They are recovered locally and reported to the user without any state change.
var (
	// ErrInvalidQuantity indicates that the requested quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrUnknownEntity indicates that the character id does not resolve against the market.
	ErrUnknownEntity = errors.New("character not found")

	// ErrNoHolding indicates a sell for a character that is not held.
	ErrNoHolding = errors.New("no shares held for this character")

	// ErrInsufficientShares indicates a sell larger than the current holding.
	ErrInsufficientShares = errors.New("not enough shares to sell")
)

// Persistence errors. They are non-fatal: the ledger falls back to in-memory state.
var (
	// ErrPersistenceRead indicates that the saved portfolio could not be read or decoded.
	ErrPersistenceRead = errors.New("could not load saved portfolio")

	// ErrPersistenceWrite indicates that the portfolio could not be saved.
	ErrPersistenceWrite = errors.New("could not save portfolio state")

	// ErrPortfolioNotFound is returned by stores when nothing has been saved yet.
	ErrPortfolioNotFound = errors.New("portfolio not found")
)
