// Package domain defines domain-level errors for the market feature.
package domain

import "errors"

// Domain errors for market operations.
var (
	// ErrEntitySourceLoad indicates that the character collection could not be loaded.
	// The market cannot run without it; callers surface it as a blocking state with a manual retry.
	ErrEntitySourceLoad = errors.New("failed to load market data")

	// ErrMarketNotLoaded is returned by read operations while no collection has been loaded yet.
	ErrMarketNotLoaded = errors.New("market data is not loaded")

	// ErrCharacterNotFound indicates that no character has the requested id.
	ErrCharacterNotFound = errors.New("character not found")
)
