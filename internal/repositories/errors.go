package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every repository when a lookup misses.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when the remaining stock cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrRunAlreadyClaimed is returned when another scheduler instance has
	// already claimed the fulfillment run for the period.
	ErrRunAlreadyClaimed = errors.New("fulfillment run already claimed")
)
