package repository

import "errors"

var (
	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCacheMiss is returned by a SuggestionCache when no record is stored for a key.
	ErrCacheMiss = errors.New("cache miss")
)
