package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("stride array not found")
	ErrInvalidKey = errors.New("invalid stride key")
)
