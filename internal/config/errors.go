package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrMissingPath is wrapped together with ErrInvalidConfig when a mode
	// lacks a directory it reads or writes.
	ErrMissingPath = errors.New("required path not set")
)
