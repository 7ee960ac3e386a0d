package domain

import "errors"

// ErrMissingImplementation is returned when an abstract operation was not provided
// (a state type without transitions, an abstract script, a missing selection strategy).
var ErrMissingImplementation = errors.New("missing implementation")

// ErrBlockRequired is returned when an operation that needs a function was given nil.
var ErrBlockRequired = errors.New("block required")

// ErrAssertionFailed is the sentinel matched by halting assertion failures.
var ErrAssertionFailed = errors.New("assertion failed")

// ErrKeyRequired is returned when a data log entry is recorded without a key.
var ErrKeyRequired = errors.New("key required")

// ErrInvalidLevel is returned when a log level name cannot be parsed.
var ErrInvalidLevel = errors.New("invalid log level")

// ErrResultNotFound is returned when a result ID cannot be found in a store.
var ErrResultNotFound = errors.New("result not found")
