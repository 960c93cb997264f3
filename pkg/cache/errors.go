package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned by stores when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")

	// ErrUnsupported is returned when the store lacks an optional capability.
	ErrUnsupported = errors.New("cache: operation not supported by store")

	// ErrOutOfMemory is returned by the memory store when it is full and
	// its eviction policy forbids evicting entries.
	ErrOutOfMemory = errors.New("cache: store is full and eviction is disabled")

	// ErrInvalidPattern is returned for malformed key patterns.
	ErrInvalidPattern = errors.New("cache: invalid key pattern")
)
