package monitor

import "errors"

var (
	ErrUnavailable     = errors.New("monitor: cache unavailable")
	ErrInvalidInterval = errors.New("monitor: interval must be positive")
)
