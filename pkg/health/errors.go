package health

import "errors"

// ErrCheckTimeout wraps a check error when the shared timeout expired.
var ErrCheckTimeout = errors.New("health: check timeout")
