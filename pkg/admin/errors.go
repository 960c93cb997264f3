package admin

import "errors"

// ErrWarmupDisabled is returned by the warmup routes when no warmer is configured.
var ErrWarmupDisabled = errors.New("admin: cache warmup is not configured")
