package warmup

import "errors"

var (
	ErrFixtureRead   = errors.New("warmup: failed to read fixture")
	ErrFixtureParse  = errors.New("warmup: failed to parse fixture")
	ErrSource        = errors.New("warmup: data source failed")
	ErrInvalidPeriod = errors.New("warmup: schedule interval must be at least one second")
)
