package cacheable

import "errors"

// ErrUnexpectedResult is returned when a shared single-flight call yields a
// value of a different type than the wrapped operation.
var ErrUnexpectedResult = errors.New("cacheable: unexpected shared result type")
