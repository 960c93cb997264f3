package catalog

import "errors"

// Sentinel errors for the catalog.
var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrInvalidProduct  = errors.New("catalog: invalid product")
	ErrInvalidRange    = errors.New("catalog: invalid analytics range")
	ErrInvalidQuery    = errors.New("catalog: invalid list query")
)
