package jobboard

import "errors"

var (
	// Lookup errors.
	ErrJobNotFound    = errors.New("jobboard: job not found")
	ErrUnknownJobType = errors.New("jobboard: unknown job type")

	// State errors.
	ErrJobClaimed      = errors.New("jobboard: job already claimed by another worker")
	ErrJobNotAvailable = errors.New("jobboard: job is not available for claiming")

	// Backend errors.
	ErrBackendClosed = errors.New("jobboard: backend closed")
	ErrUnknownCodec  = errors.New("jobboard: unknown record codec")

	// Catalog errors.
	ErrInvalidCatalog = errors.New("jobboard: invalid catalog")
)
