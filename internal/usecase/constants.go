package usecase

import "time"

const (
	// DefaultOperationTimeout bounds how long a ledger operation may
	// wait on row locks before failing with domain.ErrBusy.
	DefaultOperationTimeout = 10 * time.Second
)
