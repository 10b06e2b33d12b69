package services

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist. No
	// partial state is written when it is returned.
	ErrNotFound = errors.New("not found")

	// ErrDoubtQuotaExceeded rejects a doubt request over the rolling 7-day
	// budget. The caller can retry once old requests age out of the window.
	ErrDoubtQuotaExceeded = errors.New("you have reached the limit of 3 doubt requests per week")

	ErrInvalidAssignmentScore = errors.New("assignment score must be between 0 and 100")
	ErrInvalidProjectScore    = errors.New("project score must be between 0 and 10")

	ErrNotSchedulable = errors.New("doubt session is not pending")
)
