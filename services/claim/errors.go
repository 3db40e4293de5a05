package claim

import (
	"errors"

	"repairhub/services/lifecycle"
)

var (
	// ErrInvalidTransition: wrong state, wrong actor or missing input. Never retry as-is.
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	// ErrClaimConflict: another provider changed the request first. Re-read and decide.
	ErrClaimConflict = errors.New("this request was just taken by someone else")
	// ErrNotFound: the request id does not exist.
	ErrNotFound = errors.New("request not found")
	// ErrStoreUnavailable: transient storage failure; nothing was written.
	ErrStoreUnavailable = errors.New("request store unavailable")
	// ErrInvalidRequest: intake input is incomplete or malformed.
	ErrInvalidRequest = errors.New("invalid request input")
)
