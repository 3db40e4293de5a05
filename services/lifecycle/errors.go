package lifecycle

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is matched by every TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError describes why an event cannot be applied to a request.
type TransitionError struct {
	Event  Event
	From   string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from %s: %s", e.Event, e.From, e.Reason)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
