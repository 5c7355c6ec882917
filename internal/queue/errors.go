package queue

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQueueState = errors.New("invalid queue state")
	ErrUnknownQueue      = errors.New("unknown queue")
)

// ValidationError names the queue and field that broke an invariant. QueueID
// is empty for state-level fields.
type ValidationError struct {
	QueueID string
	Field   string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.QueueID == "" {
		return fmt.Sprintf("state: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("queue %q: %s: %v", e.QueueID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
