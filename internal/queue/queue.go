package queue

import (
	"time"
)

// MinStaffing is the lowest employee count a reallocation may leave behind.
const MinStaffing = 1

// WorkQueue is one processing stage at snapshot time.
type WorkQueue struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	WorkInProgress int     `json:"workInProgress"`
	Capacity       int     `json:"capacity"`
	AvgProcessTime float64 `json:"avgProcessTime"` // minutes
	Employees      int     `json:"employees"`
	Complexity     float64 `json:"complexity"` // 1.0 = simple, 3.0 = very complex
}

// BaseUtilization is the time-zero load anchor in percent. It is not capped,
// an overloaded queue reports more than 100.
func (q WorkQueue) BaseUtilization() float64 {
	return float64(q.WorkInProgress) / float64(q.Capacity) * 100
}

// Validate checks the invariants every queue must satisfy before it is forecast.
func (q WorkQueue) Validate() error {
	switch {
	case q.Capacity <= 0:
		return &ValidationError{QueueID: q.ID, Field: "capacity", Err: ErrInvalidQueueState}
	case q.AvgProcessTime <= 0:
		return &ValidationError{QueueID: q.ID, Field: "avgProcessTime", Err: ErrInvalidQueueState}
	case q.Employees < 0:
		return &ValidationError{QueueID: q.ID, Field: "employees", Err: ErrInvalidQueueState}
	case q.WorkInProgress < 0:
		return &ValidationError{QueueID: q.ID, Field: "workInProgress", Err: ErrInvalidQueueState}
	case q.Complexity <= 0:
		return &ValidationError{QueueID: q.ID, Field: "complexity", Err: ErrInvalidQueueState}
	}
	return nil
}

// OperationalState is the snapshot a simulation run consumes.
type OperationalState struct {
	WorkQueues   []WorkQueue `json:"workQueues"`
	IncomingRate float64     `json:"incomingRate"` // cases per hour
	Timestamp    time.Time   `json:"timestamp"`
	SLAThreshold int         `json:"slaThreshold"` // minutes
}

// Validate checks the state-level fields, then every queue in display order,
// and stops at the first failure. Queue ids must be unique since predictions
// are keyed by id.
func (s OperationalState) Validate() error {
	switch {
	case s.SLAThreshold <= 0:
		return &ValidationError{Field: "slaThreshold", Err: ErrInvalidQueueState}
	case s.IncomingRate < 0:
		return &ValidationError{Field: "incomingRate", Err: ErrInvalidQueueState}
	}
	seen := make(map[string]bool, len(s.WorkQueues))
	for _, q := range s.WorkQueues {
		if seen[q.ID] {
			return &ValidationError{QueueID: q.ID, Field: "id", Err: ErrInvalidQueueState}
		}
		seen[q.ID] = true
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Queue returns the queue with the given id.
func (s OperationalState) Queue(id string) (WorkQueue, bool) {
	for _, q := range s.WorkQueues {
		if q.ID == id {
			return q, true
		}
	}
	return WorkQueue{}, false
}

// Clone returns a copy that shares no backing storage with s.
func (s OperationalState) Clone() OperationalState {
	out := s
	out.WorkQueues = make([]WorkQueue, len(s.WorkQueues))
	copy(out.WorkQueues, s.WorkQueues)
	return out
}
