package queue

import "fmt"

// ResourceChange is a staffing directive for one queue. A negative
// EmployeeChange moves people away from the queue.
type ResourceChange struct {
	QueueID        string `json:"queueId"`
	EmployeeChange int    `json:"employeeChange"`
}

// ApplyChanges returns a new snapshot with the changes applied in order.
// The input state is left untouched. Reductions stop at MinStaffing, and a
// queue already below the floor is never reduced further.
func ApplyChanges(state OperationalState, changes []ResourceChange) (OperationalState, error) {
	next := state.Clone()
	for _, c := range changes {
		idx := -1
		for i := range next.WorkQueues {
			if next.WorkQueues[i].ID == c.QueueID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return state, fmt.Errorf("apply change to %q: %w", c.QueueID, ErrUnknownQueue)
		}

		q := &next.WorkQueues[idx]
		employees := q.Employees + c.EmployeeChange
		if c.EmployeeChange < 0 && employees < MinStaffing {
			employees = min(q.Employees, MinStaffing)
		}
		q.Employees = employees
	}
	return next, nil
}
