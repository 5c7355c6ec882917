package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SampleState returns the reference case-processing pipeline used when no
// snapshot file is configured.
func SampleState(now time.Time) OperationalState {
	return OperationalState{
		WorkQueues: []WorkQueue{
			{ID: "intake", Name: "Case Intake", WorkInProgress: 45, Capacity: 50, AvgProcessTime: 15, Employees: 5, Complexity: 1.0},
			{ID: "review", Name: "Manual Review", WorkInProgress: 78, Capacity: 60, AvgProcessTime: 45, Employees: 8, Complexity: 2.5},
			{ID: "approval", Name: "Final Approval", WorkInProgress: 23, Capacity: 40, AvgProcessTime: 30, Employees: 4, Complexity: 1.8},
			{ID: "completion", Name: "Case Completion", WorkInProgress: 12, Capacity: 50, AvgProcessTime: 10, Employees: 3, Complexity: 1.0},
		},
		IncomingRate: 8.5,
		Timestamp:    now,
		SLAThreshold: 120,
	}
}

// LoadSnapshot reads and validates an OperationalState JSON file. A missing
// timestamp is filled with now.
func LoadSnapshot(path string, now time.Time) (OperationalState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OperationalState{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var state OperationalState
	if err := json.Unmarshal(data, &state); err != nil {
		return OperationalState{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if state.Timestamp.IsZero() {
		state.Timestamp = now
	}
	if err := state.Validate(); err != nil {
		return OperationalState{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return state, nil
}

// SaveSnapshot writes state as indented JSON.
func SaveSnapshot(path string, state OperationalState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
