package model

// TaskState represents the lifecycle state of a download task
type TaskState string

const (
	// TaskStatePending means start was accepted but no event has arrived yet
	TaskStatePending TaskState = "Pending"

	// TaskStateRunning means at least one event has been received
	TaskStateRunning TaskState = "Running"

	// TaskStateSucceeded means the transfer finished
	TaskStateSucceeded TaskState = "Succeeded"

	// TaskStateCancelled means the user stopped the task
	TaskStateCancelled TaskState = "Cancelled"

	// TaskStateFailed means the engine or backing service reported an error
	TaskStateFailed TaskState = "Failed"
)

// String returns the string representation of TaskState
func (ts TaskState) String() string {
	return string(ts)
}

// IsActive returns true while the task occupies its controller slot
func (ts TaskState) IsActive() bool {
	return ts == TaskStatePending || ts == TaskStateRunning
}

// IsFinished returns true for terminal states
func (ts TaskState) IsFinished() bool {
	return ts == TaskStateSucceeded || ts == TaskStateCancelled || ts == TaskStateFailed
}

// CanTransition reports whether moving from ts to next is allowed.
// Terminal states never transition.
func (ts TaskState) CanTransition(next TaskState) bool {
	switch ts {
	case TaskStatePending:
		return next == TaskStateRunning || next.IsFinished()
	case TaskStateRunning:
		return next.IsFinished()
	default:
		return false
	}
}
