package model

import "fmt"

// EventKind tags a ProgressEvent
type EventKind int

const (
	EventProgress EventKind = iota
	EventFinished
	EventCancelled
	EventFailed
)

// String returns the string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProgressEvent is one unit of feedback from a running task. Events are
// produced on the background side and consumed once by the controller.
type ProgressEvent struct {
	Kind     EventKind
	Percent  int    // meaningful for EventProgress only
	Message  string // human readable status or failure text
	Artifact string // partial file path revealed by the engine, if any
}

// Progress builds a non-terminal event
func Progress(percent int, message string) ProgressEvent {
	return ProgressEvent{Kind: EventProgress, Percent: ClampPercent(percent), Message: message}
}

// Finished builds the success event
func Finished(message string) ProgressEvent {
	return ProgressEvent{Kind: EventFinished, Percent: 100, Message: message}
}

// Cancelled builds the user-cancel event
func Cancelled(message string) ProgressEvent {
	return ProgressEvent{Kind: EventCancelled, Message: message}
}

// Failed builds the failure event
func Failed(message string) ProgressEvent {
	return ProgressEvent{Kind: EventFailed, Message: message}
}

// IsTerminal reports whether no event may follow this one
func (e ProgressEvent) IsTerminal() bool {
	return e.Kind != EventProgress
}

// State returns the task state the event moves a task into
func (e ProgressEvent) State() TaskState {
	switch e.Kind {
	case EventFinished:
		return TaskStateSucceeded
	case EventCancelled:
		return TaskStateCancelled
	case EventFailed:
		return TaskStateFailed
	default:
		return TaskStateRunning
	}
}

// String returns a compact form used in logs and tests
func (e ProgressEvent) String() string {
	switch e.Kind {
	case EventProgress:
		return fmt.Sprintf("Progress(%d)", e.Percent)
	default:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Message)
	}
}
