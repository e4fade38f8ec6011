package model

type EventKind string

const (
	EventAdd        EventKind = "add"
	EventEdit       EventKind = "edit"
	EventComplete   EventKind = "complete"
	EventUncomplete EventKind = "uncomplete"
	EventDelete     EventKind = "delete"
	EventAdopt      EventKind = "adopt"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventAdd, EventEdit, EventComplete, EventUncomplete, EventDelete, EventAdopt:
		return true
	default:
		return false
	}
}

// TaskEvent describes one task state change. It carries a snapshot of the task
// taken at the moment of the change and is never persisted.
type TaskEvent struct {
	Kind     EventKind
	Task     Task
	ListID   string
	ParentID string
}
