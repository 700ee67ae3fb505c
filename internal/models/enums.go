package models

import "fmt"

// Priority is the wire-stable task priority (1..5).
type Priority uint8

const (
	PriorityLowest  Priority = 1
	PriorityLow     Priority = 2
	PriorityMedium  Priority = 3
	PriorityHigh    Priority = 4
	PriorityHighest Priority = 5
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLowest, PriorityLow, PriorityMedium, PriorityHigh, PriorityHighest:
		return true
	}
	return false
}

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "Lowest"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityHighest:
		return "Highest"
	}
	return fmt.Sprintf("Priority(%d)", uint8(p))
}

// TaskStatus is the wire-stable lifecycle state (1..3). Every state is
// reachable from every other one; Todo is the initial state.
type TaskStatus uint8

const (
	TaskStatusTodo       TaskStatus = 1
	TaskStatusInProgress TaskStatus = 2
	TaskStatusDone       TaskStatus = 3
)

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Incomplete reports whether the task still has work left.
func (s TaskStatus) Incomplete() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusTodo:
		return "Todo"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusDone:
		return "Done"
	}
	return fmt.Sprintf("TaskStatus(%d)", uint8(s))
}

// EventKind is the wire-stable kind of an audit entry (1..4).
type EventKind uint8

const (
	EventCreated       EventKind = 1
	EventEdited        EventKind = 2
	EventStatusChanged EventKind = 3
	EventAssigned      EventKind = 4
)

// Valid reports whether k is one of the enumerated event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventCreated, EventEdited, EventStatusChanged, EventAssigned:
		return true
	}
	return false
}

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "Created"
	case EventEdited:
		return "Edited"
	case EventStatusChanged:
		return "Status Changed"
	case EventAssigned:
		return "Assigned"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}
