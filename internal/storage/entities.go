package storage

import "time"

// DueEventKind values match the integer encoding of the history table.
type DueEventKind int

const (
	DueEventComplete DueEventKind = 0
	DueEventCreate   DueEventKind = 1
)

func (k DueEventKind) String() string {
	switch k {
	case DueEventComplete:
		return "complete"
	case DueEventCreate:
		return "create"
	default:
		return "unknown"
	}
}

// DueEvent is one ledger row. RecordedAt is when the event happened; Due is the
// task's due date at that moment.
type DueEvent struct {
	Kind       DueEventKind
	RecordedAt time.Time
	TaskID     string
	List       string
	Importance int
	Size       int
	Due        time.Time
}

type ListRecord struct {
	UUID     string
	Name     string
	Color    string
	Position int
}

type TaskRecord struct {
	ID          string
	Name        string
	Size        int
	Importance  int
	Due         time.Time
	Completed   bool
	Deleted     bool
	ListUUID    string
	ParentID    string
	Position    int
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// DueEventFilter narrows ledger queries. Zero values mean "any"; Size and
// Importance are pointers because 0 is a meaningful ordinal.
type DueEventFilter struct {
	TaskID     string
	Kinds      []DueEventKind
	List       string
	Size       *int
	Importance *int
	Limit      int
	Offset     int
}

type TaskListFilter struct {
	ListUUID       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
