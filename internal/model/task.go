package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSize       = errors.New("model: invalid task size")
	ErrInvalidImportance = errors.New("model: invalid task importance")
	ErrInvalidColor      = errors.New("model: invalid list color")
)

type Size int

const (
	SizeTiny Size = iota
	SizeSmall
	SizeMedium
	SizeBig
	SizeHuge
)

var sizeNames = [...]string{"Tiny", "Small", "Medium", "Big", "Huge"}

func (s Size) IsValid() bool {
	return s >= SizeTiny && s <= SizeHuge
}

func (s Size) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Size(%d)", int(s))
	}
	return sizeNames[s]
}

func ParseSize(raw string) (Size, error) {
	v, ok := parseOrdinal(raw, sizeNames[:])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}
	return Size(v), nil
}

type Importance int

const (
	ImportanceTrivial Importance = iota
	ImportanceLow
	ImportanceNormal
	ImportanceHigh
	ImportanceVital
)

var importanceNames = [...]string{"Trivial", "Low", "Normal", "High", "Vital"}

func (i Importance) IsValid() bool {
	return i >= ImportanceTrivial && i <= ImportanceVital
}

func (i Importance) String() string {
	if !i.IsValid() {
		return fmt.Sprintf("Importance(%d)", int(i))
	}
	return importanceNames[i]
}

func ParseImportance(raw string) (Importance, error) {
	v, ok := parseOrdinal(raw, importanceNames[:])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidImportance, raw)
	}
	return Importance(v), nil
}

func parseOrdinal(raw string, names []string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n >= 0 && n < len(names)
	}
	for i, name := range names {
		if strings.EqualFold(raw, name) {
			return i, true
		}
	}
	return 0, false
}

// Task is a node in the session arena. Parent and children are referenced by id.
type Task struct {
	ID          string
	Name        string
	Size        Size
	Importance  Importance
	Due         time.Time
	Completed   bool
	Deleted     bool
	List        string
	ParentID    string
	SubtaskIDs  []string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Active reports whether the task still counts toward views and reminders.
func (t Task) Active() bool {
	return !t.Completed && !t.Deleted
}

func (t Task) HasParent() bool {
	return t.ParentID != ""
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	out := t
	if t.SubtaskIDs != nil {
		out.SubtaskIDs = append([]string(nil), t.SubtaskIDs...)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: task name is required")
	}
	if !t.Size.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidSize, t.Size)
	}
	if !t.Importance.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidImportance, t.Importance)
	}
	if t.Due.IsZero() {
		return errors.New("model: task due date is required")
	}
	if t.ParentID == t.ID {
		return errors.New("model: task cannot be its own parent")
	}
	if t.Completed && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is completed")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	return nil
}
