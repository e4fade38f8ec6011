package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrEmptyFilter = errors.New("storage: delete filter requires a task id")
)

type DueEventRepository interface {
	UpsertDueEvent(ctx context.Context, in DueEvent) error
	ListDueEvents(ctx context.Context, filter DueEventFilter) ([]DueEvent, error)
	DeleteDueEvents(ctx context.Context, filter DueEventFilter) (int64, error)
	ClearDueEvents(ctx context.Context) error
}

type TaskRepository interface {
	SaveList(ctx context.Context, in ListRecord) error
	ListLists(ctx context.Context) ([]ListRecord, error)
	DeleteList(ctx context.Context, uuid string) error

	SaveTask(ctx context.Context, in TaskRecord) error
	GetTask(ctx context.Context, id string) (TaskRecord, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskRecord, error)
	DeleteTask(ctx context.Context, id string) error
}

type Repository interface {
	DueEventRepository
	TaskRepository
}
