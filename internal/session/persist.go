package session

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
)

// Snapshot writes the arena to repo and removes stored rows the arena no
// longer has.
func (m *Manager) Snapshot(ctx context.Context, repo storage.TaskRepository) error {
	lists, tasks := m.records()

	for _, l := range lists {
		if err := repo.SaveList(ctx, l); err != nil {
			return fmt.Errorf("save list %s: %w", l.UUID, err)
		}
	}
	for _, t := range tasks {
		if err := repo.SaveTask(ctx, t); err != nil {
			return fmt.Errorf("save task %s: %w", t.ID, err)
		}
	}

	keepList := make(map[string]struct{}, len(lists))
	for _, l := range lists {
		keepList[l.UUID] = struct{}{}
	}
	stored, err := repo.ListLists(ctx)
	if err != nil {
		return fmt.Errorf("load lists: %w", err)
	}
	for _, l := range stored {
		if _, ok := keepList[l.UUID]; ok {
			continue
		}
		if err := repo.DeleteList(ctx, l.UUID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete list %s: %w", l.UUID, err)
		}
	}

	keepTask := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		keepTask[t.ID] = struct{}{}
	}
	storedTasks, err := repo.ListTasks(ctx, storage.TaskListFilter{IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range storedTasks {
		if _, ok := keepTask[t.ID]; ok {
			continue
		}
		if err := repo.DeleteTask(ctx, t.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (m *Manager) records() ([]storage.ListRecord, []storage.TaskRecord) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lists := make([]storage.ListRecord, 0, len(m.lists))
	tasks := make([]storage.TaskRecord, 0, len(m.tasks))
	var visit func(ids []string)
	visit = func(ids []string) {
		for pos, id := range ids {
			t, ok := m.tasks[id]
			if !ok {
				continue
			}
			tasks = append(tasks, taskRecord(*t, pos))
			visit(t.SubtaskIDs)
		}
	}
	for pos, l := range m.lists {
		lists = append(lists, storage.ListRecord{UUID: l.UUID, Name: l.Name, Color: string(l.Color), Position: pos})
		visit(l.TaskIDs)
	}
	return lists, tasks
}

func taskRecord(t model.Task, pos int) storage.TaskRecord {
	return storage.TaskRecord{
		ID:          t.ID,
		Name:        t.Name,
		Size:        int(t.Size),
		Importance:  int(t.Importance),
		Due:         t.Due,
		Completed:   t.Completed,
		Deleted:     t.Deleted,
		ListUUID:    t.List,
		ParentID:    t.ParentID,
		Position:    pos,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// Restore replaces the arena with what repo holds. No events are published.
func (m *Manager) Restore(ctx context.Context, repo storage.TaskRepository) error {
	storedLists, err := repo.ListLists(ctx)
	if err != nil {
		return fmt.Errorf("load lists: %w", err)
	}
	storedTasks, err := repo.ListTasks(ctx, storage.TaskListFilter{IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	lists := make([]*model.List, 0, len(storedLists))
	byList := make(map[string]*model.List, len(storedLists))
	for _, rec := range storedLists {
		l := &model.List{UUID: rec.UUID, Name: rec.Name, Color: model.Color(rec.Color)}
		if !l.Color.IsValid() {
			l.Color = model.ColorFromName(rec.Name)
		}
		lists = append(lists, l)
		byList[l.UUID] = l
	}

	sort.SliceStable(storedTasks, func(i, j int) bool {
		return storedTasks[i].Position < storedTasks[j].Position
	})
	tasks := make(map[string]*model.Task, len(storedTasks))
	for _, rec := range storedTasks {
		tasks[rec.ID] = &model.Task{
			ID:          rec.ID,
			Name:        rec.Name,
			Size:        model.Size(rec.Size),
			Importance:  model.Importance(rec.Importance),
			Due:         rec.Due,
			Completed:   rec.Completed,
			Deleted:     rec.Deleted,
			List:        rec.ListUUID,
			ParentID:    rec.ParentID,
			CreatedAt:   rec.CreatedAt,
			CompletedAt: rec.CompletedAt,
		}
	}
	for _, rec := range storedTasks {
		t := tasks[rec.ID]
		if parent, ok := tasks[t.ParentID]; ok && t.ParentID != "" {
			parent.SubtaskIDs = append(parent.SubtaskIDs, t.ID)
			continue
		}
		t.ParentID = ""
		if l, ok := byList[t.List]; ok {
			l.TaskIDs = append(l.TaskIDs, t.ID)
		}
	}

	m.mu.Lock()
	m.lists = lists
	m.tasks = tasks
	m.mu.Unlock()
	return nil
}
