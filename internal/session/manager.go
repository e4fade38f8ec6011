// Package session owns the live task set. Tasks live in a flat arena keyed by
// id; lists and parents refer to their children by id.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/suggest"
)

const DefaultListName = "inbox"

var (
	ErrTaskNotFound  = errors.New("session: task not found")
	ErrTaskDeleted   = errors.New("session: task is deleted")
	ErrListNotFound  = errors.New("session: list not found")
	ErrDuplicateList = errors.New("session: list already exists")
	ErrAmbiguousID   = errors.New("session: id prefix matches more than one task")
)

// Suggester proposes a due-date shift in days for a new task.
type Suggester interface {
	SuggestOffset(ctx context.Context, size model.Size, importance model.Importance, list string) (int, error)
}

type NewTask struct {
	Name       string
	Size       model.Size
	Importance model.Importance
	Due        time.Time
	// List is a list name or uuid; an unknown name creates the list.
	List string
}

// Patch holds the fields Edit should change; nil fields are left alone.
type Patch struct {
	Name       *string
	Size       *model.Size
	Importance *model.Importance
	Due        *time.Time
}

type Options struct {
	Suggester Suggester
	Clock     clock.Clock
	Logger    *log.Logger
	NewID     func() string
}

type Manager struct {
	mu        sync.RWMutex
	tasks     map[string]*model.Task
	lists     []*model.List
	bus       *Bus
	suggester Suggester
	clock     clock.Clock
	logger    *log.Logger
	newID     func() string
}

func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Manager{
		tasks:     make(map[string]*model.Task),
		bus:       NewBus(),
		suggester: opts.Suggester,
		clock:     opts.Clock,
		logger:    opts.Logger,
		newID:     opts.NewID,
	}
}

func (m *Manager) Bus() *Bus {
	return m.bus
}

// AddTask creates a top-level task. The due date is shifted by the suggester's
// offset; if the suggester fails the requested date is kept as is.
func (m *Manager) AddTask(ctx context.Context, in NewTask) (model.Task, error) {
	if err := validateNew(in); err != nil {
		return model.Task{}, err
	}
	listID, err := m.ensureList(in.List)
	if err != nil {
		return model.Task{}, err
	}
	due := m.suggestedDue(ctx, in, listID)

	m.mu.Lock()
	list := m.listLocked(listID)
	if list == nil {
		m.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	t := m.newTaskLocked(in, due, listID, "")
	list.TaskIDs = append(list.TaskIDs, t.ID)
	snap := t.Clone()
	m.mu.Unlock()

	m.bus.Publish(model.TaskEvent{Kind: model.EventAdd, Task: snap, ListID: listID})
	return snap, nil
}

// AdoptChild creates a subtask of parentID. The subtask always lives in its
// parent's list, whatever in.List says.
func (m *Manager) AdoptChild(ctx context.Context, parentID string, in NewTask) (model.Task, error) {
	if err := validateNew(in); err != nil {
		return model.Task{}, err
	}
	m.mu.RLock()
	parent, ok := m.tasks[parentID]
	var listID string
	if ok {
		listID = parent.List
	}
	deleted := ok && parent.Deleted
	m.mu.RUnlock()
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, parentID)
	}
	if deleted {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskDeleted, parentID)
	}
	due := m.suggestedDue(ctx, in, listID)

	m.mu.Lock()
	parent, ok = m.tasks[parentID]
	if !ok || parent.Deleted {
		m.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, parentID)
	}
	t := m.newTaskLocked(in, due, parent.List, parent.ID)
	parent.SubtaskIDs = append(parent.SubtaskIDs, t.ID)
	snap := t.Clone()
	m.mu.Unlock()

	m.bus.Publish(model.TaskEvent{Kind: model.EventAdopt, Task: snap, ListID: snap.List, ParentID: parentID})
	return snap, nil
}

func validateNew(in NewTask) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("session: task name is required")
	}
	if !in.Size.IsValid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidSize, in.Size)
	}
	if !in.Importance.IsValid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidImportance, in.Importance)
	}
	if in.Due.IsZero() {
		return errors.New("session: task due date is required")
	}
	return nil
}

func (m *Manager) suggestedDue(ctx context.Context, in NewTask, listID string) time.Time {
	if m.suggester == nil {
		return in.Due
	}
	offset, err := m.suggester.SuggestOffset(ctx, in.Size, in.Importance, listID)
	if err != nil {
		m.logger.Printf("Warning: due date suggestion for %q failed, keeping requested date: %v", in.Name, err)
		return in.Due
	}
	return suggest.Apply(in.Due, offset)
}

func (m *Manager) newTaskLocked(in NewTask, due time.Time, listID, parentID string) *model.Task {
	t := &model.Task{
		ID:         m.newID(),
		Name:       strings.TrimSpace(in.Name),
		Size:       in.Size,
		Importance: in.Importance,
		Due:        due,
		List:       listID,
		ParentID:   parentID,
		CreatedAt:  m.clock.Now(),
	}
	m.tasks[t.ID] = t
	return t
}

// Complete marks a task done. Completing a finished task changes nothing.
func (m *Manager) Complete(id string) (model.Task, error) {
	return m.mutate(id, func(t *model.Task) (model.EventKind, bool) {
		if t.Completed {
			return "", false
		}
		now := m.clock.Now()
		t.Completed = true
		t.CompletedAt = &now
		return model.EventComplete, true
	})
}

func (m *Manager) Uncomplete(id string) (model.Task, error) {
	return m.mutate(id, func(t *model.Task) (model.EventKind, bool) {
		if !t.Completed {
			return "", false
		}
		t.Completed = false
		t.CompletedAt = nil
		return model.EventUncomplete, true
	})
}

func (m *Manager) Edit(id string, p Patch) (model.Task, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return model.Task{}, errors.New("session: task name is required")
	}
	if p.Size != nil && !p.Size.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %d", model.ErrInvalidSize, *p.Size)
	}
	if p.Importance != nil && !p.Importance.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %d", model.ErrInvalidImportance, *p.Importance)
	}
	if p.Due != nil && p.Due.IsZero() {
		return model.Task{}, errors.New("session: task due date is required")
	}
	return m.mutate(id, func(t *model.Task) (model.EventKind, bool) {
		if p.Name != nil {
			t.Name = strings.TrimSpace(*p.Name)
		}
		if p.Size != nil {
			t.Size = *p.Size
		}
		if p.Importance != nil {
			t.Importance = *p.Importance
		}
		if p.Due != nil {
			t.Due = *p.Due
		}
		return model.EventEdit, true
	})
}

func (m *Manager) mutate(id string, fn func(*model.Task) (model.EventKind, bool)) (model.Task, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if t.Deleted {
		m.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskDeleted, id)
	}
	kind, changed := fn(t)
	snap := t.Clone()
	m.mu.Unlock()

	if changed {
		m.bus.Publish(model.TaskEvent{Kind: kind, Task: snap, ListID: snap.List, ParentID: snap.ParentID})
	}
	return snap, nil
}

// Delete soft-deletes a task and all of its subtasks, parent first.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	events := make([]model.TaskEvent, 0, 1+len(t.SubtaskIDs))
	m.walkLocked([]string{id}, func(t *model.Task) {
		if t.Deleted {
			return
		}
		t.Deleted = true
		events = append(events, model.TaskEvent{Kind: model.EventDelete, Task: t.Clone(), ListID: t.List, ParentID: t.ParentID})
	})
	m.mu.Unlock()

	for _, ev := range events {
		m.bus.Publish(ev)
	}
	return nil
}

// walkLocked visits ids and their subtasks depth first.
func (m *Manager) walkLocked(ids []string, fn func(*model.Task)) {
	for _, id := range ids {
		t, ok := m.tasks[id]
		if !ok {
			continue
		}
		fn(t)
		m.walkLocked(t.SubtaskIDs, fn)
	}
}

// ActiveTasks returns every open task, subtasks included, in list order.
func (m *Manager) ActiveTasks() []model.Task {
	return m.collect(func(t *model.Task) bool { return t.Active() })
}

// Tasks returns every task that has not been deleted.
func (m *Manager) Tasks() []model.Task {
	return m.collect(func(t *model.Task) bool { return !t.Deleted })
}

func (m *Manager) collect(keep func(*model.Task) bool) []model.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Task, 0, len(m.tasks))
	for _, l := range m.lists {
		m.walkLocked(l.TaskIDs, func(t *model.Task) {
			if keep(t) {
				out = append(out, t.Clone())
			}
		})
	}
	return out
}

func (m *Manager) Task(id string) (model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t.Clone(), nil
}

// Resolve expands a unique id prefix to a full task id.
func (m *Manager) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrTaskNotFound)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.tasks[prefix]; ok {
		return prefix, nil
	}
	match := ""
	for id, t := range m.tasks {
		if t.Deleted || !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, prefix)
	}
	return match, nil
}

func (m *Manager) Lists() []model.List {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.List, 0, len(m.lists))
	for _, l := range m.lists {
		out = append(out, l.Clone())
	}
	return out
}

// List finds a list by uuid or, failing that, by case-insensitive name.
func (m *Manager) List(idOrName string) (model.List, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.findListLocked(idOrName)
	if l == nil {
		return model.List{}, false
	}
	return l.Clone(), true
}

func (m *Manager) NewList(name string, color model.Color) (model.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newListLocked(name, color)
}

func (m *Manager) newListLocked(name string, color model.Color) (model.List, error) {
	name = strings.TrimSpace(name)
	if m.findListLocked(name) != nil {
		return model.List{}, fmt.Errorf("%w: %s", ErrDuplicateList, name)
	}
	l := &model.List{UUID: uuid.NewString(), Name: name, Color: color}
	if err := l.Validate(); err != nil {
		return model.List{}, err
	}
	m.lists = append(m.lists, l)
	return l.Clone(), nil
}

// RenameList changes a list's name; its uuid and color stay fixed.
func (m *Manager) RenameList(listID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("model: list name is required")
	}
	l := m.listLocked(listID)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if other := m.findListLocked(name); other != nil && other != l {
		return fmt.Errorf("%w: %s", ErrDuplicateList, name)
	}
	l.Name = name
	return nil
}

// DeleteList deletes every task in the list and then drops the list.
func (m *Manager) DeleteList(listID string) error {
	m.mu.RLock()
	l := m.listLocked(listID)
	var roots []string
	if l != nil {
		roots = append(roots, l.TaskIDs...)
	}
	m.mu.RUnlock()
	if l == nil {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	for _, id := range roots {
		if err := m.Delete(id); err != nil && !errors.Is(err, ErrTaskNotFound) {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.lists {
		if cur.UUID != listID {
			continue
		}
		m.walkLocked(cur.TaskIDs, func(t *model.Task) { delete(m.tasks, t.ID) })
		m.lists = append(m.lists[:i:i], m.lists[i+1:]...)
		return nil
	}
	return nil
}

func (m *Manager) ensureList(idOrName string) (string, error) {
	if strings.TrimSpace(idOrName) == "" {
		idOrName = DefaultListName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := m.findListLocked(idOrName); l != nil {
		return l.UUID, nil
	}
	l, err := m.newListLocked(idOrName, model.ColorFromName(idOrName))
	if err != nil {
		return "", err
	}
	return l.UUID, nil
}

func (m *Manager) listLocked(listID string) *model.List {
	for _, l := range m.lists {
		if l.UUID == listID {
			return l
		}
	}
	return nil
}

func (m *Manager) findListLocked(idOrName string) *model.List {
	if l := m.listLocked(idOrName); l != nil {
		return l
	}
	key := strings.TrimSpace(idOrName)
	for _, l := range m.lists {
		if strings.EqualFold(l.Name, key) {
			return l
		}
	}
	return nil
}
