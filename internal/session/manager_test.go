package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
)

var now = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

type fixedSuggester struct {
	offset int
	err    error
	lists  []string
}

func (f *fixedSuggester) SuggestOffset(_ context.Context, _ model.Size, _ model.Importance, list string) (int, error) {
	f.lists = append(f.lists, list)
	return f.offset, f.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%02d", n)
	}
}

func newTestManager(s Suggester) *Manager {
	return NewManager(Options{Suggester: s, Clock: clock.NewManual(now), NewID: sequentialIDs()})
}

func newTask(name string, dueIn int) NewTask {
	return NewTask{Name: name, Size: model.SizeMedium, Importance: model.ImportanceNormal, Due: clock.AddDays(now, dueIn), List: "work"}
}

type recordingLedger struct {
	calls []string
}

func (r *recordingLedger) RecordCreate(id, list string, _ model.Importance, _ model.Size, _ time.Time) {
	r.calls = append(r.calls, "create "+id)
}

func (r *recordingLedger) RecordComplete(id, list string, _ model.Importance, _ model.Size, _ time.Time) {
	r.calls = append(r.calls, "complete "+id)
}

func (r *recordingLedger) RemoveDueEvent(id string, create, complete bool) {
	r.calls = append(r.calls, fmt.Sprintf("remove %s %v %v", id, create, complete))
}

func TestAddTaskAppliesSuggestion(t *testing.T) {
	s := &fixedSuggester{offset: -2}
	m := newTestManager(s)

	got, err := m.AddTask(context.Background(), newTask("report", 5))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if want := clock.AddDays(now, 3); !got.Due.Equal(want) {
		t.Fatalf("due = %s want %s", got.Due, want)
	}
	l, ok := m.List("work")
	if !ok {
		t.Fatalf("list should be created implicitly")
	}
	if got.List != l.UUID || len(s.lists) != 1 || s.lists[0] != l.UUID {
		t.Fatalf("suggestion should be scoped to the task's list: task=%q asked=%v", got.List, s.lists)
	}
	if l.Color != model.ColorFromName("work") {
		t.Fatalf("implicit list color = %q", l.Color)
	}
}

func TestAddTaskFallsBackWhenSuggestionFails(t *testing.T) {
	m := newTestManager(&fixedSuggester{offset: -9, err: errors.New("ledger unavailable")})
	in := newTask("report", 5)
	got, err := m.AddTask(context.Background(), in)
	if err != nil {
		t.Fatalf("add should not fail when the suggestion does: %v", err)
	}
	if !got.Due.Equal(in.Due) {
		t.Fatalf("due should be unmodified, got %s", got.Due)
	}
}

func TestAddTaskValidation(t *testing.T) {
	m := newTestManager(nil)
	bad := []NewTask{
		{Name: " ", Due: now},
		{Name: "x", Size: 9, Due: now},
		{Name: "x", Importance: -1, Due: now},
		{Name: "x"},
	}
	for i, in := range bad {
		if _, err := m.AddTask(context.Background(), in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if _, err := m.AddTask(context.Background(), NewTask{Name: "x", Size: 9, Due: now}); !errors.Is(err, model.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestAdoptChildInheritsParentList(t *testing.T) {
	s := &fixedSuggester{}
	m := newTestManager(s)
	parent, err := m.AddTask(context.Background(), newTask("release", 7))
	if err != nil {
		t.Fatalf("add parent: %v", err)
	}
	in := newTask("changelog", 6)
	in.List = "home"
	child, err := m.AdoptChild(context.Background(), parent.ID, in)
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if child.List != parent.List || child.ParentID != parent.ID {
		t.Fatalf("child should inherit parent's list: %#v", child)
	}
	if s.lists[1] != parent.List {
		t.Fatalf("child suggestion should use the parent's list, got %q", s.lists[1])
	}
	if _, ok := m.List("home"); ok {
		t.Fatalf("adopting should not create the requested list")
	}
	p, _ := m.Task(parent.ID)
	if !reflect.DeepEqual(p.SubtaskIDs, []string{child.ID}) {
		t.Fatalf("parent subtasks = %v", p.SubtaskIDs)
	}
	if _, err := m.AdoptChild(context.Background(), "missing", in); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestLifecycleEventsReachLedgerInOrder(t *testing.T) {
	m := newTestManager(nil)
	led := &recordingLedger{}
	var order []string
	m.Bus().Subscribe(func(ev model.TaskEvent) { order = append(order, "first:"+string(ev.Kind)) })
	m.Bus().Subscribe(LedgerListener(led))
	unsub := m.Bus().Subscribe(func(ev model.TaskEvent) { order = append(order, "third:"+string(ev.Kind)) })

	ctx := context.Background()
	parent, _ := m.AddTask(ctx, newTask("p", 3))
	child, _ := m.AdoptChild(ctx, parent.ID, newTask("c", 3))
	unsub()
	if _, err := m.Complete(child.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := m.Complete(child.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if _, err := m.Uncomplete(child.ID); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	name := "renamed"
	if _, err := m.Edit(parent.ID, Patch{Name: &name}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := m.Delete(parent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	wantLedger := []string{
		"create task-01",
		"create task-02",
		"complete task-02",
		"remove task-02 false true",
		"remove task-01 true true",
		"remove task-02 true true",
	}
	if !reflect.DeepEqual(led.calls, wantLedger) {
		t.Fatalf("ledger calls:\n got %v\nwant %v", led.calls, wantLedger)
	}
	wantOrder := []string{"first:add", "third:add", "first:adopt", "third:adopt", "first:complete", "first:uncomplete", "first:edit", "first:delete", "first:delete"}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Fatalf("listener order:\n got %v\nwant %v", order, wantOrder)
	}
}

func TestActiveTasksFlattensDepthFirst(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()
	a, _ := m.AddTask(ctx, newTask("a", 1))
	a1, _ := m.AdoptChild(ctx, a.ID, newTask("a1", 1))
	_, _ = m.AdoptChild(ctx, a1.ID, newTask("a1x", 1))
	b, _ := m.AddTask(ctx, newTask("b", 1))
	home := newTask("h", 1)
	home.List = "home"
	_, _ = m.AddTask(ctx, home)
	_, _ = m.Complete(b.ID)

	var names []string
	for _, t := range m.ActiveTasks() {
		names = append(names, t.Name)
	}
	if got := strings.Join(names, ","); got != "a,a1,a1x,h" {
		t.Fatalf("active tasks = %q", got)
	}
	if got := len(m.Tasks()); got != 5 {
		t.Fatalf("tasks should include completed ones, got %d", got)
	}

	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := len(m.ActiveTasks()); got != 1 {
		t.Fatalf("delete should cascade to subtasks, %d active left", got)
	}
	if _, err := m.Complete(a1.ID); !errors.Is(err, ErrTaskDeleted) {
		t.Fatalf("expected ErrTaskDeleted, got %v", err)
	}
}

func TestResolvePrefix(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		if _, err := m.AddTask(ctx, newTask(fmt.Sprint(i), 1)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if id, err := m.Resolve("task-1"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("expected ambiguity, got %q %v", id, err)
	}
	if id, err := m.Resolve("task-11"); err != nil || id != "task-11" {
		t.Fatalf("exact id: %q %v", id, err)
	}
	if id, err := m.Resolve("task-05"); err != nil || id != "task-05" {
		t.Fatalf("prefix: %q %v", id, err)
	}
	if _, err := m.Resolve("zzz"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListManagement(t *testing.T) {
	m := newTestManager(nil)
	l, err := m.NewList("Errands", model.ColorGreen)
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	if _, err := m.NewList("errands", model.ColorRed); !errors.Is(err, ErrDuplicateList) {
		t.Fatalf("expected ErrDuplicateList, got %v", err)
	}
	if _, err := m.NewList("bad", "mauve"); !errors.Is(err, model.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if err := m.RenameList(l.UUID, "Shopping"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, ok := m.List(l.UUID)
	if !ok || got.Name != "Shopping" || got.Color != model.ColorGreen {
		t.Fatalf("rename should keep uuid and color: %#v", got)
	}

	led := &recordingLedger{}
	m.Bus().Subscribe(LedgerListener(led))
	in := newTask("milk", 1)
	in.List = "shopping"
	task, err := m.AddTask(context.Background(), in)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.List != l.UUID {
		t.Fatalf("task should land in the existing list")
	}
	if err := m.DeleteList(l.UUID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if len(m.Lists()) != 0 || len(m.Tasks()) != 0 {
		t.Fatalf("list and its tasks should be gone")
	}
	if last := led.calls[len(led.calls)-1]; last != "remove "+task.ID+" true true" {
		t.Fatalf("deleting a list should clear its tasks' history, got %q", last)
	}
	if err := m.DeleteList(l.UUID); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("expected ErrListNotFound, got %v", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	ctx := t.Context()

	m := newTestManager(nil)
	a, _ := m.AddTask(ctx, newTask("a", 1))
	a1, _ := m.AdoptChild(ctx, a.ID, newTask("a1", 2))
	_, _ = m.AdoptChild(ctx, a.ID, newTask("a2", 3))
	home := newTask("h", 4)
	home.List = "home"
	h, _ := m.AddTask(ctx, home)
	_, _ = m.Complete(a1.ID)
	if err := m.Snapshot(ctx, repo); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := newTestManager(nil)
	if err := restored.Restore(ctx, repo); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(names(restored.Tasks()), names(m.Tasks())) {
		t.Fatalf("restored order %v want %v", names(restored.Tasks()), names(m.Tasks()))
	}
	got, err := restored.Task(a1.ID)
	if err != nil {
		t.Fatalf("restored task: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil || got.ParentID != a.ID {
		t.Fatalf("restored child: %#v", got)
	}
	parent, _ := restored.Task(a.ID)
	if len(parent.SubtaskIDs) != 2 {
		t.Fatalf("restored parent subtasks: %v", parent.SubtaskIDs)
	}

	if err := m.Delete(h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	homeList, _ := m.List("home")
	if err := m.DeleteList(homeList.UUID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if err := m.Snapshot(ctx, repo); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	lists, err := repo.ListLists(ctx)
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != "work" {
		t.Fatalf("stale list should be removed from storage: %#v", lists)
	}
	if _, err := repo.GetTask(ctx, h.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stale task should be removed from storage, got %v", err)
	}
}

func names(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}
