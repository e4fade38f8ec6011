package reminders

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/notify"
)

var now = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type staticSource struct {
	tasks []model.Task
}

func (s *staticSource) ActiveTasks() []model.Task {
	return append([]model.Task(nil), s.tasks...)
}

func task(id string, dueIn int) model.Task {
	return model.Task{
		ID:   id,
		Name: "task " + id,
		Due:  clock.AddDays(time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), dueIn),
	}
}

func newTestScheduler(src TaskSource, cfg Config) (*Scheduler, *notify.Recorder) {
	rec := notify.NewRecorder()
	return New(src, rec, cfg, Options{Clock: clock.NewManual(now)}), rec
}

func TestOverdueTaskNotifiedOncePerEpoch(t *testing.T) {
	src := &staticSource{tasks: []model.Task{task("late", -2)}}
	s, rec := newTestScheduler(src, DefaultConfig())

	if got := s.Refresh(); got != 1 {
		t.Fatalf("first refresh dispatched %d, want 1", got)
	}
	if got := s.Refresh(); got != 0 {
		t.Fatalf("second refresh dispatched %d, want 0", got)
	}
	all := rec.All()
	if len(all) != 1 {
		t.Fatalf("expected one notification, got %d", len(all))
	}
	if !strings.Contains(all[0].Body, "due 2 day(s) ago") {
		t.Fatalf("unexpected overdue body: %q", all[0].Body)
	}
}

func TestPartitionBoundaries(t *testing.T) {
	src := &staticSource{tasks: []model.Task{
		task("d4", 4), task("d3", 3), task("d2", 2), task("d1", 1), task("d0", 0), task("dm1", -1),
	}}
	s, _ := newTestScheduler(src, DefaultConfig())
	s.Refresh()
	b := s.Buckets()

	ids := func(tasks []model.Task) string {
		out := make([]string, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, t.ID)
		}
		return strings.Join(out, ",")
	}
	if got := ids(b.Overdue); got != "dm1" {
		t.Fatalf("overdue = %q", got)
	}
	if got := ids(b.Today); got != "d0" {
		t.Fatalf("today = %q", got)
	}
	if got := ids(b.NextUp); got != "d2,d3" {
		t.Fatalf("next up = %q (tomorrow is excluded by default)", got)
	}

	s.SetNextUpMinDueIn(1)
	s.Refresh()
	if got := ids(s.Buckets().NextUp); got != "d1,d2,d3" {
		t.Fatalf("next up with boundary 1 = %q", got)
	}

	s.SetBufferDays(4)
	s.Refresh()
	if got := ids(s.Buckets().NextUp); got != "d1,d2,d3,d4" {
		t.Fatalf("next up with buffer 4 = %q", got)
	}
}

func TestDispatchOrderOverdueTodayNextUp(t *testing.T) {
	src := &staticSource{tasks: []model.Task{task("soon", 2), task("today", 0), task("late", -3), task("later", -1)}}
	s, rec := newTestScheduler(src, DefaultConfig())
	s.Refresh()

	var order []string
	for _, n := range rec.All() {
		order = append(order, strings.TrimSuffix(strings.TrimPrefix(n.Title, "Checked in on task "), "!"))
	}
	if got := strings.Join(order, ","); got != "late,later,today,soon" {
		t.Fatalf("dispatch order = %q", got)
	}
}

func TestCompletedAndDeletedTasksAreExcluded(t *testing.T) {
	done := task("done", -1)
	done.Completed = true
	gone := task("gone", 0)
	gone.Deleted = true
	src := &staticSource{tasks: []model.Task{done, gone}}
	s, rec := newTestScheduler(src, DefaultConfig())

	if got := s.Refresh(); got != 0 || rec.Len() != 0 {
		t.Fatalf("inactive tasks should never be reminded, got %d", got)
	}
}

func TestTaskLeavingBucketsBecomesEligibleAgain(t *testing.T) {
	src := &staticSource{tasks: []model.Task{task("t", 0)}}
	s, rec := newTestScheduler(src, DefaultConfig())
	s.Refresh()

	src.tasks[0].Completed = true
	s.Refresh()
	if s.Notified("t") {
		t.Fatalf("completed task should leave the notified set")
	}

	src.tasks[0].Completed = false
	if got := s.Refresh(); got != 1 {
		t.Fatalf("uncompleted task should be reminded again, got %d", got)
	}
	if rec.Len() != 2 {
		t.Fatalf("expected two reminders in total, got %d", rec.Len())
	}
}

func TestDisabledRemindersDoNotMarkTasks(t *testing.T) {
	src := &staticSource{tasks: []model.Task{task("t", -1)}}
	cfg := DefaultConfig()
	cfg.Enabled = false
	s, rec := newTestScheduler(src, cfg)

	if got := s.Refresh(); got != 0 || s.Notified("t") {
		t.Fatalf("disabled reminders dispatched %d", got)
	}
	if len(s.Buckets().Overdue) != 1 {
		t.Fatalf("buckets should still be computed while disabled")
	}

	s.SetEnabled(true)
	if got := s.Refresh(); got != 1 || rec.Len() != 1 {
		t.Fatalf("enabling reminders should notify pending tasks, got %d", got)
	}
}

func TestDispatchFailureStillMarksTask(t *testing.T) {
	calls := 0
	n := notify.Func(func(string, string) error {
		calls++
		return errors.New("no notification daemon")
	})
	s := New(&staticSource{tasks: []model.Task{task("t", 0)}}, n, DefaultConfig(), Options{Clock: clock.NewManual(now)})
	s.Refresh()
	s.Refresh()
	if calls != 1 {
		t.Fatalf("failed dispatch should not be retried, got %d calls", calls)
	}
}

func TestMessagePhrasing(t *testing.T) {
	tk := model.Task{Name: "Taxes"}
	cases := []struct {
		dueIn int
		want  string
	}{
		{-3, "It was due 3 day(s) ago!"},
		{0, "It's due today!"},
		{2, "You have 2 day(s) until it's due!"},
	}
	for _, tc := range cases {
		title, body := Message(tk, tc.dueIn)
		if title != "Checked in on Taxes!" {
			t.Fatalf("title = %q", title)
		}
		if !strings.HasSuffix(body, tc.want) || !strings.HasPrefix(body, "Have you made any progress on Taxes?") {
			t.Fatalf("dueIn=%d body = %q", tc.dueIn, body)
		}
	}
}
