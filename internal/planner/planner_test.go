package planner

import (
	"testing"
	"time"

	"github.com/sandeepkv93/duecast/internal/model"
)

// Wednesday.
var now = time.Date(2026, time.March, 4, 15, 30, 0, 0, time.Local)

func task(id string, due time.Time) model.Task {
	return model.Task{ID: id, Name: id, Due: due}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		first time.Weekday
		want  time.Time
	}{
		{time.Sunday, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)},
		{time.Monday, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.Local)},
		{time.Wednesday, time.Date(2026, time.March, 4, 0, 0, 0, 0, time.Local)},
		{time.Thursday, time.Date(2026, time.February, 26, 0, 0, 0, 0, time.Local)},
	}
	for _, tc := range cases {
		if got := WeekStart(now, tc.first); !got.Equal(tc.want) {
			t.Fatalf("WeekStart(%s) = %v, want %v", tc.first, got, tc.want)
		}
	}
}

func TestBuildBucketsTasksByDueDay(t *testing.T) {
	tasks := []model.Task{
		task("monday-early", time.Date(2026, time.March, 2, 0, 5, 0, 0, time.Local)),
		task("wednesday", time.Date(2026, time.March, 4, 23, 59, 0, 0, time.Local)),
		task("sunday-next", time.Date(2026, time.March, 8, 9, 0, 0, 0, time.Local)),
		task("last-week", time.Date(2026, time.February, 28, 9, 0, 0, 0, time.Local)),
		task("next-week", time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local)),
	}
	gone := task("deleted", now)
	gone.Deleted = true
	tasks = append(tasks, gone)

	w := Build(tasks, now, time.Monday, 0)
	if w.Len() != 3 {
		t.Fatalf("expected 3 tasks inside the week, got %d", w.Len())
	}
	if got := w.Days[0].Tasks; len(got) != 1 || got[0].ID != "monday-early" {
		t.Fatalf("monday column = %+v", got)
	}
	if got := w.Days[2].Tasks; len(got) != 1 || got[0].ID != "wednesday" {
		t.Fatalf("wednesday column = %+v", got)
	}
	if got := w.Days[6].Tasks; len(got) != 1 || got[0].ID != "sunday-next" {
		t.Fatalf("sunday column = %+v", got)
	}
	for i, d := range w.Days {
		if d.Today != (i == 2) {
			t.Fatalf("day %d today=%v", i, d.Today)
		}
	}
}

func TestBuildShiftsByWholeWeeks(t *testing.T) {
	tasks := []model.Task{task("next-week", time.Date(2026, time.March, 9, 9, 0, 0, 0, time.Local))}

	w := Build(tasks, now, time.Monday, 1)
	if want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.Local); !w.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", w.Start, want)
	}
	if len(w.Days[0].Tasks) != 1 {
		t.Fatalf("next week should hold the task")
	}
	for _, d := range w.Days {
		if d.Today {
			t.Fatalf("no column of next week is today")
		}
	}

	prev := Build(tasks, now, time.Monday, -1)
	if prev.Len() != 0 || prev.Days[0].Date.Day() != 23 {
		t.Fatalf("previous week should start Feb 23 and be empty, got %v with %d", prev.Days[0].Date, prev.Len())
	}
}
