// Package planner lays tasks out over a week of day columns.
package planner

import (
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
)

type Day struct {
	Date  time.Time
	Today bool
	Tasks []model.Task
}

type Week struct {
	Start time.Time
	Days  [7]Day
}

// WeekStart returns midnight of the latest day on or before t that falls on first.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	day := clock.StartOfDay(t)
	back := (int(day.Weekday()) - int(first) + 7) % 7
	return clock.AddDays(day, -back)
}

// Build places each task in the column of its due day. offset moves the week
// by whole weeks from the one holding now. Tasks due outside the week are
// left out.
func Build(tasks []model.Task, now time.Time, first time.Weekday, offset int) Week {
	w := Week{Start: clock.AddDays(WeekStart(now, first), 7*offset)}
	for i := range w.Days {
		date := clock.AddDays(w.Start, i)
		w.Days[i] = Day{Date: date, Today: clock.SameDay(date, now)}
	}
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		for i := range w.Days {
			if clock.SameDay(w.Days[i].Date, t.Due) {
				w.Days[i].Tasks = append(w.Days[i].Tasks, t)
				break
			}
		}
	}
	return w
}

// Len reports how many tasks the week holds.
func (w Week) Len() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Tasks)
	}
	return n
}
