// Package rank orders tasks for the recommendation panes. Every pane is a
// predicate plus a linear score over size, importance and days until due.
package rank

import (
	"sort"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
)

const DefaultLimit = 8

type Pane struct {
	Name    string
	Title   string
	Score   func(task model.Task, dueIn int) float64
	Include func(task model.Task, dueIn int) bool
}

// GetRanked filters tasks through pane, optionally hides anything due today or
// earlier, and returns at most limit tasks by descending score. Equal scores
// keep their input order.
func GetRanked(tasks []model.Task, pane Pane, overdueFilter bool, limit int, now time.Time) []model.Task {
	if limit <= 0 {
		return []model.Task{}
	}
	type scored struct {
		task  model.Task
		score float64
	}
	candidates := make([]scored, 0, len(tasks))
	for _, t := range tasks {
		if !t.Active() {
			continue
		}
		dueIn := clock.DueIn(now, t.Due)
		if pane.Include != nil && !pane.Include(t, dueIn) {
			continue
		}
		if overdueFilter && dueIn <= 0 {
			continue
		}
		var s float64
		if pane.Score != nil {
			s = pane.Score(t, dueIn)
		}
		candidates = append(candidates, scored{task: t, score: s})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]model.Task, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.task)
	}
	return out
}

func size(t model.Task) float64       { return float64(t.Size) }
func importance(t model.Task) float64 { return float64(t.Importance) }

const (
	urgentWithinDays = 2
	importantFrom    = model.ImportanceHigh
)

func urgent(dueIn int) bool       { return dueIn <= urgentWithinDays }
func important(t model.Task) bool { return t.Importance >= importantFrom }
func always(model.Task, int) bool { return true }

var (
	DoFirst = Pane{
		Name:    "do-first",
		Title:   "Do first",
		Include: func(t model.Task, d int) bool { return important(t) && urgent(d) },
		Score:   func(t model.Task, d int) float64 { return 2*importance(t) - float64(d) },
	}
	Schedule = Pane{
		Name:    "schedule",
		Title:   "Schedule",
		Include: func(t model.Task, d int) bool { return important(t) && !urgent(d) },
		Score:   func(t model.Task, d int) float64 { return 2*importance(t) - 0.5*float64(d) },
	}
	Delegate = Pane{
		Name:    "delegate",
		Title:   "Delegate",
		Include: func(t model.Task, d int) bool { return !important(t) && urgent(d) },
		Score:   func(t model.Task, d int) float64 { return importance(t) - float64(d) - 0.5*size(t) },
	}
	Eliminate = Pane{
		Name:    "eliminate",
		Title:   "Eliminate",
		Include: func(t model.Task, d int) bool { return !important(t) && !urgent(d) },
		Score:   func(t model.Task, d int) float64 { return 0.5*float64(d) - 2*importance(t) },
	}
	QuickWins = Pane{
		Name:    "quick-wins",
		Title:   "Quick wins",
		Include: func(t model.Task, _ int) bool { return t.Size <= model.SizeSmall },
		Score:   func(t model.Task, d int) float64 { return 2*(4-size(t)) + importance(t) - 0.25*float64(d) },
	}
	Urgent = Pane{
		Name:    "urgent",
		Title:   "Due soonest",
		Include: always,
		Score:   func(t model.Task, d int) float64 { return 0.5*importance(t) - 2*float64(d) },
	}
	Important = Pane{
		Name:    "important",
		Title:   "Most important",
		Include: always,
		Score:   func(t model.Task, d int) float64 { return 2*importance(t) - 0.25*float64(d) },
	}
	Overwhelmed = Pane{
		Name:    "overwhelmed",
		Title:   "Break these down",
		Include: func(t model.Task, _ int) bool { return t.Size >= model.SizeBig },
		Score:   func(t model.Task, d int) float64 { return 2*size(t) + importance(t) - 0.5*float64(d) },
	}
)

func Eisenhower() []Pane {
	return []Pane{DoFirst, Schedule, Delegate, Eliminate}
}

func Help() []Pane {
	return []Pane{QuickWins, Urgent, Important, Overwhelmed}
}

func PaneByName(name string) (Pane, bool) {
	for _, p := range append(Eisenhower(), Help()...) {
		if p.Name == name {
			return p, true
		}
	}
	return Pane{}, false
}

type Ranked struct {
	Pane  Pane
	Tasks []model.Task
}

// Board ranks a fixed set of panes together.
type Board struct {
	Panes         []Pane
	Limit         int
	OverdueFilter bool
}

func NewBoard(limit int, overdueFilter bool) Board {
	return Board{
		Panes:         append(Eisenhower(), Help()...),
		Limit:         limit,
		OverdueFilter: overdueFilter,
	}
}

func (b Board) Rank(tasks []model.Task, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(b.Panes))
	for _, p := range b.Panes {
		out = append(out, Ranked{Pane: p, Tasks: GetRanked(tasks, p, b.OverdueFilter, b.Limit, now)})
	}
	return out
}
