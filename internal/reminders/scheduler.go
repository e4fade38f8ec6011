// Package reminders sorts active tasks into overdue, today and next-up buckets
// and reminds about each task at most once while it stays in a bucket.
package reminders

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/notify"
)

type TaskSource interface {
	ActiveTasks() []model.Task
}

type Bucket int

const (
	BucketOverdue Bucket = iota
	BucketToday
	BucketNextUp
)

func (b Bucket) String() string {
	switch b {
	case BucketOverdue:
		return "overdue"
	case BucketToday:
		return "today"
	case BucketNextUp:
		return "next up"
	default:
		return "unknown"
	}
}

type Config struct {
	Enabled    bool
	BufferDays int
	// NextUpMinDueIn is the smallest due-in that counts as next up. The default of
	// 2 leaves tasks due tomorrow out of every bucket.
	NextUpMinDueIn int
}

func DefaultConfig() Config {
	return Config{Enabled: true, BufferDays: 3, NextUpMinDueIn: 2}
}

type Buckets struct {
	Overdue []model.Task
	Today   []model.Task
	NextUp  []model.Task
}

func (b Buckets) Len() int {
	return len(b.Overdue) + len(b.Today) + len(b.NextUp)
}

type Options struct {
	Clock  clock.Clock
	Logger *log.Logger
}

type Scheduler struct {
	mu       sync.Mutex
	src      TaskSource
	notifier notify.Notifier
	clock    clock.Clock
	logger   *log.Logger
	cfg      Config
	notified map[string]struct{}
	buckets  Buckets
}

func New(src TaskSource, notifier notify.Notifier, cfg Config, opts Options) *Scheduler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		src:      src,
		notifier: notifier,
		clock:    opts.Clock,
		logger:   opts.Logger,
		cfg:      cfg,
		notified: make(map[string]struct{}),
	}
}

// Refresh re-buckets the active tasks and dispatches a reminder for every
// bucketed task not already reminded about. It returns how many were sent.
func (s *Scheduler) Refresh() int {
	s.mu.Lock()
	now := s.clock.Now()
	buckets := partition(s.src.ActiveTasks(), now, s.cfg)

	type pending struct {
		task  model.Task
		dueIn int
	}
	next := make(map[string]struct{}, buckets.Len())
	send := make([]pending, 0)
	for _, group := range [][]model.Task{buckets.Overdue, buckets.Today, buckets.NextUp} {
		for _, task := range group {
			if _, ok := s.notified[task.ID]; ok {
				next[task.ID] = struct{}{}
				continue
			}
			if !s.cfg.Enabled {
				continue
			}
			next[task.ID] = struct{}{}
			send = append(send, pending{task: task, dueIn: clock.DueIn(now, task.Due)})
		}
	}
	s.notified = next
	s.buckets = buckets
	s.mu.Unlock()

	for _, p := range send {
		title, body := Message(p.task, p.dueIn)
		if err := s.notifier.Dispatch(title, body); err != nil {
			s.logger.Printf("Warning: reminder for task %s failed: %v", p.task.ID, err)
		}
	}
	return len(send)
}

// Buckets returns the partitions computed by the last Refresh.
func (s *Scheduler) Buckets() Buckets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Buckets{
		Overdue: append([]model.Task(nil), s.buckets.Overdue...),
		Today:   append([]model.Task(nil), s.buckets.Today...),
		NextUp:  append([]model.Task(nil), s.buckets.NextUp...),
	}
}

func (s *Scheduler) Notified(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[taskID]
	return ok
}

func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.cfg.Enabled = enabled
	s.mu.Unlock()
}

func (s *Scheduler) SetBufferDays(days int) {
	s.mu.Lock()
	s.cfg.BufferDays = days
	s.mu.Unlock()
}

func (s *Scheduler) SetNextUpMinDueIn(days int) {
	s.mu.Lock()
	s.cfg.NextUpMinDueIn = days
	s.mu.Unlock()
}

func partition(tasks []model.Task, now time.Time, cfg Config) Buckets {
	active := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Active() {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Due.Before(active[j].Due)
	})

	var out Buckets
	for _, t := range active {
		dueIn := clock.DueIn(now, t.Due)
		switch {
		case dueIn < 0:
			out.Overdue = append(out.Overdue, t)
		case dueIn == 0:
			out.Today = append(out.Today, t)
		case dueIn >= cfg.NextUpMinDueIn && dueIn <= cfg.BufferDays:
			out.NextUp = append(out.NextUp, t)
		}
	}
	return out
}

// Message returns the reminder text for a task due dueIn days from today.
func Message(task model.Task, dueIn int) (string, string) {
	title := fmt.Sprintf("Checked in on %s!", task.Name)
	switch {
	case dueIn < 0:
		return title, fmt.Sprintf("Have you made any progress on %s? It was due %d day(s) ago!", task.Name, -dueIn)
	case dueIn == 0:
		return title, fmt.Sprintf("Have you made any progress on %s? It's due today!", task.Name)
	default:
		return title, fmt.Sprintf("Have you made any progress on %s? You have %d day(s) until it's due!", task.Name, dueIn)
	}
}
