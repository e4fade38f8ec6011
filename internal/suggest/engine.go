// Package suggest learns how late or early tasks of a given shape get done and
// turns that bias into a due-date adjustment for new tasks.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
)

const (
	DefaultMaxStdev   = 3 * 24 * time.Hour
	DefaultMinSamples = 1
)

// History is the read side of the due-event ledger.
type History interface {
	ListDueEvents(ctx context.Context, filter storage.DueEventFilter) ([]storage.DueEvent, error)
}

type Scope string

const (
	ScopeNone      Scope = "none"
	ScopeExact     Scope = "exact"
	ScopeList      Scope = "list"
	ScopeScattered Scope = "scattered"
)

type Suggestion struct {
	OffsetDays int
	Samples    int
	Center     time.Duration
	Stdev      time.Duration
	Scope      Scope
}

type Config struct {
	Aggregator Aggregator
	// MaxStdev disables the adjustment when samples disagree by more than this.
	// Zero or negative turns the guard off.
	MaxStdev   time.Duration
	MinSamples int
}

func DefaultConfig() Config {
	return Config{
		Aggregator: Mean,
		MaxStdev:   DefaultMaxStdev,
		MinSamples: DefaultMinSamples,
	}
}

type Engine struct {
	history History
	cfg     Config
}

func NewEngine(history History, cfg Config) (*Engine, error) {
	if history == nil {
		return nil, errors.New("suggest: nil history")
	}
	if cfg.Aggregator == nil {
		cfg.Aggregator = Mean
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}
	return &Engine{history: history, cfg: cfg}, nil
}

func (e *Engine) SuggestOffset(ctx context.Context, size model.Size, importance model.Importance, list string) (int, error) {
	s, err := e.Suggest(ctx, size, importance, list)
	if err != nil {
		return 0, err
	}
	return s.OffsetDays, nil
}

// Suggest looks for completed tasks with the same list, size and importance and,
// failing that, for any completed task in the same list.
func (e *Engine) Suggest(ctx context.Context, size model.Size, importance model.Importance, list string) (Suggestion, error) {
	sz, imp := int(size), int(importance)
	deltas, err := e.deltas(ctx, storage.DueEventFilter{List: list, Size: &sz, Importance: &imp})
	if err != nil {
		return Suggestion{}, err
	}
	scope := ScopeExact
	if len(deltas) < e.cfg.MinSamples {
		deltas, err = e.deltas(ctx, storage.DueEventFilter{List: list})
		if err != nil {
			return Suggestion{}, err
		}
		scope = ScopeList
	}
	if len(deltas) < e.cfg.MinSamples {
		return Suggestion{Samples: len(deltas), Scope: ScopeNone}, nil
	}

	out := Suggestion{
		Samples: len(deltas),
		Center:  e.cfg.Aggregator(deltas),
		Stdev:   stdev(deltas),
		Scope:   scope,
	}
	if e.cfg.MaxStdev > 0 && out.Stdev > e.cfg.MaxStdev {
		out.Scope = ScopeScattered
		return out, nil
	}
	out.OffsetDays = offsetDays(out.Center)
	return out, nil
}

// deltas pairs create and complete rows by task id and returns, per completed
// task, how long after the originally set due date it was finished.
func (e *Engine) deltas(ctx context.Context, filter storage.DueEventFilter) ([]time.Duration, error) {
	events, err := e.history.ListDueEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load due events: %w", err)
	}
	created := make(map[string]storage.DueEvent, len(events))
	completed := make([]storage.DueEvent, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case storage.DueEventCreate:
			created[ev.TaskID] = ev
		case storage.DueEventComplete:
			completed = append(completed, ev)
		}
	}
	out := make([]time.Duration, 0, len(completed))
	for _, done := range completed {
		start, ok := created[done.TaskID]
		if !ok {
			continue
		}
		out = append(out, done.RecordedAt.Sub(start.Due))
	}
	return out, nil
}

// offsetDays converts a lateness delta into a due-date shift: late work pulls
// the next due date earlier.
func offsetDays(center time.Duration) int {
	days := math.Round(float64(center) / float64(24*time.Hour))
	if days == 0 {
		return 0
	}
	return int(-days)
}

// Apply shifts due by whole calendar days.
func Apply(due time.Time, offsetDays int) time.Time {
	if offsetDays == 0 {
		return due
	}
	return clock.AddDays(due, offsetDays)
}
