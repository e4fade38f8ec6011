package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/commands"
	"github.com/sandeepkv93/duecast/internal/session"
	"github.com/sandeepkv93/duecast/internal/suggest"
)

// Handlers binds the command palette verbs to this app.
func (a *App) Handlers(ctx context.Context) commands.Handlers {
	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			in, err := a.newTask(args)
			if err != nil {
				return commands.Result{}, err
			}
			t, err := a.Tasks.AddTask(ctx, in)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %s %q due %s", shortID(t.ID), t.Name, clock.FormatDue(a.Clock.Now(), t.Due))}, nil
		},
		Sub: func(args commands.SubArgs) (commands.Result, error) {
			parent, err := a.ResolveTask(args.Parent)
			if err != nil {
				return commands.Result{}, err
			}
			in, err := a.newTask(args.Task)
			if err != nil {
				return commands.Result{}, err
			}
			t, err := a.Tasks.AdoptChild(ctx, parent, in)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added subtask %s %q under %s", shortID(t.ID), t.Name, shortID(parent))}, nil
		},
		Done: func(args commands.TargetArgs) (commands.Result, error) {
			return a.onTarget(args, "completed", func(id string) error {
				_, err := a.Tasks.Complete(id)
				return err
			})
		},
		Undo: func(args commands.TargetArgs) (commands.Result, error) {
			return a.onTarget(args, "reopened", func(id string) error {
				_, err := a.Tasks.Uncomplete(id)
				return err
			})
		},
		Delete: func(args commands.TargetArgs) (commands.Result, error) {
			return a.onTarget(args, "deleted", a.Tasks.Delete)
		},
		Suggest: func(args commands.SuggestArgs) (commands.Result, error) {
			s, err := a.SuggestFor(ctx, args)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: DescribeSuggestion(s)}, nil
		},
		CheckIn: a.checkIn,
		List: func(args commands.ListArgs) (commands.Result, error) {
			l, ok := a.Tasks.List(args.List)
			if !ok {
				return commands.Result{}, fmt.Errorf("%w: %s", session.ErrListNotFound, args.List)
			}
			if err := a.Tasks.RenameList(l.UUID, args.Name); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("renamed list %s to %s", l.Name, strings.TrimSpace(args.Name))}, nil
		},
	}
}

// checkIn applies a palette change to the check-in scheduler. Settings changes
// re-arm a pending check-in and try to arm an idle one.
func (a *App) checkIn(args commands.CheckInArgs) (commands.Result, error) {
	var msg string
	switch args.Action {
	case commands.CheckInToggle:
		a.CheckIns.SetEnabled(args.Enabled)
		if !args.Enabled {
			return commands.Result{Message: "check-ins off"}, nil
		}
		msg = "check-ins on"
	case commands.CheckInWindow:
		a.CheckIns.SetStartTime(args.Start)
		a.CheckIns.SetEndTime(args.End)
		msg = fmt.Sprintf("check-ins between %s and %s", args.Start, args.End)
	case commands.CheckInEvery:
		a.CheckIns.SetInterval(args.Interval)
		msg = fmt.Sprintf("check-ins every %d minutes", int(args.Interval.Minutes()))
	case commands.CheckInDays:
		a.CheckIns.SetDaysEnabled(args.Days)
		names := make([]string, 0, 7)
		for d, on := range args.Days {
			if on {
				names = append(names, strings.ToLower(time.Weekday(d).String()[:3]))
			}
		}
		msg = "check-ins on " + strings.Join(names, ",")
	default:
		return commands.Result{}, fmt.Errorf("unknown check-in action %q", args.Action)
	}
	a.CheckIns.Start()
	if !a.CheckIns.IsRunning() {
		msg += " (none due today)"
	}
	return commands.Result{Message: msg}, nil
}

func (a *App) newTask(args commands.AddArgs) (session.NewTask, error) {
	due, err := commands.ParseDue(args.Due, a.Clock.Now())
	if err != nil {
		return session.NewTask{}, err
	}
	return session.NewTask{
		Name:       args.Name,
		Size:       args.Size,
		Importance: args.Importance,
		Due:        due,
		List:       args.List,
	}, nil
}

func (a *App) onTarget(args commands.TargetArgs, verb string, fn func(id string) error) (commands.Result, error) {
	id, err := a.ResolveTask(args.Target)
	if err != nil {
		return commands.Result{}, err
	}
	if err := fn(id); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("%s %s", verb, shortID(id))}, nil
}

// ResolveTask accepts an id, a unique id prefix, or the exact name of a single
// task that has not been deleted.
func (a *App) ResolveTask(ref string) (string, error) {
	id, err := a.Tasks.Resolve(ref)
	if err == nil || !errors.Is(err, session.ErrTaskNotFound) {
		return id, err
	}
	match := ""
	for _, t := range a.Tasks.Tasks() {
		if !strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", session.ErrAmbiguousID, ref)
		}
		match = t.ID
	}
	if match == "" {
		return "", err
	}
	return match, nil
}

// SuggestFor resolves a list name to its uuid before asking the ledger. An
// unknown list has no history.
func (a *App) SuggestFor(ctx context.Context, args commands.SuggestArgs) (suggest.Suggestion, error) {
	name := args.List
	if name == "" {
		name = session.DefaultListName
	}
	l, ok := a.Tasks.List(name)
	if !ok {
		return suggest.Suggestion{Scope: suggest.ScopeNone}, nil
	}
	return a.Ledger.Suggest(ctx, args.Size, args.Importance, l.UUID)
}

func DescribeSuggestion(s suggest.Suggestion) string {
	switch s.Scope {
	case suggest.ScopeNone:
		return "no history yet: offset 0 days"
	case suggest.ScopeScattered:
		return fmt.Sprintf("history too scattered (%d samples): offset 0 days", s.Samples)
	default:
		return fmt.Sprintf("offset %+d days from %d %s samples", s.OffsetDays, s.Samples, s.Scope)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
