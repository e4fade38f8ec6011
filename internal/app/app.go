// Package app assembles the duecast components around one data directory.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/sandeepkv93/duecast/internal/checkin"
	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/config"
	"github.com/sandeepkv93/duecast/internal/ledger"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/notify"
	"github.com/sandeepkv93/duecast/internal/planner"
	"github.com/sandeepkv93/duecast/internal/rank"
	"github.com/sandeepkv93/duecast/internal/reminders"
	"github.com/sandeepkv93/duecast/internal/session"
	"github.com/sandeepkv93/duecast/internal/storage"
	"github.com/sandeepkv93/duecast/internal/suggest"
)

var ErrAlreadyRunning = errors.New("another instance of duecast is already running")

type Options struct {
	Clock  clock.Clock
	Logger *log.Logger
	// Desktop replaces the host notifier; nil builds one from settings.
	Desktop notify.Notifier
	// Rand feeds check-in jitter.
	Rand  func() float64
	NewID func() string
}

// App holds the application state and dependencies.
type App struct {
	Settings  config.Settings
	Clock     clock.Clock
	Repo      *storage.SQLiteRepository
	Engine    *suggest.Engine
	Ledger    *ledger.Client
	Tasks     *session.Manager
	CheckIns  *checkin.Scheduler
	Reminders *reminders.Scheduler
	InApp     *notify.Recorder

	logger   *log.Logger
	lockFile *flock.Flock
	focused  atomic.Bool
	unsubs   []func()
	watch    sync.Once

	hookMu sync.Mutex
	hook   func(notify.Notification)

	closeOnce sync.Once
	closeErr  error
}

// New opens the data directory and wires every component. The tasks stored in
// the database are restored before any listener is attached.
func New(cfg config.Settings, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{Settings: cfg, Clock: opts.Clock, logger: opts.Logger, InApp: notify.NewRecorder()}
	if err := a.acquireLock(); err != nil {
		return nil, err
	}

	repo, err := storage.OpenSQLite(cfg.DBPath())
	if err != nil {
		a.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.Repo = repo

	if err := a.wire(opts); err != nil {
		_ = repo.Close()
		a.releaseLock()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(opts Options) error {
	cfg := a.Settings
	agg, err := suggest.AggregatorByName(cfg.Suggest.Statistic)
	if err != nil {
		return err
	}
	engine, err := suggest.NewEngine(a.Repo, suggest.Config{
		Aggregator: agg,
		MaxStdev:   cfg.MaxStdev(),
		MinSamples: suggest.DefaultMinSamples,
	})
	if err != nil {
		return err
	}
	a.Engine = engine

	client, err := ledger.New(a.Repo, engine, ledger.Options{
		QueueSize: cfg.Storage.LedgerQueue,
		Clock:     opts.Clock,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	a.Ledger = client

	a.Tasks = session.NewManager(session.Options{
		Suggester: client,
		Clock:     opts.Clock,
		Logger:    a.logger,
		NewID:     opts.NewID,
	})
	if err := a.Tasks.Restore(context.Background(), a.Repo); err != nil {
		_ = client.Close()
		return fmt.Errorf("restore tasks: %w", err)
	}

	desktop := opts.Desktop
	if desktop == nil {
		desktop = notify.NewDesktop(cfg.Notifications.Desktop)
	}
	dispatcher := notify.Dispatcher{
		Focused: a.focused.Load,
		InApp:   notify.Func(a.dispatchInApp),
		Desktop: desktop,
	}

	days, err := cfg.CheckIn.Weekdays()
	if err != nil {
		_ = client.Close()
		return err
	}
	a.CheckIns = checkin.New(checkin.Config{
		Start:    cfg.CheckIn.Start,
		End:      cfg.CheckIn.End,
		Interval: cfg.CheckIn.Interval(),
		Days:     days,
		Enabled:  cfg.CheckIn.Enabled,
	}, dispatcher, checkin.Options{Clock: opts.Clock, Rand: opts.Rand, Logger: a.logger})

	a.Reminders = reminders.New(a.Tasks, dispatcher, reminders.Config{
		Enabled:        cfg.Reminders.Enabled,
		BufferDays:     cfg.Reminders.BufferDays,
		NextUpMinDueIn: cfg.Reminders.NextUpMinDueIn,
	}, reminders.Options{Clock: opts.Clock, Logger: a.logger})

	bus := a.Tasks.Bus()
	a.unsubs = append(a.unsubs,
		bus.Subscribe(session.LedgerListener(client)),
		bus.Subscribe(session.PersistListener(a.Tasks, a.Repo, a.logger)),
	)
	return nil
}

func (a *App) dispatchInApp(title, body string) error {
	if err := a.InApp.Dispatch(title, body); err != nil {
		return err
	}
	a.hookMu.Lock()
	hook := a.hook
	a.hookMu.Unlock()
	if hook != nil {
		hook(notify.Notification{Title: title, Body: body, At: a.Clock.Now()})
	}
	return nil
}

// OnInApp registers fn to receive every in-app notification after it is recorded.
func (a *App) OnInApp(fn func(notify.Notification)) {
	a.hookMu.Lock()
	a.hook = fn
	a.hookMu.Unlock()
}

// Start arms check-ins, refreshes reminders on every later task event and
// sends the reminders that are already due. One-shot commands never call it,
// so they do not repeat reminders a running instance already sent.
func (a *App) Start() int {
	a.watch.Do(func() {
		a.unsubs = append(a.unsubs, a.Tasks.Bus().Subscribe(func(model.TaskEvent) { a.Reminders.Refresh() }))
	})
	a.CheckIns.Start()
	return a.Reminders.Refresh()
}

// SetFocused switches notification routing. Gaining focus restarts an idle
// check-in scheduler and refreshes reminders.
func (a *App) SetFocused(focused bool) {
	was := a.focused.Swap(focused)
	if focused && !was {
		a.CheckIns.OnFocus()
		a.Reminders.Refresh()
	}
}

func (a *App) Focused() bool {
	return a.focused.Load()
}

// Board ranks the active tasks with the configured recommendation settings.
func (a *App) Board() rank.Board {
	return rank.NewBoard(a.Settings.Recommendations.ListLength, a.Settings.Recommendations.OverdueFilter)
}

// Week lays out the planner week offset whole weeks from the current one.
func (a *App) Week(offset int) planner.Week {
	first, err := a.Settings.Planner.Weekday()
	if err != nil {
		first = time.Sunday
	}
	return planner.Build(a.Tasks.Tasks(), a.Clock.Now(), first, offset)
}

// ClearHistory removes every due event once pending ledger writes have landed.
func (a *App) ClearHistory(ctx context.Context) error {
	return a.Ledger.ClearAll(ctx)
}

// acquireLock acquires an exclusive file lock to prevent multiple instances.
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Settings.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	return nil
}

func (a *App) releaseLock() {
	if a.lockFile != nil {
		_ = a.lockFile.Unlock()
	}
}

// Close stops the schedulers, flushes the ledger, saves the task set, and
// releases the database and lock. Later calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.CheckIns != nil {
			a.CheckIns.Stop()
		}
		for _, unsub := range a.unsubs {
			unsub()
		}
		if a.Ledger != nil {
			if err := a.Ledger.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close ledger: %w", err))
			}
		}
		if a.Tasks != nil && a.Repo != nil {
			if err := a.Tasks.Snapshot(context.Background(), a.Repo); err != nil {
				errs = append(errs, fmt.Errorf("failed to save tasks: %w", err))
			}
		}
		if a.Repo != nil {
			if err := a.Repo.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}
		a.releaseLock()
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
