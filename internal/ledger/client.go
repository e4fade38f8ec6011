// Package ledger records task create and complete events for the suggestion
// engine. Writes are best effort and never block the caller.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
	"github.com/sandeepkv93/duecast/internal/suggest"
)

const DefaultQueueSize = 64

type Options struct {
	QueueSize int
	Clock     clock.Clock
	Logger    *log.Logger
}

type Client struct {
	repo   storage.DueEventRepository
	engine *suggest.Engine
	clock  clock.Clock
	logger *log.Logger
	w      *writer
}

func New(repo storage.DueEventRepository, engine *suggest.Engine, opts Options) (*Client, error) {
	if repo == nil {
		return nil, errors.New("ledger: nil repository")
	}
	if engine == nil {
		return nil, errors.New("ledger: nil suggestion engine")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	c := &Client{
		repo:   repo,
		engine: engine,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
	c.w = newWriter(opts.QueueSize, func(op writeOp, err error) {
		c.logger.Printf("Warning: ledger %s for task %s failed: %v", op.name, op.taskID, err)
	})
	return c, nil
}

func (c *Client) RecordCreate(taskID, list string, importance model.Importance, size model.Size, due time.Time) {
	c.record(storage.DueEventCreate, taskID, list, importance, size, due)
}

// RecordComplete notes that the task was completed now, relative to due.
func (c *Client) RecordComplete(taskID, list string, importance model.Importance, size model.Size, due time.Time) {
	c.record(storage.DueEventComplete, taskID, list, importance, size, due)
}

func (c *Client) record(kind storage.DueEventKind, taskID, list string, importance model.Importance, size model.Size, due time.Time) {
	ev := storage.DueEvent{
		Kind:       kind,
		RecordedAt: c.clock.Now(),
		TaskID:     taskID,
		List:       list,
		Importance: int(importance),
		Size:       int(size),
		Due:        due,
	}
	c.submit(writeOp{
		name:   "record " + kind.String(),
		taskID: taskID,
		apply: func(ctx context.Context) error {
			return c.repo.UpsertDueEvent(ctx, ev)
		},
	})
}

// RemoveDueEvent deletes the selected rows for taskID. Removing rows that are
// already gone is not an error.
func (c *Client) RemoveDueEvent(taskID string, removeCreate, removeComplete bool) {
	if !removeCreate && !removeComplete {
		c.logger.Printf("Warning: ledger remove for task %s selects no event kind; ignoring", taskID)
		return
	}
	kinds := make([]storage.DueEventKind, 0, 2)
	if removeCreate {
		kinds = append(kinds, storage.DueEventCreate)
	}
	if removeComplete {
		kinds = append(kinds, storage.DueEventComplete)
	}
	c.submit(writeOp{
		name:   "remove",
		taskID: taskID,
		apply: func(ctx context.Context) error {
			_, err := c.repo.DeleteDueEvents(ctx, storage.DueEventFilter{TaskID: taskID, Kinds: kinds})
			return err
		},
	})
}

func (c *Client) submit(op writeOp) {
	if !c.w.enqueue(op) {
		c.logger.Printf("Warning: ledger %s for task %s dropped", op.name, op.taskID)
	}
}

// ClearAll wipes the whole history once pending writes have landed.
func (c *Client) ClearAll(ctx context.Context) error {
	if err := c.w.sync(ctx); err != nil {
		return err
	}
	if err := c.repo.ClearDueEvents(ctx); err != nil {
		return fmt.Errorf("clear due events: %w", err)
	}
	return nil
}

// SuggestOffset reads after every write enqueued before the call.
func (c *Client) SuggestOffset(ctx context.Context, size model.Size, importance model.Importance, list string) (int, error) {
	s, err := c.Suggest(ctx, size, importance, list)
	if err != nil {
		return 0, err
	}
	return s.OffsetDays, nil
}

func (c *Client) Suggest(ctx context.Context, size model.Size, importance model.Importance, list string) (suggest.Suggestion, error) {
	if err := c.w.sync(ctx); err != nil {
		return suggest.Suggestion{}, err
	}
	return c.engine.Suggest(ctx, size, importance, list)
}

// Events returns the rows currently stored for one task.
func (c *Client) Events(ctx context.Context, taskID string) ([]storage.DueEvent, error) {
	if err := c.w.sync(ctx); err != nil {
		return nil, err
	}
	return c.repo.ListDueEvents(ctx, storage.DueEventFilter{TaskID: taskID})
}

func (c *Client) Sync(ctx context.Context) error {
	return c.w.sync(ctx)
}

func (c *Client) Dropped() uint64 {
	return c.w.droppedCount()
}

// Close applies queued writes and stops the writer. It is safe to call twice.
func (c *Client) Close() error {
	c.w.stop()
	return nil
}
