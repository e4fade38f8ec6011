package session

import (
	"context"
	"log"
	"time"

	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
)

// LedgerWriter is the write side of the due-event ledger.
type LedgerWriter interface {
	RecordCreate(taskID, list string, importance model.Importance, size model.Size, due time.Time)
	RecordComplete(taskID, list string, importance model.Importance, size model.Size, due time.Time)
	RemoveDueEvent(taskID string, removeCreate, removeComplete bool)
}

// LedgerListener keeps the ledger in step with task lifecycle events.
func LedgerListener(l LedgerWriter) Listener {
	return func(ev model.TaskEvent) {
		t := ev.Task
		switch ev.Kind {
		case model.EventAdd, model.EventAdopt:
			l.RecordCreate(t.ID, t.List, t.Importance, t.Size, t.Due)
		case model.EventComplete:
			l.RecordComplete(t.ID, t.List, t.Importance, t.Size, t.Due)
		case model.EventUncomplete:
			l.RemoveDueEvent(t.ID, false, true)
		case model.EventDelete:
			l.RemoveDueEvent(t.ID, true, true)
		}
	}
}

// PersistListener saves the whole arena after every change.
func PersistListener(m *Manager, repo storage.TaskRepository, logger *log.Logger) Listener {
	return func(model.TaskEvent) {
		if err := m.Snapshot(context.Background(), repo); err != nil && logger != nil {
			logger.Printf("Warning: save tasks: %v", err)
		}
	}
}
