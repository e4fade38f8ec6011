package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("ledger: client closed")

type writeOp struct {
	name   string
	taskID string
	apply  func(ctx context.Context) error
	// barrier ops carry no write; done is closed once every earlier op ran.
	done chan struct{}
}

// writer applies ledger writes in order on one goroutine.
type writer struct {
	mu      sync.Mutex
	queue   chan writeOp
	stopCh  chan struct{}
	doneCh  chan struct{}
	stopped bool
	dropped uint64
	onError func(op writeOp, err error)
}

func newWriter(bufferSize int, onError func(writeOp, error)) *writer {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	w := &writer{
		queue:   make(chan writeOp, bufferSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		onError: onError,
	}
	go w.loop()
	return w
}

// enqueue never blocks; a full queue or a stopped writer drops the op.
func (w *writer) enqueue(op writeOp) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		atomic.AddUint64(&w.dropped, 1)
		return false
	}
	select {
	case w.queue <- op:
		return true
	default:
		atomic.AddUint64(&w.dropped, 1)
		return false
	}
}

// sync blocks until every op enqueued before the call has been applied.
func (w *writer) sync(ctx context.Context) error {
	barrier := writeOp{name: "sync", done: make(chan struct{})}
	select {
	case w.queue <- barrier:
	case <-w.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-barrier.done:
		return nil
	case <-w.doneCh:
		select {
		case <-barrier.done:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		<-w.doneCh
		return
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()
	<-w.doneCh
}

func (w *writer) droppedCount() uint64 {
	return atomic.LoadUint64(&w.dropped)
}

func (w *writer) loop() {
	defer close(w.doneCh)
	for {
		select {
		case op := <-w.queue:
			w.run(op)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		select {
		case op := <-w.queue:
			w.run(op)
		default:
			return
		}
	}
}

func (w *writer) run(op writeOp) {
	if op.done != nil {
		close(op.done)
		return
	}
	if err := op.apply(context.Background()); err != nil && w.onError != nil {
		w.onError(op, err)
	}
}
