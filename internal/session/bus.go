package session

import (
	"sync"

	"github.com/sandeepkv93/duecast/internal/model"
)

type Listener func(model.TaskEvent)

type subscription struct {
	id int
	fn Listener
}

// Bus delivers task events synchronously to every listener in the order they
// subscribed.
type Bus struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it again.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(ev model.TaskEvent) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}
