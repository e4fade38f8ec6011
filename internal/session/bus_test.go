package session

import (
	"reflect"
	"testing"

	"github.com/sandeepkv93/duecast/internal/model"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		b.Subscribe(func(model.TaskEvent) { got = append(got, i) })
	}
	b.Publish(model.TaskEvent{Kind: model.EventAdd})
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("delivery order = %v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(func(model.TaskEvent) { calls++ })
	b.Publish(model.TaskEvent{})
	unsub()
	unsub()
	b.Publish(model.TaskEvent{})
	if calls != 1 {
		t.Fatalf("expected one delivery, got %d", calls)
	}
}

func TestListenerMaySubscribeDuringPublish(t *testing.T) {
	b := NewBus()
	late := 0
	b.Subscribe(func(model.TaskEvent) {
		b.Subscribe(func(model.TaskEvent) { late++ })
	})
	b.Publish(model.TaskEvent{})
	if late != 0 {
		t.Fatalf("a listener added mid-publish should wait for the next event")
	}
	b.Publish(model.TaskEvent{})
	if late != 1 {
		t.Fatalf("expected late listener to receive the second event, got %d", late)
	}
}
