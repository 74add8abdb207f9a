package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"playday/pkg/model"

	"github.com/google/uuid"
)

var ErrBrokerClosed = errors.New("feed broker is closed")

// Filter matches events whose attributes equal every listed value.
type Filter map[string]string

func (f Filter) Matches(event model.ChangeEvent) bool {
	for key, want := range f {
		if event.Attributes[key] != want {
			return false
		}
	}
	return true
}

// Broker fans change events out to live subscribers. Topics are collection names.
type Broker interface {
	Publish(ctx context.Context, event model.ChangeEvent) error
	Subscribe(ctx context.Context, topic string, filter Filter) (*Subscription, error)
}

// Subscription is a registered listener. Close releases it and is safe to call more than once.
type Subscription struct {
	ID      string
	Topic   string
	events  chan model.ChangeEvent
	filter  Filter
	dropped atomic.Int64
	once    sync.Once
	release func()
}

func (s *Subscription) Events() <-chan model.ChangeEvent {
	return s.events
}

// Dropped counts events discarded because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription) Close() {
	s.once.Do(s.release)
}

// MemoryBroker delivers events within one process.
type MemoryBroker struct {
	mu         sync.RWMutex
	topics     map[string]map[string]*Subscription
	bufferSize int
	closed     bool
}

func NewMemoryBroker(bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &MemoryBroker{
		topics:     make(map[string]map[string]*Subscription),
		bufferSize: bufferSize,
	}
}

func (b *MemoryBroker) Subscribe(_ context.Context, topic string, filter Filter) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	sub := &Subscription{
		ID:     uuid.NewString(),
		Topic:  topic,
		events: make(chan model.ChangeEvent, b.bufferSize),
		filter: filter,
	}
	sub.release = func() { b.remove(sub) }

	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*Subscription)
	}
	b.topics[topic][sub.ID] = sub
	return sub, nil
}

func (b *MemoryBroker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(b.topics, sub.Topic)
	}
	close(sub.events)
}

// Publish never blocks: a subscriber with a full buffer misses the event.
func (b *MemoryBroker) Publish(_ context.Context, event model.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for _, sub := range b.topics[event.Collection] {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			sub.dropped.Add(1)
		}
	}
	return nil
}

// Count returns the number of live subscriptions on topic.
func (b *MemoryBroker) Count(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Stop closes every subscription; subscribers see their channel close.
func (b *MemoryBroker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.topics {
		for id, sub := range subs {
			delete(subs, id)
			close(sub.events)
		}
		delete(b.topics, topic)
	}
}
