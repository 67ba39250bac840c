// Package notify provides a small generic observer registry.
//
// Components publish values of type E and subscribers receive them
// synchronously on the publishing goroutine. Observers are called in
// subscription order and never while the notifier's lock is held, so an
// observer may call back into the component that published the value.
// Publishers that need a total order across goroutines serialize their own
// calls to Notify.
package notify

import (
	"sort"
	"sync"
)

// Observer is called for each published value.
type Observer[E any] func(value E)

// Subscription represents an active observer subscription.
type Subscription struct {
	id     uint64
	cancel func(id uint64)
	once   sync.Once
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(func() {
		s.cancel(s.id)
	})
}

// Notifier manages subscriptions for values of type E.
type Notifier[E any] struct {
	mu sync.RWMutex

	observers map[uint64]Observer[E]
	nextID    uint64

	closed bool
}

// New creates a new Notifier.
func New[E any]() *Notifier[E] {
	return &Notifier[E]{
		observers: make(map[uint64]Observer[E]),
	}
}

// Subscribe registers an observer. Subscribing to a closed notifier returns
// an inert subscription.
func (n *Notifier[E]) Subscribe(observer Observer[E]) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || observer == nil {
		return &Subscription{}
	}

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{
		id:     id,
		cancel: n.unsubscribe,
	}
}

// Len returns the number of active observers.
func (n *Notifier[E]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify publishes a value to all observers.
func (n *Notifier[E]) Notify(value E) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	n.deliver(value)
}

// Close drops all observers; later Notify calls do nothing.
// It is safe to call Close multiple times.
func (n *Notifier[E]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	clear(n.observers)
}

func (n *Notifier[E]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls every observer in subscription order.
func (n *Notifier[E]) deliver(value E) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer[E], 0, len(ids))
	for _, id := range ids {
		observers = append(observers, n.observers[id])
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(value)
	}
}
