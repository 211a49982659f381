package bus

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/rankpulse/internal/domain"
	"github.com/pscheid92/rankpulse/internal/metrics"
)

// --- Command types ---

type busCmd interface{ busCmd() }

type subscribeCmd struct {
	listener domain.Listener
	replyCh  chan uuid.UUID
}

func (subscribeCmd) busCmd() {}

type unsubscribeCmd struct {
	id      uuid.UUID
	replyCh chan error
}

func (unsubscribeCmd) busCmd() {}

type notifyCmd struct {
	categories []string
}

func (notifyCmd) busCmd() {}

type countCmd struct {
	replyCh chan int
}

func (countCmd) busCmd() {}

type stopCmd struct{}

func (stopCmd) busCmd() {}

// --- Bus ---

// Bus fans change notifications out to registered listeners.
type Bus struct {
	cmdCh     chan busCmd
	listeners map[uuid.UUID]domain.Listener
	done      chan struct{}
	stopOnce  sync.Once
}

func NewBus() *Bus {
	b := &Bus{
		cmdCh:     make(chan busCmd, 256),
		listeners: make(map[uuid.UUID]domain.Listener),
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bus) run() {
	defer close(b.done)

	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case subscribeCmd:
			id := uuid.New()
			b.listeners[id] = c.listener
			metrics.BusSubscribers.Set(float64(len(b.listeners)))
			slog.Debug("Subscriber registered", "subscription_id", id.String(), "total", len(b.listeners))
			c.replyCh <- id

		case unsubscribeCmd:
			if _, ok := b.listeners[c.id]; !ok {
				c.replyCh <- domain.ErrSubscriptionNotFound
				break
			}
			delete(b.listeners, c.id)
			metrics.BusSubscribers.Set(float64(len(b.listeners)))
			slog.Debug("Subscriber removed", "subscription_id", c.id.String(), "total", len(b.listeners))
			c.replyCh <- nil

		case notifyCmd:
			b.dispatch(c.categories)

		case countCmd:
			c.replyCh <- len(b.listeners)

		case stopCmd:
			return
		}
	}
}

// dispatch invokes every listener once for the batch. Iteration order is
// unspecified across subscribers; within one subscriber, batches arrive in
// commit order because the actor processes notify commands sequentially.
func (b *Bus) dispatch(categories []string) {
	for id, listener := range b.listeners {
		b.safeInvoke(id, listener, categories)
	}
}

func (b *Bus) safeInvoke(id uuid.UUID, listener domain.Listener, categories []string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Subscriber panicked during notification", "subscription_id", id.String(), "panic", r)
			metrics.BusListenerPanicsTotal.Inc()
		}
	}()
	listener(categories)
}

// --- Public API ---

// Subscribe registers a listener and returns its handle.
func (b *Bus) Subscribe(listener domain.Listener) uuid.UUID {
	replyCh := make(chan uuid.UUID, 1)
	b.cmdCh <- subscribeCmd{listener: listener, replyCh: replyCh}
	return <-replyCh
}

// Unsubscribe removes a listener. Returns ErrSubscriptionNotFound for a
// stale or unknown handle.
func (b *Bus) Unsubscribe(id uuid.UUID) error {
	replyCh := make(chan error, 1)
	b.cmdCh <- unsubscribeCmd{id: id, replyCh: replyCh}
	return <-replyCh
}

// Notify delivers one coalesced batch to every subscriber. The call only
// enqueues a command; the mutation path never waits on listeners.
func (b *Bus) Notify(categories []string) {
	b.cmdCh <- notifyCmd{categories: categories}
}

// Count returns the current number of subscribers.
func (b *Bus) Count() int {
	replyCh := make(chan int, 1)
	b.cmdCh <- countCmd{replyCh: replyCh}
	return <-replyCh
}

// Stop shuts the bus down and waits for the actor to exit.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		b.cmdCh <- stopCmd{}
	})
	<-b.done
}
