package core

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// SubscriberFunc receives a full collection snapshot after every mutation of
// that collection: []Book, []ReadingRecord, and so on, or *Account (possibly
// nil) on the reserved session channel. Snapshots are defensive copies; the
// callback may retain them.
type SubscriberFunc func(snapshot any)

// subscription is an opaque handle. Duplicate callback values therefore
// cannot be confused with each other: removal goes through the handle, never
// through callback identity.
type subscription struct {
	id         uint64
	collection Collection
	fn         SubscriberFunc
	active     atomic.Bool
}

// notice is one pending delivery. When only is set the notice targets a
// single subscription (the initial snapshot delivered on subscribe);
// otherwise it fans out to every subscriber of the collection.
type notice struct {
	collection Collection
	payload    any
	only       *subscription
}

// bus fans mutation snapshots out to subscribers. Notices are appended to a
// FIFO queue at commit time (under the store lock, which fixes the global
// order) and drained outside it, so per-collection delivery order always
// equals mutation order and subscribers never run inside the state lock.
type bus struct {
	mu         sync.Mutex // guards subs, queue, seq
	delivering sync.Mutex // serializes drain passes
	seq        uint64
	subs       map[Collection][]*subscription
	queue      []notice
	logger     *zap.Logger
}

func newBus(logger *zap.Logger) *bus {
	return &bus{
		subs:   make(map[Collection][]*subscription),
		logger: logger,
	}
}

func (b *bus) register(collection Collection, fn SubscriberFunc) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &subscription{id: b.seq, collection: collection, fn: fn}
	sub.active.Store(true)
	b.subs[collection] = append(b.subs[collection], sub)
	return sub
}

// unregister is safe to call at any time, including from inside a delivery
// pass; in-flight notices still reach the remaining subscribers.
func (b *bus) unregister(sub *subscription) {
	if sub == nil || !sub.active.CompareAndSwap(true, false) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.collection]
	for i, candidate := range list {
		if candidate.id == sub.id {
			b.subs[sub.collection] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

func (b *bus) enqueue(n notice) {
	b.mu.Lock()
	b.queue = append(b.queue, n)
	b.mu.Unlock()
}

// drain delivers queued notices in FIFO order. A subscriber that mutates the
// store from its callback re-enters drain; TryLock makes that a no-op and the
// already-running pass picks up the new notices, so reentrancy cannot
// deadlock or reorder deliveries.
func (b *bus) drain() {
	if !b.delivering.TryLock() {
		return
	}
	defer b.delivering.Unlock()
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		n := b.queue[0]
		b.queue = b.queue[1:]
		var targets []*subscription
		if n.only != nil {
			targets = []*subscription{n.only}
		} else {
			targets = append(targets, b.subs[n.collection]...)
		}
		b.mu.Unlock()

		for _, sub := range targets {
			if !sub.active.Load() {
				continue
			}
			b.deliver(sub, n.payload)
		}
	}
}

// deliver isolates subscriber panics so one misbehaving callback cannot
// prevent delivery to the rest.
func (b *bus) deliver(sub *subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("subscriber panicked during delivery",
				zap.String("collection", string(sub.collection)),
				zap.Uint64("subscription", sub.id),
				zap.Any("panic", r),
			)
		}
	}()
	sub.fn(payload)
}
