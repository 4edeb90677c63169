package eventbus

import "sync"

// Callback receives one published event. Callbacks run outside the bus's
// lock, so they may themselves call Publish, Subscribe, or Unsubscribe
// without deadlocking.
type Callback func(Record)

type subscription struct {
	id           uint32
	category     Category
	allCategories bool
	cb           Callback
}

// Bus fans published events out to interested subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID uint32
	subs   []subscription
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{nextID: 1}
}

// Subscribe registers cb for events in a single category, returning a
// subscription ID usable with Unsubscribe.
func (b *Bus) Subscribe(cat Category, cb Callback) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, category: cat, cb: cb})
	return id
}

// SubscribeAll registers cb for every category.
func (b *Bus) SubscribeAll(cb Callback) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription{id: id, allCategories: true, cb: cb})
	return id
}

// Unsubscribe removes a subscription by ID. Unsubscribing an unknown or
// already-removed ID is a no-op.
func (b *Bus) Unsubscribe(subID uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.subs[:0]
	for _, s := range b.subs {
		if s.id != subID {
			kept = append(kept, s)
		}
	}
	b.subs = kept
}

// Publish delivers event to every matching subscriber. The subscriber list
// is snapshotted under the lock and then the lock is released before any
// callback runs, so a callback that subscribes, unsubscribes, or publishes
// again cannot deadlock against this call.
func (b *Bus) Publish(event Record) {
	b.mu.Lock()
	toCall := make([]Callback, 0, len(b.subs))
	for _, s := range b.subs {
		if s.allCategories || s.category == event.Category {
			toCall = append(toCall, s.cb)
		}
	}
	b.mu.Unlock()

	for _, cb := range toCall {
		cb(event)
	}
}
