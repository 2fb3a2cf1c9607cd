// Package state holds the per-screen-area observable state values and the
// holders that fold repository results into them. Every mutating holder
// method follows the same contract: set the loading flag, run the
// operation, merge the result or an error message, and always clear
// loading before returning.
package state

import "sync"

// Value is a single observable state snapshot. Reads return the current
// snapshot, writes replace it atomically, and subscribers receive the
// newest snapshot after every write. Subscriber channels coalesce: a slow
// consumer sees the freshest snapshot, not every intermediate one.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[int]chan T
	next int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[int]chan T)}
}

// Get returns the current snapshot.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set replaces the snapshot and notifies subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.cur = val
	v.broadcast()
	v.mu.Unlock()
}

// Update applies f to the current snapshot under the lock, so concurrent
// read-modify-write pairs cannot lose each other's fields, and returns the
// new snapshot.
func (v *Value[T]) Update(f func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = f(v.cur)
	v.broadcast()
	return v.cur
}

// Subscribe registers a coalescing channel that receives every snapshot
// written after this call. The cancel func must be called on teardown;
// repeated calls are no-ops.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = ch
	v.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast pushes the current snapshot to every subscriber, dropping the
// stale buffered value first. Caller holds v.mu.
func (v *Value[T]) broadcast() {
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v.cur:
		default:
		}
	}
}
