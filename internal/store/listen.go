package store

import "sync"

// Listen layers a live subscription on top of Watch: fetch runs once
// immediately and again after every committed write to the collection, and
// each successful result is pushed to the returned channel. The channel
// holds the latest value only; a slow consumer sees the freshest result
// set, not every intermediate one. The returned stop func must be called
// exactly once on teardown; it is safe on all exit paths because repeated
// calls are no-ops.
func Listen[T any](s *Store, collection string, fetch func() (T, bool)) (<-chan T, func()) {
	updates := make(chan T, 1)
	ticks, cancelWatch := s.Watch(collection)
	done := make(chan struct{})

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancelWatch()
			close(done)
		})
	}

	go func() {
		defer close(updates)

		emit := func() {
			value, ok := fetch()
			if !ok {
				return
			}
			for {
				select {
				case updates <- value:
					return
				default:
					// Drop the stale value and try again.
					select {
					case <-updates:
					default:
					}
				}
			}
		}

		emit()
		for {
			select {
			case <-done:
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return updates, stop
}
