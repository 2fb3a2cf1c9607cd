package store

import "sync"

// hub fans out per-collection change notifications. Each watcher gets a
// buffered channel of one; notifications coalesce while the watcher is
// busy, so a slow consumer sees at least one signal for any burst of
// writes.
type hub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[int]chan struct{})}
}

func (h *hub) watch(collection string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	perCol, ok := h.watchers[collection]
	if !ok {
		perCol = make(map[int]chan struct{})
		h.watchers[collection] = perCol
	}
	perCol[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if perCol, ok := h.watchers[collection]; ok {
			if _, ok := perCol[id]; ok {
				delete(perCol, id)
				close(ch)
			}
			if len(perCol) == 0 {
				delete(h.watchers, collection)
			}
		}
	}

	return ch, cancel
}

func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
