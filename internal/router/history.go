package router

import "sync"

// History is the navigation stack the router drives, the equivalent of a browser's
// session history.
type History interface {
	// Location is the path the history currently points at.
	Location() string
	// PushState adds path as a new entry after the current one. It does not fire pop-state.
	PushState(path string)
	Back() bool
	Forward() bool
	// OnPopState registers fn for back/forward moves.
	OnPopState(fn func(path string)) (remove func())
}

// MemoryHistory is an in-process History. Pushing truncates forward entries.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewMemoryHistory starts at initial, normalized the way Navigate normalizes paths.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{
		entries:   []string{normalize(initial)},
		listeners: make(map[int]func(string)),
	}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

func (h *MemoryHistory) PushState(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], path)
	h.index++
}

// Back moves one entry back and fires pop-state. It reports false at the first entry.
func (h *MemoryHistory) Back() bool {
	return h.step(-1)
}

// Forward moves one entry forward and fires pop-state. It reports false at the last entry.
func (h *MemoryHistory) Forward() bool {
	return h.step(1)
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *MemoryHistory) OnPopState(fn func(path string)) (remove func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *MemoryHistory) step(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	path := h.entries[next]
	listeners := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
	return true
}
