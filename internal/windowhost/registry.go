package windowhost

import (
	"fmt"
	"sort"
	"sync"
)

// registry tracks open windows by label. It is the host's only shared mutable
// state; every public Host method goes through it.
type registry struct {
	mu      sync.RWMutex
	windows map[string]Window
}

func newRegistry() *registry {
	return &registry{
		windows: make(map[string]Window),
	}
}

// add registers a window, failing if the label is already taken.
func (r *registry) add(w Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := w.Label()
	if _, exists := r.windows[label]; exists {
		return fmt.Errorf("window label already registered: %s", label)
	}
	r.windows[label] = w
	return nil
}

func (r *registry) remove(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, label)
}

func (r *registry) get(label string) (Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[label]
	return w, ok
}

// snapshot returns the open windows sorted by label for deterministic
// enumeration.
func (r *registry) snapshot() []Window {
	r.mu.RLock()
	defer r.mu.RUnlock()

	windows := make([]Window, 0, len(r.windows))
	for _, w := range r.windows {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Label() < windows[j].Label()
	})
	return windows
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}
