package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sessiondock/internal/windowhost"
)

// MockHost implements the windowhost.Host interface for testing
type MockHost struct {
	mu          sync.RWMutex
	windows     map[string]*MockWindow
	createCalls int
	failCreate  bool
}

// NewMockHost creates a new mock host for testing
func NewMockHost() *MockHost {
	return &MockHost{
		windows: make(map[string]*MockWindow),
	}
}

// SetFailCreate configures the mock to refuse window creation
func (h *MockHost) SetFailCreate(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failCreate = fail
}

// CreateCalls returns how many times CreateWindow was invoked
func (h *MockHost) CreateCalls() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.createCalls
}

// AddWindow registers a pre-existing window, bypassing CreateWindow. Tests
// use it to simulate windows the host already manages, session or otherwise.
func (h *MockHost) AddWindow(label string) *MockWindow {
	h.mu.Lock()
	defer h.mu.Unlock()

	w := &MockWindow{label: label}
	h.windows[label] = w
	return w
}

// CreateWindow implements windowhost.Host
func (h *MockHost) CreateWindow(ctx context.Context, opts windowhost.WindowOptions) (windowhost.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.createCalls++
	if h.failCreate {
		return nil, fmt.Errorf("simulated create failure")
	}
	if _, exists := h.windows[opts.Label]; exists {
		return nil, fmt.Errorf("window label already registered: %s", opts.Label)
	}

	w := &MockWindow{
		label: opts.Label,
		title: opts.Title,
		url:   opts.URL,
	}
	h.windows[opts.Label] = w
	return w, nil
}

// GetWindow implements windowhost.Host
func (h *MockHost) GetWindow(label string) (windowhost.Window, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	w, ok := h.windows[label]
	if !ok {
		return nil, false
	}
	return w, true
}

// Windows implements windowhost.Host
func (h *MockHost) Windows() []windowhost.Window {
	h.mu.RLock()
	defer h.mu.RUnlock()

	labels := make([]string, 0, len(h.windows))
	for label := range h.windows {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	windows := make([]windowhost.Window, 0, len(labels))
	for _, label := range labels {
		windows = append(windows, h.windows[label])
	}
	return windows
}

// MockWindow implements the windowhost.Window interface for testing
type MockWindow struct {
	mu    sync.Mutex
	label string
	title string
	url   string

	focusCalls int
	closeCalls int
	emitted    []EmittedEvent
	colors     []uint32

	failFocus bool
	failClose bool
	failEmit  bool
}

// EmittedEvent records one Emit call
type EmittedEvent struct {
	Name    string
	Payload string
}

// SetFailureModes configures the mock window to simulate failures
func (w *MockWindow) SetFailureModes(focus, close, emit bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failFocus = focus
	w.failClose = close
	w.failEmit = emit
}

// URL returns the route the window was created with
func (w *MockWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

// FocusCalls returns how many times Focus was invoked
func (w *MockWindow) FocusCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focusCalls
}

// CloseCalls returns how many times Close was invoked
func (w *MockWindow) CloseCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeCalls
}

// Emitted returns the events delivered to this window
func (w *MockWindow) Emitted() []EmittedEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]EmittedEvent, len(w.emitted))
	copy(out, w.emitted)
	return out
}

// Colors returns the title bar colors applied to this window
func (w *MockWindow) Colors() []uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]uint32, len(w.colors))
	copy(out, w.colors)
	return out
}

// Label implements windowhost.Window
func (w *MockWindow) Label() string { return w.label }

// Title implements windowhost.Window
func (w *MockWindow) Title() string { return w.title }

// Focus implements windowhost.Window
func (w *MockWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.focusCalls++
	if w.failFocus {
		return fmt.Errorf("simulated focus failure")
	}
	return nil
}

// Close implements windowhost.Window
func (w *MockWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeCalls++
	if w.failClose {
		return fmt.Errorf("simulated close failure")
	}
	return nil
}

// Emit implements windowhost.Window
func (w *MockWindow) Emit(event, payload string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.failEmit {
		return fmt.Errorf("simulated emit failure")
	}
	w.emitted = append(w.emitted, EmittedEvent{Name: event, Payload: payload})
	return nil
}

// SetTitlebarColor implements windowhost.Window
func (w *MockWindow) SetTitlebarColor(color uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.colors = append(w.colors, color)
	return nil
}

// mockTitlebar captures caption colors applied to the main window
type mockTitlebar struct {
	mu     sync.Mutex
	colors []uint32
	fail   bool
}

func (m *mockTitlebar) SetCaptionColor(color uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return fmt.Errorf("simulated caption failure")
	}
	m.colors = append(m.colors, color)
	return nil
}
