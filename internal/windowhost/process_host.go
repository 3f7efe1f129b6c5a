package windowhost

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"sessiondock/internal/infrastructure/logging"
)

// ProcessHost realizes each window as a child instance of the running binary.
// Children join the control channel at startup; every Window method is a
// command cycle over that channel.
type ProcessHost struct {
	cfg      *Config
	logger   logging.Logger
	token    string
	exePath  string
	registry *registry
	server   *controlServer

	pendMu  sync.Mutex
	pending map[string]chan Window
}

// NewProcessHost creates a host with a fresh control-channel token. Start must
// be called before CreateWindow.
func NewProcessHost(cfg *Config, logger logging.Logger) (*ProcessHost, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid windowhost config: %w", err)
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}

	h := &ProcessHost{
		cfg:      cfg,
		logger:   logger,
		token:    uuid.NewString(),
		exePath:  exePath,
		registry: newRegistry(),
		pending:  make(map[string]chan Window),
	}
	h.server = newControlServer(cfg, logger, h.token, controlHooks{
		Register: h.handleRegister,
		Ready:    h.handleReady,
		Gone:     h.handleGone,
	})
	return h, nil
}

// Start brings up the control channel.
func (h *ProcessHost) Start(ctx context.Context) error {
	return h.server.start()
}

// ControlAddr returns the control channel's bound address.
func (h *ProcessHost) ControlAddr() string {
	return h.server.addr()
}

// Shutdown closes every open window best-effort and stops the control server.
func (h *ProcessHost) Shutdown(ctx context.Context) error {
	for _, w := range h.registry.snapshot() {
		if err := w.Close(); err != nil {
			h.logger.Debug("window close during shutdown failed",
				"label", w.Label(), "error", err.Error())
		}
	}
	return h.server.stop(ctx)
}

// handleRegister claims the label in the registry while the handshake is
// still in flight. The waiter is released in handleReady, after the ack has
// been written, so the first command cannot race the handshake.
func (h *ProcessHost) handleRegister(wc *windowConn, req registerRequest) error {
	w := &hostWindow{
		label: req.Label,
		title: req.Title,
		host:  h,
		conn:  wc,
	}
	if err := h.registry.add(w); err != nil {
		return err
	}
	h.logger.Info("session window registered", "label", req.Label)
	return nil
}

func (h *ProcessHost) handleReady(label string) {
	w, ok := h.registry.get(label)
	if !ok {
		return
	}

	h.pendMu.Lock()
	waiter, pending := h.pending[label]
	delete(h.pending, label)
	h.pendMu.Unlock()

	if pending {
		waiter <- w // buffered, never blocks
	}
}

func (h *ProcessHost) handleGone(label string) {
	h.registry.remove(label)
}

// CreateWindow spawns a window process and waits for it to register.
func (h *ProcessHost) CreateWindow(ctx context.Context, opts WindowOptions) (Window, error) {
	if opts.Label == "" {
		return nil, fmt.Errorf("window label is required")
	}
	if h.server.addr() == "" {
		return nil, fmt.Errorf("window host is not started")
	}
	if _, exists := h.registry.get(opts.Label); exists {
		return nil, fmt.Errorf("window label already registered: %s", opts.Label)
	}
	applyGeometryDefaults(&opts)

	waiter := make(chan Window, 1)
	h.pendMu.Lock()
	if _, inFlight := h.pending[opts.Label]; inFlight {
		h.pendMu.Unlock()
		return nil, fmt.Errorf("window %s is already being created", opts.Label)
	}
	h.pending[opts.Label] = waiter
	h.pendMu.Unlock()

	defer func() {
		h.pendMu.Lock()
		delete(h.pending, opts.Label)
		h.pendMu.Unlock()
	}()

	cmd := exec.Command(h.exePath, spawnArgs(opts)...)
	cmd.Env = append(os.Environ(),
		controlAddrEnv+"="+h.server.addr(),
		controlTokenEnv+"="+h.token,
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn window process: %w", err)
	}
	h.logger.Info("window process spawned",
		"label", opts.Label, "pid", cmd.Process.Pid, "url", opts.URL)

	// Reap the process and drop the window once it exits, whatever the cause.
	go func() {
		err := cmd.Wait()
		h.registry.remove(opts.Label)
		if err != nil {
			h.logger.Debug("window process exited", "label", opts.Label, "error", err.Error())
			return
		}
		h.logger.Info("window process exited", "label", opts.Label)
	}()

	select {
	case w := <-waiter:
		return w, nil
	case <-time.After(h.cfg.SpawnTimeout):
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("window %s did not register within %s", opts.Label, h.cfg.SpawnTimeout)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return nil, ctx.Err()
	}
}

// GetWindow looks up an open window by label.
func (h *ProcessHost) GetWindow(label string) (Window, bool) {
	return h.registry.get(label)
}

// Windows returns a snapshot of all open windows.
func (h *ProcessHost) Windows() []Window {
	return h.registry.snapshot()
}

func spawnArgs(opts WindowOptions) []string {
	return []string{
		"-session-window",
		"-label", opts.Label,
		"-title", opts.Title,
		"-route", opts.URL,
		"-width", strconv.Itoa(opts.Width),
		"-height", strconv.Itoa(opts.Height),
		"-min-width", strconv.Itoa(opts.MinWidth),
		"-min-height", strconv.Itoa(opts.MinHeight),
	}
}

// hostWindow is the parent-side Window implementation backed by a child
// process's control connection.
type hostWindow struct {
	label string
	title string
	host  *ProcessHost
	conn  *windowConn
}

func (w *hostWindow) Label() string { return w.label }
func (w *hostWindow) Title() string { return w.title }

func (w *hostWindow) Focus() error {
	return w.conn.request(controlRequest{Type: cmdFocus})
}

// Close asks the window to quit. The registry entry is dropped as soon as the
// window acknowledges; the process reaper covers windows that die unasked.
func (w *hostWindow) Close() error {
	if err := w.conn.request(controlRequest{Type: cmdClose}); err != nil {
		return err
	}
	w.host.registry.remove(w.label)
	w.conn.close()
	return nil
}

func (w *hostWindow) Emit(event, payload string) error {
	return w.conn.request(controlRequest{Type: cmdEmit, Event: event, Payload: payload})
}

func (w *hostWindow) SetTitlebarColor(color uint32) error {
	return w.conn.request(controlRequest{Type: cmdTheme, Color: color})
}
