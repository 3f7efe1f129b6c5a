// Package windowhost implements the window manager behind the session-window
// commands. Wails runs one webview window per process, so every additional
// top-level window is a child instance of the running binary; the parent
// drives focus, close, event delivery and title-bar theming over a loopback
// WebSocket control channel.
package windowhost

import "context"

// Window is a single top-level window managed by a Host.
type Window interface {
	Label() string
	Title() string
	Focus() error
	Close() error
	Emit(event, payload string) error
	SetTitlebarColor(color uint32) error
}

// Host is the window manager the application shell talks to. Implementations
// must be safe for concurrent use: command handlers run on independent
// goroutines with no ordering guarantees between them.
type Host interface {
	// CreateWindow opens a new window. The label must be unique among open
	// windows; creation fails if it is already taken.
	CreateWindow(ctx context.Context, opts WindowOptions) (Window, error)
	// GetWindow looks up an open window by label.
	GetWindow(label string) (Window, bool)
	// Windows returns a point-in-time snapshot of all open windows.
	Windows() []Window
}

// WindowOptions describes a window to be created.
type WindowOptions struct {
	Label     string
	Title     string
	URL       string // front-end route, including query string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
}

// Default window geometry for detached session windows.
const (
	DefaultWindowWidth  = 1000
	DefaultWindowHeight = 700
	DefaultMinWidth     = 600
	DefaultMinHeight    = 400
)

// applyGeometryDefaults fills zero geometry fields with the standard
// session-window sizes.
func applyGeometryDefaults(opts *WindowOptions) {
	if opts.Width <= 0 {
		opts.Width = DefaultWindowWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultWindowHeight
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = DefaultMinWidth
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = DefaultMinHeight
	}
}
