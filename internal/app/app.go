package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"sessiondock/internal/infrastructure/errors"
	"sessiondock/internal/infrastructure/logging"
	"sessiondock/internal/platform"
	"sessiondock/internal/services"
	"sessiondock/internal/types"
	"sessiondock/internal/windowhost"
)

// shutdownTimeout bounds how long window teardown may take on exit
const shutdownTimeout = 10 * time.Second

// Options select how this instance participates in the window topology: the
// main instance hosts the session windows, a session-window instance is one.
type Options struct {
	SessionWindow bool
	Label         string
	Title         string
	Route         string
}

// App struct represents the main application
type App struct {
	ctx      context.Context
	opts     Options
	logger   logging.Logger
	titlebar platform.TitlebarAPI

	// main instance only
	host    *windowhost.ProcessHost
	windows *services.SessionWindowService

	// session-window instance only
	client *windowhost.Client
}

// NewApp creates a new App struct with dependency injection
func NewApp(opts Options) (*App, error) {
	logger := logging.NewDefaultLogger()
	titlebar := platform.NewTitlebarAPI()

	a := &App{
		opts:     opts,
		logger:   logger,
		titlebar: titlebar,
	}

	if !opts.SessionWindow {
		config := windowhost.ConfigForEnvironment(os.Getenv("SESSIONDOCK_ENV"))
		host, err := windowhost.NewProcessHost(config, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize window host: %w", err)
		}
		a.host = host
		a.windows = services.NewSessionWindowService(host, titlebar, logger)
	}

	return a, nil
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	if a.opts.SessionWindow {
		a.joinControlChannel(ctx)
		return
	}

	if err := a.host.Start(ctx); err != nil {
		// Degrade gracefully: the main window still works, detaching does not.
		a.logger.Error("window host failed to start, detaching tabs is unavailable",
			"error", err.Error())
		return
	}
	a.logger.Info("application started", "control_addr", a.host.ControlAddr())
}

// joinControlChannel connects a session-window instance back to its parent.
func (a *App) joinControlChannel(ctx context.Context) {
	client, err := windowhost.NewClientFromEnv(a.opts.Label, a.opts.Title, &wailsBridge{app: a}, a.logger)
	if err != nil {
		a.logger.Error("session window has no parent to join", "error", err.Error())
		return
	}
	if err := client.Connect(ctx); err != nil {
		a.logger.Error("failed to join control channel", "error", err.Error())
		return
	}
	a.client = client
	go client.Run()
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Debug("control channel close failed", "error", err.Error())
		}
	}
	if a.host != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := a.host.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("window host shutdown incomplete", "error", err.Error())
		}
	}
	a.logger.Info("application shutdown completed")
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}

// StartupRoute returns the front-end route this window should open. The main
// window always starts at the root; session windows carry the query string
// their create request was built from.
func (a *App) StartupRoute() string {
	if a.opts.Route == "" {
		return "/"
	}
	return a.opts.Route
}

// requireHost guards the commands only the main instance can serve.
func (a *App) requireHost(op string) error {
	if a.windows == nil {
		return errors.NewValidationError(op,
			fmt.Errorf("window management commands are only available in the main window"))
	}
	return nil
}

// SetTitlebarTheme recolors the native title bars for the given theme. In a
// session window it applies to that window alone; in the main instance it
// fans out to every open window.
func (a *App) SetTitlebarTheme(isDark bool) error {
	if a.windows == nil {
		if err := a.titlebar.SetCaptionColor(platform.ColorForTheme(isDark)); err != nil {
			a.logger.Debug("titlebar color not applied", "error", err.Error())
		}
		return nil
	}
	return a.windows.SetTitlebarTheme(isDark)
}

// CreateSessionWindow opens (or focuses) the window for a detached tab
func (a *App) CreateSessionWindow(params types.CreateSessionWindowParams) (*types.WindowCreationResult, error) {
	const op = "create_session_window"
	if err := a.requireHost(op); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := a.windows.CreateSessionWindow(a.ctx, params)
	if err != nil {
		logging.LogWindowError(a.logger, err, op, map[string]interface{}{"tab_id": params.TabID})
		return nil, err
	}
	logging.LogWindowOperation(a.logger, op, time.Since(start), map[string]interface{}{
		"window_label": result.WindowLabel,
	})
	return result, nil
}

// CloseSessionWindow closes a detached session window
func (a *App) CloseSessionWindow(windowLabel string) error {
	const op = "close_session_window"
	if err := a.requireHost(op); err != nil {
		return err
	}
	if err := a.windows.CloseSessionWindow(windowLabel); err != nil {
		logging.LogWindowError(a.logger, err, op, nil)
		return err
	}
	return nil
}

// ListSessionWindows returns the labels of all open session windows
func (a *App) ListSessionWindows() ([]string, error) {
	if err := a.requireHost("list_session_windows"); err != nil {
		return nil, err
	}
	return a.windows.ListSessionWindows(), nil
}

// FocusSessionWindow raises a detached session window
func (a *App) FocusSessionWindow(windowLabel string) error {
	const op = "focus_session_window"
	if err := a.requireHost(op); err != nil {
		return err
	}
	if err := a.windows.FocusSessionWindow(windowLabel); err != nil {
		logging.LogWindowError(a.logger, err, op, nil)
		return err
	}
	return nil
}

// EmitToWindow delivers an event to one window
func (a *App) EmitToWindow(windowLabel, eventName, payload string) error {
	const op = "emit_to_window"
	if err := a.requireHost(op); err != nil {
		return err
	}
	if err := a.windows.EmitToWindow(windowLabel, eventName, payload); err != nil {
		logging.LogWindowError(a.logger, err, op, map[string]interface{}{"event": eventName})
		return err
	}
	return nil
}

// BroadcastToSessionWindows delivers an event to every session window and
// returns how many received it
func (a *App) BroadcastToSessionWindows(eventName, payload string) (int, error) {
	if err := a.requireHost("broadcast_to_session_windows"); err != nil {
		return 0, err
	}
	return a.windows.BroadcastToSessionWindows(eventName, payload), nil
}

// wailsBridge implements windowhost.RuntimeBridge on the Wails runtime, so a
// session window can honor parent commands.
type wailsBridge struct {
	app *App
}

func (b *wailsBridge) Focus() {
	runtime.WindowUnminimise(b.app.ctx)
	runtime.WindowShow(b.app.ctx)
}

func (b *wailsBridge) Quit() {
	runtime.Quit(b.app.ctx)
}

func (b *wailsBridge) Emit(event, payload string) {
	runtime.EventsEmit(b.app.ctx, event, payload)
}

func (b *wailsBridge) SetTitlebarColor(color uint32) {
	if err := b.app.titlebar.SetCaptionColor(color); err != nil {
		b.app.logger.Debug("titlebar color not applied", "error", err.Error())
	}
}
