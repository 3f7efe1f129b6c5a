package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"sessiondock/internal/infrastructure/errors"
	"sessiondock/internal/infrastructure/logging"
	"sessiondock/internal/platform"
	"sessiondock/internal/types"
	"sessiondock/internal/windowhost"
)

// SessionWindowPrefix is the label prefix shared by every detached session
// window. It is the contract between create, list, and broadcast: a window
// carries it exactly when it hosts a detached tab.
const SessionWindowPrefix = "session-window-"

// SessionWindowLabel returns the window label for a tab.
func SessionWindowLabel(tabID string) string {
	return SessionWindowPrefix + tabID
}

// SessionWindowService implements the window commands the front-end calls.
// Window existence and focus are queried live from the host on every call;
// the service keeps no window state of its own.
type SessionWindowService struct {
	host     windowhost.Host
	titlebar platform.TitlebarAPI
	logger   logging.Logger
}

// NewSessionWindowService creates the service with its collaborators injected.
func NewSessionWindowService(host windowhost.Host, titlebar platform.TitlebarAPI, logger logging.Logger) *SessionWindowService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SessionWindowService{
		host:     host,
		titlebar: titlebar,
		logger:   logger,
	}
}

// SetTitlebarTheme recolors the native title bar of the main window and every
// session window to match the theme. Best effort: windows that cannot apply
// the color are logged and skipped, and the call always succeeds.
func (s *SessionWindowService) SetTitlebarTheme(isDark bool) error {
	color := platform.ColorForTheme(isDark)

	if err := s.titlebar.SetCaptionColor(color); err != nil {
		s.logger.Debug("titlebar color not applied to main window", "error", err.Error())
	}
	for _, w := range s.host.Windows() {
		if err := w.SetTitlebarColor(color); err != nil {
			s.logger.Debug("titlebar color not applied",
				"label", w.Label(), "error", err.Error())
		}
	}

	theme := "light"
	if isDark {
		theme = "dark"
	}
	s.logger.Info("title bar theme updated", "theme", theme)
	return nil
}

// CreateSessionWindow opens an independent window for a detached tab. The
// operation is idempotent by label: if the tab's window already exists it is
// focused instead of duplicated, and the call still reports success.
func (s *SessionWindowService) CreateSessionWindow(ctx context.Context, params types.CreateSessionWindowParams) (*types.WindowCreationResult, error) {
	const op = "create_session_window"

	if params.TabID == "" {
		return nil, errors.NewValidationError(op, fmt.Errorf("tab_id is required"))
	}
	label := SessionWindowLabel(params.TabID)

	if existing, ok := s.host.GetWindow(label); ok {
		if err := existing.Focus(); err != nil {
			return nil, errors.NewHostError(op, label, fmt.Errorf("failed to focus window: %w", err))
		}
		s.logger.Info("session window already open, focused instead", "label", label)
		return &types.WindowCreationResult{WindowLabel: label, Success: true}, nil
	}

	windowURL := sessionWindowURL(params)
	s.logger.Info("creating session window", "label", label, "url", windowURL)

	w, err := s.host.CreateWindow(ctx, windowhost.WindowOptions{
		Label: label,
		Title: params.Title,
		URL:   windowURL,
	})
	if err != nil {
		return nil, errors.NewHostError(op, label, fmt.Errorf("failed to create window: %w", err))
	}
	if err := w.Focus(); err != nil {
		return nil, errors.NewHostError(op, label, fmt.Errorf("failed to focus new window: %w", err))
	}

	s.logger.Info("session window created", "label", label)
	return &types.WindowCreationResult{WindowLabel: label, Success: true}, nil
}

// CloseSessionWindow closes the named window.
func (s *SessionWindowService) CloseSessionWindow(windowLabel string) error {
	const op = "close_session_window"

	w, ok := s.host.GetWindow(windowLabel)
	if !ok {
		return errors.NewNotFoundError(op, windowLabel)
	}
	if err := w.Close(); err != nil {
		return errors.NewHostError(op, windowLabel, fmt.Errorf("failed to close window: %w", err))
	}

	s.logger.Info("session window closed", "label", windowLabel)
	return nil
}

// ListSessionWindows returns the labels of all open session windows. Windows
// without the session prefix are never reported, whatever else is open.
func (s *SessionWindowService) ListSessionWindows() []string {
	labels := []string{}
	for _, w := range s.host.Windows() {
		if strings.HasPrefix(w.Label(), SessionWindowPrefix) {
			labels = append(labels, w.Label())
		}
	}
	return labels
}

// FocusSessionWindow raises the named window.
func (s *SessionWindowService) FocusSessionWindow(windowLabel string) error {
	const op = "focus_session_window"

	w, ok := s.host.GetWindow(windowLabel)
	if !ok {
		return errors.NewNotFoundError(op, windowLabel)
	}
	if err := w.Focus(); err != nil {
		return errors.NewHostError(op, windowLabel, fmt.Errorf("failed to focus window: %w", err))
	}
	return nil
}

// EmitToWindow delivers an event with a JSON payload to one window.
func (s *SessionWindowService) EmitToWindow(windowLabel, eventName, payload string) error {
	const op = "emit_to_window"

	w, ok := s.host.GetWindow(windowLabel)
	if !ok {
		return errors.NewNotFoundError(op, windowLabel)
	}
	if err := w.Emit(eventName, payload); err != nil {
		return errors.NewHostError(op, windowLabel, fmt.Errorf("failed to emit event: %w", err))
	}
	return nil
}

// BroadcastToSessionWindows delivers an event to every session window and
// returns how many received it. Individual delivery failures are skipped,
// never aborting the broadcast.
func (s *SessionWindowService) BroadcastToSessionWindows(eventName, payload string) int {
	count := 0
	for _, w := range s.host.Windows() {
		if !strings.HasPrefix(w.Label(), SessionWindowPrefix) {
			continue
		}
		if err := w.Emit(eventName, payload); err != nil {
			s.logger.Debug("broadcast delivery failed",
				"label", w.Label(), "event", eventName, "error", err.Error())
			continue
		}
		count++
	}
	return count
}

// sessionWindowURL builds the front-end route for a new session window.
// Parameter order is fixed and optional parameters are omitted when empty;
// only the project path needs escaping, the other values are identifiers.
func sessionWindowURL(params types.CreateSessionWindowParams) string {
	queryParts := []string{
		"window=session",
		"tab_id=" + params.TabID,
	}

	if params.SessionID != "" {
		queryParts = append(queryParts, "session_id="+params.SessionID)
	}
	if params.ProjectPath != "" {
		queryParts = append(queryParts, "project_path="+encodeQueryComponent(params.ProjectPath))
	}
	if params.Engine != "" {
		queryParts = append(queryParts, "engine="+params.Engine)
	}

	return "/?" + strings.Join(queryParts, "&")
}

// encodeQueryComponent percent-encodes a query value, using %20 rather than
// '+' for spaces so the front-end router decodes paths unambiguously.
func encodeQueryComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
