package app

import (
	"strings"
	"testing"

	"sessiondock/internal/infrastructure/errors"
	"sessiondock/internal/types"
)

// newSessionWindowApp builds an App in session-window mode, which carries no
// window host and so needs no control channel for these tests.
func newSessionWindowApp(t *testing.T) *App {
	t.Helper()

	a, err := NewApp(Options{
		SessionWindow: true,
		Label:         "session-window-test",
		Title:         "Test",
		Route:         "/?window=session&tab_id=test",
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return a
}

func TestSessionWindowInstance_RejectsManagementCommands(t *testing.T) {
	a := newSessionWindowApp(t)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "create", call: func() error {
			_, err := a.CreateSessionWindow(types.CreateSessionWindowParams{TabID: "x"})
			return err
		}},
		{name: "close", call: func() error { return a.CloseSessionWindow("session-window-x") }},
		{name: "list", call: func() error {
			_, err := a.ListSessionWindows()
			return err
		}},
		{name: "focus", call: func() error { return a.FocusSessionWindow("session-window-x") }},
		{name: "emit", call: func() error { return a.EmitToWindow("session-window-x", "evt", "{}") }},
		{name: "broadcast", call: func() error {
			_, err := a.BroadcastToSessionWindows("evt", "{}")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("management commands must be refused outside the main instance")
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected a validation error, got: %v", err)
			}
			if !strings.Contains(err.Error(), "main window") {
				t.Errorf("error %q should point at the main window", err.Error())
			}
		})
	}
}

func TestStartupRoute(t *testing.T) {
	a := newSessionWindowApp(t)
	if got := a.StartupRoute(); got != "/?window=session&tab_id=test" {
		t.Errorf("StartupRoute() = %q", got)
	}

	main, err := NewApp(Options{})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if got := main.StartupRoute(); got != "/" {
		t.Errorf("main StartupRoute() = %q, want /", got)
	}
}
