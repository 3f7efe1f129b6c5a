package windowhost

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"sessiondock/internal/infrastructure/logging"
)

// clientHandshakeTimeout bounds the child side of the registration handshake.
const clientHandshakeTimeout = 10 * time.Second

// RuntimeBridge is the slice of the windowing runtime a session window needs
// in order to honor parent commands. The application shell implements it on
// the Wails runtime; tests substitute a capture implementation.
type RuntimeBridge interface {
	// Focus raises and unminimizes the window.
	Focus()
	// Quit tears the window down.
	Quit()
	// Emit delivers an event to the window's front-end.
	Emit(event, payload string)
	// SetTitlebarColor recolors the native caption, where supported.
	SetTitlebarColor(color uint32)
}

// Client is the session-window side of the control channel. It registers the
// window with the parent and then serves parent commands until the connection
// closes.
type Client struct {
	addr   string
	token  string
	label  string
	title  string
	bridge RuntimeBridge
	logger logging.Logger

	conn *websocket.Conn
}

// NewClient creates a control-channel client for an explicitly known parent.
func NewClient(addr, token, label, title string, bridge RuntimeBridge, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Client{
		addr:   addr,
		token:  token,
		label:  label,
		title:  title,
		bridge: bridge,
		logger: logger,
	}
}

// NewClientFromEnv creates a client from the environment the parent process
// injects when it spawns a window.
func NewClientFromEnv(label, title string, bridge RuntimeBridge, logger logging.Logger) (*Client, error) {
	addr := os.Getenv(controlAddrEnv)
	if addr == "" {
		return nil, fmt.Errorf("%s is not set: session windows must be spawned by the main instance", controlAddrEnv)
	}
	token := os.Getenv(controlTokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", controlTokenEnv)
	}
	return NewClient(addr, token, label, title, bridge, logger), nil
}

// Connect dials the parent and registers this window.
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: controlPath}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial control channel %s: %w", c.addr, err)
	}

	deadline := time.Now().Add(clientHandshakeTimeout)
	if err := conn.SetWriteDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	req := registerRequest{Token: c.token, Label: c.label, Title: c.title}
	if err := conn.WriteJSON(&req); err != nil {
		conn.Close()
		return fmt.Errorf("send registration: %w", err)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	var reply registerReply
	if err := conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return fmt.Errorf("await registration ack: %w", err)
	}
	if !reply.OK {
		conn.Close()
		return fmt.Errorf("registration refused: %s", reply.Error)
	}

	// Steady state has no deadline; the loop blocks until a command arrives
	// or the parent goes away.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		conn.Close()
		return err
	}
	conn.SetWriteDeadline(time.Time{})

	c.conn = conn
	c.logger.Info("joined control channel", "label", c.label, "parent", c.addr)
	return nil
}

// Run processes parent commands until the connection closes. It is meant to
// run on its own goroutine after a successful Connect.
func (c *Client) Run() {
	for {
		var req controlRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if isExpectedClose(err) {
				c.logger.Info("control channel closed", "label", c.label)
			} else {
				c.logger.Warn("control channel read failed", "label", c.label, "error", err.Error())
			}
			return
		}

		reply := controlReply{ID: req.ID, OK: true}
		switch req.Type {
		case cmdFocus:
			c.bridge.Focus()
		case cmdClose:
			// Acknowledge before quitting so the parent sees the ack.
		case cmdEmit:
			c.bridge.Emit(req.Event, req.Payload)
		case cmdTheme:
			c.bridge.SetTitlebarColor(req.Color)
		default:
			reply.OK = false
			reply.Error = fmt.Sprintf("unknown command %q", req.Type)
		}

		if err := c.conn.WriteJSON(&reply); err != nil {
			c.logger.Warn("control reply failed", "label", c.label, "error", err.Error())
			return
		}

		if req.Type == cmdClose {
			c.logger.Info("close requested by parent", "label", c.label)
			c.bridge.Quit()
			return
		}
	}
}

// Close tears down the control connection, if any.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func isExpectedClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
