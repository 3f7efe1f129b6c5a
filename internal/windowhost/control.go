package windowhost

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sessiondock/internal/infrastructure/logging"
)

// controlHooks connect the control server to its host.
//
// Register is invoked once a connecting window has authenticated; a non-nil
// error refuses the registration and is reported back to the window. Ready
// fires after the registration has been acknowledged on the wire, Gone when
// the handshake fails after a successful Register.
//
// The ordering matters: the parent must not issue commands on a connection
// until the acknowledgement has been written, because command frames and the
// handshake ack would otherwise interleave on the same socket.
type controlHooks struct {
	Register func(wc *windowConn, req registerRequest) error
	Ready    func(label string)
	Gone     func(label string)
}

// controlServer accepts control-channel connections from session windows.
// After a successful handshake it hands ownership of the connection to the
// host; the parent end only ever writes commands and reads their replies.
type controlServer struct {
	cfg    *Config
	logger logging.Logger
	token  string
	hooks  controlHooks

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu       sync.Mutex
	listener net.Listener
}

func newControlServer(cfg *Config, logger logging.Logger, token string, hooks controlHooks) *controlServer {
	s := &controlServer{
		cfg:    cfg,
		logger: logger,
		token:  token,
		hooks:  hooks,
		upgrader: websocket.Upgrader{
			// The channel is loopback-only and token-authenticated; browser
			// origin checks do not apply to our own window processes.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(controlPath, s.handleControl)
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// start binds the listener and begins serving in the background.
func (s *controlServer) start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind control listener on %s: %w", s.cfg.ListenAddr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if serveErr := s.httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("control server stopped unexpectedly", "error", serveErr.Error())
		}
	}()

	s.logger.Info("control channel listening", "addr", listener.Addr().String())
	return nil
}

// addr returns the bound address, empty before start.
func (s *controlServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *controlServer) stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// handleControl upgrades the connection and runs the registration handshake.
// On success the handler returns without closing the connection: the upgraded
// conn outlives the handler and belongs to the host from then on.
func (s *controlServer) handleControl(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("control upgrade failed", "remote", r.RemoteAddr, "error", err.Error())
		return
	}

	deadline := time.Now().Add(s.cfg.HandshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		conn.Close()
		return
	}

	var req registerRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("control handshake failed", "remote", r.RemoteAddr, "error", err.Error())
		conn.Close()
		return
	}

	if req.Token != s.token {
		s.refuse(conn, deadline, "unauthorized")
		return
	}
	if req.Label == "" {
		s.refuse(conn, deadline, "missing window label")
		return
	}

	// Clear the handshake deadline; command cycles set their own.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		conn.Close()
		return
	}

	wc := newWindowConn(req.Label, conn, s.cfg.RequestTimeout)
	if err := s.hooks.Register(wc, req); err != nil {
		s.refuse(conn, deadline, err.Error())
		return
	}

	conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(&registerReply{OK: true}); err != nil {
		s.logger.Warn("control handshake ack failed", "label", req.Label, "error", err.Error())
		conn.Close()
		if s.hooks.Gone != nil {
			s.hooks.Gone(req.Label)
		}
		return
	}
	conn.SetWriteDeadline(time.Time{})

	if s.hooks.Ready != nil {
		s.hooks.Ready(req.Label)
	}
}

func (s *controlServer) refuse(conn *websocket.Conn, deadline time.Time, reason string) {
	conn.SetWriteDeadline(deadline)
	_ = conn.WriteJSON(&registerReply{OK: false, Error: reason})
	conn.Close()
}

// windowConn is the parent's handle to one window's control connection.
// Command cycles are serialized: one write-and-await-reply at a time.
type windowConn struct {
	label   string
	conn    *websocket.Conn
	timeout time.Duration

	mu     sync.Mutex
	nextID uint64
}

func newWindowConn(label string, conn *websocket.Conn, timeout time.Duration) *windowConn {
	return &windowConn{
		label:   label,
		conn:    conn,
		timeout: timeout,
	}
}

// request sends one command frame and waits for its reply.
func (c *windowConn) request(req controlRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req.ID = c.nextID

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteJSON(&req); err != nil {
		return fmt.Errorf("send %s command to %s: %w", req.Type, c.label, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	for {
		var reply controlReply
		if err := c.conn.ReadJSON(&reply); err != nil {
			return fmt.Errorf("await %s reply from %s: %w", req.Type, c.label, err)
		}
		if reply.ID < req.ID {
			// Stale reply from a command that previously timed out; skip it.
			continue
		}
		if reply.ID != req.ID {
			return fmt.Errorf("window %s answered command %d while %d was pending", c.label, reply.ID, req.ID)
		}
		if !reply.OK {
			return fmt.Errorf("window %s rejected %s command: %s", c.label, req.Type, reply.Error)
		}
		return nil
	}
}

func (c *windowConn) close() error {
	return c.conn.Close()
}
