package windowhost

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sessiondock/internal/infrastructure/logging"
)

const testToken = "test-token"

// startTestServer brings up a control server whose hooks feed the returned
// channels. Registered windows are accepted unconditionally.
func startTestServer(t *testing.T) (*controlServer, chan *windowConn) {
	t.Helper()

	registered := make(chan *windowConn, 4)
	var mu sync.Mutex
	conns := make(map[string]*windowConn)

	hooks := controlHooks{
		Register: func(wc *windowConn, req registerRequest) error {
			mu.Lock()
			defer mu.Unlock()
			conns[req.Label] = wc
			return nil
		},
		Ready: func(label string) {
			mu.Lock()
			wc := conns[label]
			mu.Unlock()
			registered <- wc
		},
	}

	srv := newControlServer(ConfigForEnvironment("test"), logging.NewDefaultLogger(), testToken, hooks)
	if err := srv.start(); err != nil {
		t.Fatalf("start control server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.stop(ctx)
	})

	return srv, registered
}

func dialControl(t *testing.T, srv *controlServer) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.addr()+controlPath, nil)
	if err != nil {
		t.Fatalf("dial control channel: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestControlHandshake_RejectsBadToken(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialControl(t, srv)

	if err := conn.WriteJSON(&registerRequest{Token: "wrong", Label: "session-window-1"}); err != nil {
		t.Fatalf("write registration: %v", err)
	}

	var reply registerReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.OK {
		t.Fatal("handshake with a bad token must be refused")
	}
	if reply.Error != "unauthorized" {
		t.Errorf("refusal reason = %q, want unauthorized", reply.Error)
	}
}

func TestControlHandshake_RejectsMissingLabel(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialControl(t, srv)

	if err := conn.WriteJSON(&registerRequest{Token: testToken}); err != nil {
		t.Fatalf("write registration: %v", err)
	}

	var reply registerReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.OK {
		t.Fatal("handshake without a label must be refused")
	}
	if !strings.Contains(reply.Error, "label") {
		t.Errorf("refusal reason = %q, want a label complaint", reply.Error)
	}
}

func TestControlRoundTrip(t *testing.T) {
	srv, registered := startTestServer(t)
	conn := dialControl(t, srv)

	if err := conn.WriteJSON(&registerRequest{Token: testToken, Label: "session-window-rt", Title: "RT"}); err != nil {
		t.Fatalf("write registration: %v", err)
	}
	var ack registerReply
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if !ack.OK {
		t.Fatalf("registration refused: %s", ack.Error)
	}

	var wc *windowConn
	select {
	case wc = <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("server never surfaced the registered window")
	}

	// Window side answers commands; first OK, then a rejection.
	go func() {
		for i := 0; i < 2; i++ {
			var req controlRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			reply := controlReply{ID: req.ID, OK: true}
			if req.Type == cmdEmit {
				reply.OK = false
				reply.Error = "webview is gone"
			}
			if err := conn.WriteJSON(&reply); err != nil {
				return
			}
		}
	}()

	if err := wc.request(controlRequest{Type: cmdFocus}); err != nil {
		t.Errorf("focus command failed: %v", err)
	}

	err := wc.request(controlRequest{Type: cmdEmit, Event: "session:update", Payload: "{}"})
	if err == nil {
		t.Fatal("rejected command should surface an error")
	}
	if !strings.Contains(err.Error(), "webview is gone") {
		t.Errorf("error %q should carry the window's reason", err.Error())
	}
}

func TestControlRequest_TimesOutWithoutReply(t *testing.T) {
	srv, registered := startTestServer(t)
	conn := dialControl(t, srv)

	if err := conn.WriteJSON(&registerRequest{Token: testToken, Label: "session-window-slow"}); err != nil {
		t.Fatalf("write registration: %v", err)
	}
	var ack registerReply
	if err := conn.ReadJSON(&ack); err != nil || !ack.OK {
		t.Fatalf("registration failed: %v %s", err, ack.Error)
	}

	wc := <-registered

	// The window never answers; the command must fail within the test
	// config's two-second reply deadline.
	start := time.Now()
	err := wc.request(controlRequest{Type: cmdFocus})
	if err == nil {
		t.Fatal("unanswered command should fail")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("command took %v to fail, expected the reply deadline to cut it off", elapsed)
	}
}

// captureBridge records dispatched commands for client tests
type captureBridge struct {
	mu         sync.Mutex
	focusCalls int
	quitCalls  int
	events     [][2]string
	colors     []uint32
}

func (b *captureBridge) Focus() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focusCalls++
}

func (b *captureBridge) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quitCalls++
}

func (b *captureBridge) Emit(event, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, [2]string{event, payload})
}

func (b *captureBridge) SetTitlebarColor(color uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.colors = append(b.colors, color)
}

func TestClient_DispatchesParentCommands(t *testing.T) {
	srv, registered := startTestServer(t)

	bridge := &captureBridge{}
	client := NewClient(srv.addr(), testToken, "session-window-cli", "Client", bridge, logging.NewDefaultLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	done := make(chan struct{})
	go func() {
		client.Run()
		close(done)
	}()

	var wc *windowConn
	select {
	case wc = <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}

	if err := wc.request(controlRequest{Type: cmdFocus}); err != nil {
		t.Fatalf("focus: %v", err)
	}
	if err := wc.request(controlRequest{Type: cmdEmit, Event: "session:update", Payload: `{"tab":"1"}`}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := wc.request(controlRequest{Type: cmdTheme, Color: 0x00343030}); err != nil {
		t.Fatalf("theme: %v", err)
	}
	if err := wc.request(controlRequest{Type: cmdClose}); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client loop did not stop after close command")
	}

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.focusCalls != 1 {
		t.Errorf("focusCalls = %d, want 1", bridge.focusCalls)
	}
	if bridge.quitCalls != 1 {
		t.Errorf("quitCalls = %d, want 1", bridge.quitCalls)
	}
	if len(bridge.events) != 1 || bridge.events[0] != [2]string{"session:update", `{"tab":"1"}`} {
		t.Errorf("events = %v", bridge.events)
	}
	if len(bridge.colors) != 1 || bridge.colors[0] != 0x00343030 {
		t.Errorf("colors = %v", bridge.colors)
	}
}

func TestClient_RejectsUnknownCommand(t *testing.T) {
	srv, registered := startTestServer(t)

	bridge := &captureBridge{}
	client := NewClient(srv.addr(), testToken, "session-window-unk", "Client", bridge, logging.NewDefaultLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	go client.Run()

	wc := <-registered
	err := wc.request(controlRequest{Type: "reticulate"})
	if err == nil {
		t.Fatal("unknown command should be rejected")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error %q should name the unknown command", err.Error())
	}
}

func TestClient_ConnectRefusedWithBadToken(t *testing.T) {
	srv, _ := startTestServer(t)

	client := NewClient(srv.addr(), "wrong", "session-window-x", "Client", &captureBridge{}, logging.NewDefaultLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := client.Connect(ctx)
	if err == nil {
		client.Close()
		t.Fatal("connect with a bad token should fail")
	}
	if !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("error %q should carry the refusal reason", err.Error())
	}
}
