package windowhost

// controlPath is the WebSocket endpoint session windows dial.
const controlPath = "/control"

// Command types sent from the parent to a session window.
const (
	cmdFocus = "focus"
	cmdClose = "close"
	cmdEmit  = "emit"
	cmdTheme = "theme"
)

// registerRequest is the first frame a window sends after connecting.
type registerRequest struct {
	Token string `json:"token"`
	Label string `json:"label"`
	Title string `json:"title"`
}

// registerReply acknowledges (or refuses) a registration.
type registerReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// controlRequest is one parent-to-window command frame. Event and Payload are
// set for emit commands, Color for theme commands.
type controlRequest struct {
	ID      uint64 `json:"id"`
	Type    string `json:"type"`
	Event   string `json:"event,omitempty"`
	Payload string `json:"payload,omitempty"`
	Color   uint32 `json:"color,omitempty"`
}

// controlReply acknowledges a controlRequest. IDs echo the request so the
// parent can detect stale replies after a timeout.
type controlReply struct {
	ID    uint64 `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
