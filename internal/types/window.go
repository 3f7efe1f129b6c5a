package types

// CreateSessionWindowParams describes a tab being detached into its own
// top-level window. TabID must be unique per tab: it becomes part of the
// window label. Optional fields are omitted from the navigation URL when
// empty.
type CreateSessionWindowParams struct {
	TabID       string `json:"tab_id"`
	SessionID   string `json:"session_id,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
	Title       string `json:"title"`
	// Engine names the execution engine ("claude" or "codex"); it is passed
	// through to the front-end unvalidated.
	Engine string `json:"engine,omitempty"`
}

// WindowCreationResult reports the outcome of a create request.
type WindowCreationResult struct {
	WindowLabel string `json:"window_label"`
	Success     bool   `json:"success"`
}
