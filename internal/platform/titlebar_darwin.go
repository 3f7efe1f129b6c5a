//go:build darwin

package platform

// DarwinTitlebarAPI implements TitlebarAPI for macOS
type DarwinTitlebarAPI struct{}

// NewDarwinTitlebarAPI creates a new macOS title bar API instance
func NewDarwinTitlebarAPI() *DarwinTitlebarAPI {
	return &DarwinTitlebarAPI{}
}

// NewTitlebarAPI creates a new TitlebarAPI instance for macOS
func NewTitlebarAPI() TitlebarAPI {
	return NewDarwinTitlebarAPI()
}

// SetCaptionColor is a no-op on macOS. The windows are frameless and the
// front-end draws its own title bar, so there is no native caption to tint.
func (d *DarwinTitlebarAPI) SetCaptionColor(color uint32) error {
	return nil
}
