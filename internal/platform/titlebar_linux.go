//go:build linux

package platform

// LinuxTitlebarAPI implements TitlebarAPI for Linux
type LinuxTitlebarAPI struct{}

// NewLinuxTitlebarAPI creates a new Linux title bar API instance
func NewLinuxTitlebarAPI() *LinuxTitlebarAPI {
	return &LinuxTitlebarAPI{}
}

// NewTitlebarAPI creates a new TitlebarAPI instance for Linux
func NewTitlebarAPI() TitlebarAPI {
	return NewLinuxTitlebarAPI()
}

// SetCaptionColor is a no-op on Linux. Caption drawing belongs to whatever
// window manager is running; there is no portable caption-color attribute.
func (l *LinuxTitlebarAPI) SetCaptionColor(color uint32) error {
	return nil
}
