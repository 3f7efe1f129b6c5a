//go:build windows

package platform

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")
	user32 = windows.NewLazySystemDLL("user32.dll")

	procDwmSetWindowAttribute    = dwmapi.NewProc("DwmSetWindowAttribute")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
)

// DWMWA_CAPTION_COLOR, available since Windows 11 build 22000
const dwmwaCaptionColor = 35

// WindowsTitlebarAPI implements TitlebarAPI for the Windows platform
type WindowsTitlebarAPI struct{}

// NewWindowsTitlebarAPI creates a new Windows title bar API instance
func NewWindowsTitlebarAPI() *WindowsTitlebarAPI {
	return &WindowsTitlebarAPI{}
}

// NewTitlebarAPI creates a new TitlebarAPI instance for Windows
func NewTitlebarAPI() TitlebarAPI {
	return NewWindowsTitlebarAPI()
}

// SetCaptionColor sets the caption color of this process's top-level window
// via the DWM. On builds older than Windows 11 the attribute is rejected by
// the compositor and an error is returned; callers treat it as best effort.
func (a *WindowsTitlebarAPI) SetCaptionColor(color uint32) error {
	hwnd := currentProcessWindow()
	if hwnd == 0 {
		return fmt.Errorf("no visible top-level window for process %d", os.Getpid())
	}

	ret, _, _ := procDwmSetWindowAttribute.Call(
		hwnd,
		uintptr(dwmwaCaptionColor),
		uintptr(unsafe.Pointer(&color)),
		unsafe.Sizeof(color),
	)
	// DwmSetWindowAttribute returns an HRESULT; S_OK is zero
	if ret != 0 {
		return fmt.Errorf("DwmSetWindowAttribute failed: HRESULT 0x%08X", uint32(ret))
	}
	return nil
}

// currentProcessWindow finds the first visible top-level window owned by the
// current process. Wails does not expose the HWND of its webview window, so
// we enumerate top-level windows and match on the owning process id.
func currentProcessWindow() uintptr {
	pid := uint32(os.Getpid())
	var found uintptr

	cb := syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		var windowPID uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&windowPID)))
		if windowPID != pid {
			return 1 // continue enumeration
		}
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}
		found = hwnd
		return 0 // stop enumeration
	})

	procEnumWindows.Call(cb, 0)
	return found
}
