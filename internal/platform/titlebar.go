package platform

// Caption colors in COLORREF format (0x00BBGGRR).
const (
	// TitlebarColorDark is rgb(48, 48, 52), a medium gray.
	TitlebarColorDark uint32 = 0x00343030
	// TitlebarColorLight is rgb(250, 250, 252), near white.
	TitlebarColorLight uint32 = 0x00FCFAFA
)

// ColorForTheme maps the theme flag to the native caption COLORREF.
func ColorForTheme(isDark bool) uint32 {
	if isDark {
		return TitlebarColorDark
	}
	return TitlebarColorLight
}

// TitlebarAPI defines the interface for platform-specific title bar coloring.
// It applies to the calling process's own top-level window; platforms without
// a caption-color API provide a no-op implementation.
type TitlebarAPI interface {
	SetCaptionColor(color uint32) error
}
