package main

import (
	"embed"
	"flag"
	"log"

	"sessiondock/internal/app"
	"sessiondock/internal/infrastructure/logging"
	"sessiondock/internal/windowhost"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

// Main-window geometry; session windows get theirs from the spawn flags.
const (
	mainWindowWidth     = 1200
	mainWindowHeight    = 800
	mainWindowMinWidth  = 800
	mainWindowMinHeight = 600
)

func main() {
	// The session-window flags are internal: the main instance passes them
	// when it spawns a detached window. Users launch the binary bare.
	sessionWindow := flag.Bool("session-window", false, "run as a detached session window (internal)")
	label := flag.String("label", "", "window label (internal)")
	title := flag.String("title", "SessionDock", "window title")
	route := flag.String("route", "/", "front-end route to open (internal)")
	width := flag.Int("width", mainWindowWidth, "window width (internal)")
	height := flag.Int("height", mainWindowHeight, "window height (internal)")
	minWidth := flag.Int("min-width", mainWindowMinWidth, "minimum window width (internal)")
	minHeight := flag.Int("min-height", mainWindowMinHeight, "minimum window height (internal)")
	flag.Parse()

	if !*sessionWindow {
		*width, *height = mainWindowWidth, mainWindowHeight
		*minWidth, *minHeight = mainWindowMinWidth, mainWindowMinHeight
	} else if *width <= 0 || *height <= 0 {
		*width, *height = windowhost.DefaultWindowWidth, windowhost.DefaultWindowHeight
		*minWidth, *minHeight = windowhost.DefaultMinWidth, windowhost.DefaultMinHeight
	}

	application, err := app.NewApp(app.Options{
		SessionWindow: *sessionWindow,
		Label:         *label,
		Title:         *title,
		Route:         *route,
	})
	if err != nil {
		log.Fatal(err)
	}

	err = wails.Run(&options.App{
		Title:            *title,
		Width:            *width,
		Height:           *height,
		MinWidth:         *minWidth,
		MinHeight:        *minHeight,
		DisableResize:    false,
		Fullscreen:       false,
		Frameless:        true, // custom title bar is drawn by the front-end
		StartHidden:      false,
		BackgroundColour: &options.RGBA{R: 250, G: 250, B: 252, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Menu:             nil,
		Logger:           logging.NewWailsLoggerAdapter(application.GetLogger()),
		LogLevel:         logger.INFO,
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		// Windows platform specific options
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			WebviewUserDataPath:  "",
			ZoomFactor:           1.0,
		},
		// Mac platform specific options
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 false,
				HideToolbarSeparator:       true,
			},
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "SessionDock",
				Message: "Detachable session windows",
			},
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
