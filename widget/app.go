// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"image/color"
	"log/slog"
	"net/url"
	"sync"

	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// Sandbox capabilities of app surfaces.
const (
	// AppSandbox are the sandbox flags granted to app surfaces.
	AppSandbox = "allow-scripts allow-forms allow-popups"

	// AppAllow are the permissions granted to app surfaces.
	AppAllow = "clipboard-read; clipboard-write"
)

// AppSurface is a host-provided sandboxed surface running an app.
type AppSurface interface {

	// Render draws the app at the given logical size.
	Render(pc *paint.Painter, size math32.Vector2)

	// HandleEvent delivers a pointer event, in logical coordinates.
	HandleEvent(ev events.Event)

	// Close shuts the app down.
	Close() error
}

// AppLauncher starts the app at the given URL in a sandboxed surface
// with the given sandbox flags and permissions.
type AppLauncher func(url, sandbox, allow string) (AppSurface, error)

// App is a widget that hosts an app in a sandboxed surface.
// Without a launcher, it shows a frame with the app location.
type App struct {
	WidgetBase

	// URL is the location of the app.
	URL string

	// Sandbox are the sandbox flags of the surface.
	Sandbox string

	// Allow are the permissions of the surface.
	Allow string

	launcher AppLauncher

	amu      sync.Mutex
	launched bool
	surface  AppSurface
}

// NewApp returns a new [App] for the given resource.
func NewApp(d document.Descriptor, launcher AppLauncher) *App {
	a := &App{URL: d.URL, Sandbox: AppSandbox, Allow: AppAllow, launcher: launcher}
	a.Init(d.ID, document.App)
	return a
}

// Surface returns the surface, launching it on first use.
// It returns nil if there is no launcher or launching failed.
func (a *App) Surface() AppSurface {
	a.amu.Lock()
	defer a.amu.Unlock()
	if a.launched || a.IsReleased() {
		return a.surface
	}
	a.launched = true
	if a.launcher == nil {
		return nil
	}
	s, err := a.launcher(a.URL, a.Sandbox, a.Allow)
	if err != nil {
		slog.Error("widget.App: launching app", "id", a.ID, "url", a.URL, "err", err)
		return nil
	}
	a.surface = s
	return s
}

// Host returns the host name of the app URL, for display.
func (a *App) Host() string {
	u, err := url.Parse(a.URL)
	if err != nil || u.Host == "" {
		return a.URL
	}
	return u.Host
}

func (a *App) Render(pc *paint.Painter) {
	sz := a.LogicalSize()
	if s := a.Surface(); s != nil {
		s.Render(pc, sz)
		return
	}
	pc.FillBox(math32.Vector2{}, sz, color.White)
	pc.FillBox(math32.Vector2{}, math32.Vec2(sz.X, 24), color.RGBA{0xee, 0xee, 0xf2, 0xff})
	gray := color.RGBA{0x55, 0x55, 0x66, 0xff}
	pc.DrawText(a.Host(), math32.Vec2(8, 5), paint.TextStyle{Size: 12, Color: gray})
	pc.DrawText("sandboxed app", math32.Vec2(8, 36), paint.TextStyle{Size: 14, Color: gray})
}

func (a *App) HandleEvent(ev events.Event) {
	if s := a.Surface(); s != nil {
		s.HandleEvent(ev)
		ev.SetHandled()
	}
}

func (a *App) Destroy() {
	a.Release(func() {
		a.amu.Lock()
		defer a.amu.Unlock()
		if a.surface != nil {
			if err := a.surface.Close(); err != nil {
				slog.Error("widget.App: closing app", "id", a.ID, "err", err)
			}
			a.surface = nil
		}
	})
}
