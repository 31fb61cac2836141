// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package widget provides the live surfaces that overlays display
// over the document: images, videos, markdown, sandboxed apps, and
// custom widgets built by a [Registry], together with the [Root]
// they are mounted in.
package widget

import (
	"slices"
	"sync"

	"github.com/inkframe/inkframe/base/errors"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// Classes applied to overlay widgets.
const (
	ClassItem        = "overlay-item"
	ClassInteractive = "overlay-interactive"
	ClassSelected    = "overlay-selected"
)

// ErrReleased is returned for resources of a destroyed widget.
var ErrReleased = errors.New("widget: released")

// KindClass returns the class for widgets of the given kind.
func KindClass(k document.Kind) string {
	return "overlay-" + string(k)
}

// Widget is the interface that all overlay widgets satisfy.
// The core widget functionality is defined on [WidgetBase],
// and all higher-level widget types must embed it. This
// interface only contains the methods that higher-level
// widget types may need to override.
type Widget interface {

	// AsWidget returns the [WidgetBase] of this Widget.
	AsWidget() *WidgetBase

	// Render draws the widget in its own logical coordinates,
	// from the origin to [WidgetBase.LogicalSize]. It may be
	// called from any goroutine.
	Render(pc *paint.Painter)

	// Destroy releases the resources of the widget. Widgets must
	// make this safe to call more than once; see [WidgetBase.Release].
	Destroy()
}

// EventHandler is implemented by widgets that handle pointer
// events while interactive. Events are in logical widget coordinates.
type EventHandler interface {
	HandleEvent(ev events.Event)
}

// WidgetBase implements the core of the [Widget] interface.
// It is safe for concurrent use.
type WidgetBase struct {

	// ID is the id of the resource the widget displays.
	ID string

	// Kind is the kind of resource the widget displays.
	Kind document.Kind

	mu          sync.Mutex
	classes     []string
	box         math32.Box2
	logical     math32.Vector2
	visible     bool
	interactive bool

	releaseOnce sync.Once
	released    bool
}

// Init sets the id and kind, and adds the standard classes.
// The widget starts hidden until its geometry is first set.
func (wb *WidgetBase) Init(id string, kind document.Kind) {
	wb.ID = id
	wb.Kind = kind
	wb.AddClass(ClassItem, KindClass(kind))
}

func (wb *WidgetBase) AsWidget() *WidgetBase {
	return wb
}

// Render draws nothing; widget types override it.
func (wb *WidgetBase) Render(pc *paint.Painter) {}

// Destroy marks the widget as released.
func (wb *WidgetBase) Destroy() {
	wb.Release(nil)
}

// Release marks the widget as released and calls fn, only on the first
// call. It returns whether this was the first call. Widget types call
// it from Destroy to free their own resources exactly once.
func (wb *WidgetBase) Release(fn func()) bool {
	first := false
	wb.releaseOnce.Do(func() {
		first = true
		wb.mu.Lock()
		wb.released = true
		wb.visible = false
		wb.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	return first
}

// IsReleased returns whether the widget has been destroyed.
func (wb *WidgetBase) IsReleased() bool {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.released
}

// SetGeometry sets the viewport box of the widget and its logical size,
// which is the size it lays out its content at, and makes it visible.
func (wb *WidgetBase) SetGeometry(box math32.Box2, logical math32.Vector2) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.released {
		return
	}
	wb.box = box
	wb.logical = logical
	wb.visible = true
}

// Box returns the viewport box of the widget.
func (wb *WidgetBase) Box() math32.Box2 {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.box
}

// LogicalSize returns the logical size of the widget.
func (wb *WidgetBase) LogicalSize() math32.Vector2 {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.logical
}

// IsVisible returns whether the widget has been positioned
// and not hidden or released.
func (wb *WidgetBase) IsVisible() bool {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.visible
}

// SetVisible sets whether the widget is shown.
func (wb *WidgetBase) SetVisible(visible bool) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.visible = visible && !wb.released
}

// IsInteractive returns whether the widget receives pointer events.
// When it does not, pointer events pass through to the document.
func (wb *WidgetBase) IsInteractive() bool {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.interactive
}

// SetInteractive sets whether the widget receives pointer events,
// and updates the [ClassInteractive] class to match.
func (wb *WidgetBase) SetInteractive(on bool) {
	wb.mu.Lock()
	wb.interactive = on
	wb.mu.Unlock()
	wb.SetClass(ClassInteractive, on)
}

// Classes returns a copy of the classes of the widget.
func (wb *WidgetBase) Classes() []string {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return slices.Clone(wb.classes)
}

// HasClass returns whether the widget has the given class.
func (wb *WidgetBase) HasClass(class string) bool {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return slices.Contains(wb.classes, class)
}

// AddClass adds the given classes, if not already present.
func (wb *WidgetBase) AddClass(classes ...string) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	for _, c := range classes {
		if !slices.Contains(wb.classes, c) {
			wb.classes = append(wb.classes, c)
		}
	}
}

// RemoveClass removes the given class.
func (wb *WidgetBase) RemoveClass(class string) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.classes = slices.DeleteFunc(wb.classes, func(c string) bool { return c == class })
}

// SetClass adds or removes the given class.
func (wb *WidgetBase) SetClass(class string, on bool) {
	if on {
		wb.AddClass(class)
	} else {
		wb.RemoveClass(class)
	}
}

// ToLocal converts a viewport point to logical widget coordinates.
func (wb *WidgetBase) ToLocal(p math32.Vector2) math32.Vector2 {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return toLocal(wb.box, wb.logical, p)
}

func toLocal(box math32.Box2, logical, p math32.Vector2) math32.Vector2 {
	lp := p.Sub(box.Min)
	sz := box.Size()
	if sz.X > 0 && logical.X > 0 {
		lp.X *= logical.X / sz.X
	}
	if sz.Y > 0 && logical.Y > 0 {
		lp.Y *= logical.Y / sz.Y
	}
	return lp
}

// renderScale returns the viewport pixels per logical unit.
func renderScale(box math32.Box2, logical math32.Vector2) float32 {
	if logical.X <= 0 {
		return 1
	}
	return box.Size().X / logical.X
}
